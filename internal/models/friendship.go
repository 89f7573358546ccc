package models

import "gorm.io/gorm"

// FriendshipStatus is the state of a friendship request
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
	FriendshipBlocked  FriendshipStatus = "blocked" // reachable from any prior state
)

// Friendship represents a directed friend request owned by the requester.
// Once accepted its meaning is symmetric: "friends" holds from either
// direction. At most one row exists per unordered pair, enforced by
// lookup-before-create in the repository.
type Friendship struct {
	gorm.Model
	UserID             uint             `json:"user_id" gorm:"index"`   // requester
	FriendID           uint             `json:"friend_id" gorm:"index"` // target
	Status             FriendshipStatus `json:"status" gorm:"size:20;default:'pending'"`
	MutualFriendsCount int              `json:"mutual_friends_count" gorm:"default:0"`
}

// CreateFriendshipRequest defines the request body for sending a friend request
type CreateFriendshipRequest struct {
	FriendID uint `json:"friend_id" validate:"required"`
}

// UpdateFriendshipRequest accepts or declines a pending friend request
type UpdateFriendshipRequest struct {
	Status FriendshipStatus `json:"status" validate:"required,oneof=accepted declined"`
}
