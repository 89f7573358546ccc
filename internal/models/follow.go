package models

import "time"

// Follow represents an asymmetric follow relationship, independent of
// Friendship, with per-relationship settings owned by the follower
type Follow struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	FollowerID           uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID          uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	Muted                bool      `json:"muted" gorm:"default:false"`
	CloseFriend          bool      `json:"close_friend" gorm:"default:false"`
	NotificationsEnabled bool      `json:"notifications_enabled" gorm:"default:true"`
	CreatedAt            time.Time `json:"created_at"`
}

// UpdateFollowSettingsRequest toggles per-relationship follow settings
type UpdateFollowSettingsRequest struct {
	Muted                *bool `json:"muted,omitempty"`
	CloseFriend          *bool `json:"close_friend,omitempty"`
	NotificationsEnabled *bool `json:"notifications_enabled,omitempty"`
}
