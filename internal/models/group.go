package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a membership container backing group-visibility posts
type Group struct {
	gorm.Model
	Name    string `json:"name"`
	OwnerID uint   `json:"owner_id" gorm:"index"`
}

// GroupMember records membership of a user in a group
type GroupMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	GroupID  uint      `json:"group_id" gorm:"index;uniqueIndex:idx_group_member"`
	UserID   uint      `json:"user_id" gorm:"index;uniqueIndex:idx_group_member"`
	Role     string    `json:"role" gorm:"size:20;default:'member'"`
	JoinedAt time.Time `json:"joined_at"`
}
