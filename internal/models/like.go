package models

import "gorm.io/gorm"

// Like represents a like on a post
type Like struct {
	gorm.Model
	PostID uint `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_like"`
	UserID uint `json:"user_id" gorm:"index;uniqueIndex:idx_post_user_like"`
}
