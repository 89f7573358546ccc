package models

import (
	"time"

	"gorm.io/gorm"
)

// Visibility is the policy tag on a post governing who may view it
type Visibility string

const (
	VisibilityPublic           Visibility = "public"
	VisibilityFriends          Visibility = "friends"
	VisibilityCloseFriends     Visibility = "close_friends"
	VisibilityFriendsOfFriends Visibility = "friends_of_friends"
	VisibilityPrivate          Visibility = "private"
	VisibilityGroup            Visibility = "group"
	VisibilityCustom           Visibility = "custom"
)

// Valid reports whether v is one of the known visibility levels
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityCloseFriends,
		VisibilityFriendsOfFriends, VisibilityPrivate, VisibilityGroup, VisibilityCustom:
		return true
	}
	return false
}

// VisibilityChange is one append-only entry in a post's visibility history
type VisibilityChange struct {
	From      Visibility `json:"from"`
	To        Visibility `json:"to"`
	ChangedBy uint       `json:"changed_by"`
	ChangedAt time.Time  `json:"changed_at"`
}

// PostEdit records one versioned edit of a post's content
type PostEdit struct {
	Version  int       `json:"version"`
	Content  string    `json:"content"`
	EditedAt time.Time `json:"edited_at"`
}

// Post represents a social media post
type Post struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	UserID  uint   `json:"user_id" gorm:"index"`
	GroupID *uint  `json:"group_id,omitempty" gorm:"index"`
	Content string `json:"content"`
	Type    string `json:"type" gorm:"size:20;default:'text'"` // text, image, video, link

	Visibility          Visibility         `json:"visibility" gorm:"size:30;default:'public';index"`
	CustomAudience      []uint             `json:"custom_audience,omitempty" gorm:"serializer:json"`
	VisibilityExpiresAt *time.Time         `json:"visibility_expires_at,omitempty"`
	VisibilityHistory   []VisibilityChange `json:"-" gorm:"serializer:json"`

	AllowComments  bool `json:"allow_comments" gorm:"default:true"`
	AllowReactions bool `json:"allow_reactions" gorm:"default:true"`
	AllowResharing bool `json:"allow_resharing" gorm:"default:true"`

	LikesCount    int `json:"likes_count" gorm:"default:0"`
	CommentsCount int `json:"comments_count" gorm:"default:0"`
	SharesCount   int `json:"shares_count" gorm:"default:0"`
	ViewsCount    int `json:"views_count" gorm:"default:0"`
	ReachCount    int `json:"reach_count" gorm:"default:0"`

	EditVersion   int        `json:"edit_version" gorm:"default:0"`
	EditHistory   []PostEdit `json:"-" gorm:"serializer:json"`
	EditLocked    bool       `json:"edit_locked" gorm:"default:false"`
	EditableUntil *time.Time `json:"editable_until,omitempty"`

	IsReported  bool       `json:"is_reported" gorm:"default:false"`
	IsHidden    bool       `json:"is_hidden" gorm:"default:false"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`
	ModeratedBy *uint      `json:"moderated_by,omitempty"`

	DeleteReason    string         `json:"delete_reason,omitempty"`
	RestorableUntil *time.Time     `json:"restorable_until,omitempty"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	PublishedAt time.Time `json:"published_at" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsScheduled reports whether the post is scheduled for future publication
func (p *Post) IsScheduled(now time.Time) bool {
	return p.PublishedAt.After(now)
}

// VisibilityExpired reports whether a temporary visibility window has lapsed
func (p *Post) VisibilityExpired(now time.Time) bool {
	return p.VisibilityExpiresAt != nil && p.VisibilityExpiresAt.Before(now)
}

// EngagementScore is the flat popularity score used by feed ranking
func (p *Post) EngagementScore() int {
	return p.LikesCount + p.CommentsCount + p.SharesCount
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content             string     `json:"content" validate:"required,min=1,max=5000"`
	Type                string     `json:"type,omitempty" validate:"omitempty,oneof=text image video link"`
	Visibility          Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=public friends close_friends friends_of_friends private group custom"`
	CustomAudience      []uint     `json:"custom_audience,omitempty"`
	GroupID             *uint      `json:"group_id,omitempty"`
	AllowComments       *bool      `json:"allow_comments,omitempty"`
	AllowReactions      *bool      `json:"allow_reactions,omitempty"`
	AllowResharing      *bool      `json:"allow_resharing,omitempty"`
	VisibilityExpiresAt *time.Time `json:"visibility_expires_at,omitempty"`
	PublishedAt         *time.Time `json:"published_at,omitempty"` // future timestamp schedules the post
}

// UpdatePostRequest defines the request body for editing an existing post
type UpdatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// UpdateVisibilityRequest changes a single post's visibility level
type UpdateVisibilityRequest struct {
	Visibility     Visibility `json:"visibility" validate:"required,oneof=public friends close_friends friends_of_friends private group custom"`
	CustomAudience []uint     `json:"custom_audience,omitempty"`
}

// BulkVisibilityRequest applies one visibility change across a batch of posts
type BulkVisibilityRequest struct {
	PostIDs    []uint     `json:"post_ids" validate:"required,min=1"`
	Visibility Visibility `json:"visibility" validate:"required,oneof=public friends close_friends friends_of_friends private group custom"`
}

// DeletePostRequest carries the optional reason for a soft delete
type DeletePostRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
