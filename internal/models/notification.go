package models

import "time"

// NotificationType identifies what triggered a notification
type NotificationType string

const (
	NotificationLike          NotificationType = "like"
	NotificationComment       NotificationType = "comment"
	NotificationReply         NotificationType = "reply"
	NotificationFollow        NotificationType = "follow"
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationFriendAccept  NotificationType = "friend_accept"
	NotificationMention       NotificationType = "mention"
)

// NotificationPriority is the delivery tier of a notification
type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Notification represents a user notification
type Notification struct {
	ID          uint                 `json:"id" gorm:"primaryKey"`
	RecipientID uint                 `json:"recipient_id" gorm:"index"`
	ActorID     *uint                `json:"actor_id,omitempty" gorm:"index"`
	Type        NotificationType     `json:"type" gorm:"size:30;index"`
	Payload     map[string]any       `json:"payload,omitempty" gorm:"serializer:json"`
	Link        string               `json:"link"` // generated deep-link URL
	Priority    NotificationPriority `json:"priority" gorm:"size:10;default:'normal'"`
	IsRead      bool                 `json:"is_read" gorm:"default:false;index"`
	DismissedAt *time.Time           `json:"dismissed_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at" gorm:"index"`
}
