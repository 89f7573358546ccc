package notify

import (
	"context"
	"fmt"

	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/realtime"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/pkg/logger"
	"go.uber.org/zap"
)

// Preferences exposes the recipient's per-relationship notification toggle.
// FollowRepository satisfies it.
type Preferences interface {
	NotificationsEnabled(recipientID, actorID uint) (bool, error)
}

// Dispatcher creates notifications as a fire-and-forget side effect of
// interactions. Failures are logged, never propagated: a like or comment
// must not fail because its notification could not be stored.
type Dispatcher struct {
	notifications repositories.NotificationRepository
	preferences   Preferences
	broadcaster   *realtime.Broadcaster
}

// NewDispatcher creates a notification dispatcher. preferences may be nil,
// which delivers everything.
func NewDispatcher(notifications repositories.NotificationRepository, preferences Preferences, broadcaster *realtime.Broadcaster) *Dispatcher {
	return &Dispatcher{notifications: notifications, preferences: preferences, broadcaster: broadcaster}
}

// Dispatch stores a notification for the recipient and emits a realtime
// event. Self-notifications are dropped, and so are notifications the
// recipient has switched off for this actor. Callers typically invoke this
// in a goroutine; nothing here can fail the triggering operation.
func (d *Dispatcher) Dispatch(ctx context.Context, recipientID uint, actorID *uint, ntype models.NotificationType, payload map[string]any) {
	if actorID != nil && *actorID == recipientID {
		return
	}
	if d.preferences != nil && actorID != nil {
		enabled, err := d.preferences.NotificationsEnabled(recipientID, *actorID)
		if err != nil {
			// Deliver on lookup failure rather than silently losing the event.
			logger.Log.Warn("notification preference lookup failed",
				zap.Uint("recipient_id", recipientID),
				zap.Error(err))
		} else if !enabled {
			return
		}
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        ntype,
		Payload:     payload,
		Link:        deepLink(ntype, payload),
		Priority:    priorityFor(ntype),
	}

	if err := d.notifications.CreateNotification(notification); err != nil {
		logger.Log.Warn("notification create failed",
			zap.Uint("recipient_id", recipientID),
			zap.String("type", string(ntype)),
			zap.Error(err))
		return
	}

	d.broadcaster.PublishToUser(ctx, recipientID, realtime.EventNotificationCreated, map[string]any{
		"notification_id": notification.ID,
		"type":            string(ntype),
		"link":            notification.Link,
	})
}

// deepLink generates the client URL a notification navigates to
func deepLink(ntype models.NotificationType, payload map[string]any) string {
	switch ntype {
	case models.NotificationLike, models.NotificationMention:
		if postID, ok := payload["post_id"]; ok {
			return fmt.Sprintf("/posts/%v", postID)
		}
	case models.NotificationComment, models.NotificationReply:
		postID, okPost := payload["post_id"]
		commentID, okComment := payload["comment_id"]
		if okPost && okComment {
			return fmt.Sprintf("/posts/%v#comment-%v", postID, commentID)
		}
		if okPost {
			return fmt.Sprintf("/posts/%v", postID)
		}
	case models.NotificationFollow, models.NotificationFriendRequest, models.NotificationFriendAccept:
		if userID, ok := payload["user_id"]; ok {
			return fmt.Sprintf("/users/%v", userID)
		}
	}
	return "/notifications"
}

func priorityFor(ntype models.NotificationType) models.NotificationPriority {
	switch ntype {
	case models.NotificationFriendRequest, models.NotificationMention:
		return models.PriorityHigh
	default:
		return models.PriorityNormal
	}
}
