package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/threadline/backend/pkg/logger"
	"go.uber.org/zap"
)

// Event names published on the realtime channel
const (
	EventCommentCreated      = "comment.created"
	EventLikeToggled         = "like.toggled"
	EventNotificationCreated = "notification.created"
)

// Publisher is the pub/sub surface the broadcaster writes to;
// pkg/cache.RedisClient satisfies it
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// Event is the wire format pushed to the external broadcaster
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

// Broadcaster is the publish-only integration point with the external
// real-time transport. Delivery is best-effort, at-least-once on the
// consumer side; publish failures are logged and swallowed.
type Broadcaster struct {
	pub Publisher
}

// NewBroadcaster creates a broadcaster. pub may be nil, which turns every
// publish into a no-op.
func NewBroadcaster(pub Publisher) *Broadcaster {
	return &Broadcaster{pub: pub}
}

// PublishToUser emits an event on a single user's channel
func (b *Broadcaster) PublishToUser(ctx context.Context, userID uint, eventType string, payload map[string]any) {
	b.publish(ctx, fmt.Sprintf("realtime:user:%d", userID), eventType, payload)
}

// PublishGlobal emits an event on the shared channel
func (b *Broadcaster) PublishGlobal(ctx context.Context, eventType string, payload map[string]any) {
	b.publish(ctx, "realtime:events", eventType, payload)
}

func (b *Broadcaster) publish(ctx context.Context, channel, eventType string, payload map[string]any) {
	if b == nil || b.pub == nil {
		return
	}
	raw, err := json.Marshal(Event{Type: eventType, Payload: payload, At: time.Now()})
	if err != nil {
		logger.Log.Warn("realtime event marshal failed", zap.Error(err))
		return
	}
	if err := b.pub.Publish(ctx, channel, raw); err != nil {
		logger.Log.Warn("realtime publish failed",
			zap.String("channel", channel),
			zap.String("event", eventType),
			zap.Error(err))
	}
}
