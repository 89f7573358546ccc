package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/realtime"
)

// fakeNotifications records created notifications in memory
type fakeNotifications struct {
	created []*models.Notification
	failAll bool
}

func (f *fakeNotifications) CreateNotification(n *models.Notification) error {
	if f.failAll {
		return assert.AnError
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotifications) GetNotificationByID(id uint) (*models.Notification, error) {
	return nil, assert.AnError
}

func (f *fakeNotifications) GetNotificationsByRecipient(recipientID uint, offset, limit int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifications) MarkAsRead(id uint) error { return nil }

func (f *fakeNotifications) MarkAllAsRead(recipientID uint) error { return nil }

func (f *fakeNotifications) Dismiss(id uint) error { return nil }

func (f *fakeNotifications) UnreadCount(recipientID uint) (int64, error) { return 0, nil }

// fakePreferences keys disabled pairs by [recipient, actor]
type fakePreferences struct {
	disabled map[[2]uint]bool
	fail     bool
}

func (f *fakePreferences) NotificationsEnabled(recipientID, actorID uint) (bool, error) {
	if f.fail {
		return true, assert.AnError
	}
	return !f.disabled[[2]uint{recipientID, actorID}], nil
}

func newTestDispatcher(store *fakeNotifications, prefs Preferences) *Dispatcher {
	return NewDispatcher(store, prefs, realtime.NewBroadcaster(nil))
}

func actor(id uint) *uint { return &id }

func TestDispatchStoresNotification(t *testing.T) {
	store := &fakeNotifications{}
	d := newTestDispatcher(store, &fakePreferences{disabled: map[[2]uint]bool{}})

	d.Dispatch(context.Background(), 1, actor(2), models.NotificationLike, map[string]any{"post_id": 9})

	require.Len(t, store.created, 1)
	assert.Equal(t, uint(1), store.created[0].RecipientID)
	assert.Equal(t, "/posts/9", store.created[0].Link)
}

func TestDispatchDropsSelfNotification(t *testing.T) {
	store := &fakeNotifications{}
	d := newTestDispatcher(store, nil)

	d.Dispatch(context.Background(), 1, actor(1), models.NotificationLike, nil)

	assert.Empty(t, store.created)
}

func TestDispatchHonorsRelationshipToggle(t *testing.T) {
	store := &fakeNotifications{}
	prefs := &fakePreferences{disabled: map[[2]uint]bool{{1, 2}: true}}
	d := newTestDispatcher(store, prefs)

	d.Dispatch(context.Background(), 1, actor(2), models.NotificationFollow, map[string]any{"user_id": 2})
	assert.Empty(t, store.created, "recipient switched this actor off")

	// The same actor notifying someone else still goes through.
	d.Dispatch(context.Background(), 3, actor(2), models.NotificationFollow, map[string]any{"user_id": 2})
	assert.Len(t, store.created, 1)
}

func TestDispatchDeliversWhenPreferenceLookupFails(t *testing.T) {
	store := &fakeNotifications{}
	d := newTestDispatcher(store, &fakePreferences{fail: true})

	d.Dispatch(context.Background(), 1, actor(2), models.NotificationComment, map[string]any{"post_id": 4, "comment_id": 5})

	require.Len(t, store.created, 1)
	assert.Equal(t, "/posts/4#comment-5", store.created[0].Link)
}

func TestDispatchSwallowsStoreFailure(t *testing.T) {
	store := &fakeNotifications{failAll: true}
	d := newTestDispatcher(store, nil)

	// Must not panic or propagate anything.
	d.Dispatch(context.Background(), 1, actor(2), models.NotificationLike, nil)
	assert.Empty(t, store.created)
}
