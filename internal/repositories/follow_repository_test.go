package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/backend/internal/models"
)

func TestFollowRejectsSelfAndDuplicates(t *testing.T) {
	repo := NewPostgresFollowRepository(testDB(t))

	_, err := repo.Follow(1, 1)
	assert.Error(t, err)

	follow, err := repo.Follow(1, 2)
	require.NoError(t, err)
	assert.True(t, follow.NotificationsEnabled)

	_, err = repo.Follow(1, 2)
	assert.Error(t, err)

	// Follow edges are directed; the reverse edge is independent.
	_, err = repo.Follow(2, 1)
	assert.NoError(t, err)
}

func TestCloseFriendFlagIsDirectional(t *testing.T) {
	repo := NewPostgresFollowRepository(testDB(t))

	// Owner 1 follows viewer 2 and marks them a close friend.
	follow, err := repo.Follow(1, 2)
	require.NoError(t, err)

	yes := true
	require.NoError(t, repo.UpdateSettings(follow, &models.UpdateFollowSettingsRequest{CloseFriend: &yes}))

	isClose, err := repo.IsCloseFriend(1, 2)
	require.NoError(t, err)
	assert.True(t, isClose)

	// The designation does not flow backwards.
	isClose, err = repo.IsCloseFriend(2, 1)
	require.NoError(t, err)
	assert.False(t, isClose)
}

func TestUpdateSettingsPartialPatch(t *testing.T) {
	repo := NewPostgresFollowRepository(testDB(t))

	follow, err := repo.Follow(1, 2)
	require.NoError(t, err)

	muted := true
	require.NoError(t, repo.UpdateSettings(follow, &models.UpdateFollowSettingsRequest{Muted: &muted}))

	reloaded, err := repo.GetFollow(1, 2)
	require.NoError(t, err)
	assert.True(t, reloaded.Muted)
	assert.True(t, reloaded.NotificationsEnabled, "untouched fields keep their values")
}

func TestFollowerAndFollowingIDs(t *testing.T) {
	repo := NewPostgresFollowRepository(testDB(t))

	_, err := repo.Follow(1, 2)
	require.NoError(t, err)
	_, err = repo.Follow(1, 3)
	require.NoError(t, err)
	_, err = repo.Follow(4, 1)
	require.NoError(t, err)

	following, err := repo.FollowingIDs(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3}, following)

	followers, err := repo.FollowerIDs(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{4}, followers)
}

func TestMutedFollowsExcludedFromFollowingIDs(t *testing.T) {
	repo := NewPostgresFollowRepository(testDB(t))

	follow, err := repo.Follow(1, 2)
	require.NoError(t, err)
	_, err = repo.Follow(1, 3)
	require.NoError(t, err)

	muted := true
	require.NoError(t, repo.UpdateSettings(follow, &models.UpdateFollowSettingsRequest{Muted: &muted}))

	following, err := repo.FollowingIDs(1)
	require.NoError(t, err)
	assert.NotContains(t, following, uint(2), "muted follows must not feed candidate sets")
	assert.ElementsMatch(t, []uint{3}, following)

	// The edge itself survives; only candidate lookups skip it.
	stillFollowing, err := repo.IsFollowing(1, 2)
	require.NoError(t, err)
	assert.True(t, stillFollowing)
}

func TestNotificationsEnabledFollowsRecipientToggle(t *testing.T) {
	repo := NewPostgresFollowRepository(testDB(t))

	// No edge between the pair defaults to enabled.
	enabled, err := repo.NotificationsEnabled(1, 2)
	require.NoError(t, err)
	assert.True(t, enabled)

	follow, err := repo.Follow(1, 2)
	require.NoError(t, err)

	off := false
	require.NoError(t, repo.UpdateSettings(follow, &models.UpdateFollowSettingsRequest{NotificationsEnabled: &off}))

	enabled, err = repo.NotificationsEnabled(1, 2)
	require.NoError(t, err)
	assert.False(t, enabled)

	// The toggle is directional; 2's view of 1 is untouched.
	enabled, err = repo.NotificationsEnabled(2, 1)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestUnfollowMissingEdge(t *testing.T) {
	repo := NewPostgresFollowRepository(testDB(t))
	assert.Error(t, repo.Unfollow(1, 2))
}
