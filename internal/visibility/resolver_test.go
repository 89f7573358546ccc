package visibility

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/threadline/backend/internal/models"
)

// fakeGraph is an in-memory friendship store keyed by unordered pairs
type fakeGraph struct {
	friends map[[2]uint]bool
	fail    bool
}

func (f *fakeGraph) key(a, b uint) [2]uint {
	if a > b {
		a, b = b, a
	}
	return [2]uint{a, b}
}

func (f *fakeGraph) AreFriends(a, b uint) (bool, error) {
	if f.fail {
		return false, errors.New("db down")
	}
	return f.friends[f.key(a, b)], nil
}

func (f *fakeGraph) AcceptedFriendIDs(userID uint, limit int) ([]uint, error) {
	if f.fail {
		return nil, errors.New("db down")
	}
	ids := make([]uint, 0)
	for pair, ok := range f.friends {
		if !ok {
			continue
		}
		if pair[0] == userID {
			ids = append(ids, pair[1])
		} else if pair[1] == userID {
			ids = append(ids, pair[0])
		}
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

type fakeFollows struct {
	closeFriends map[[2]uint]bool // [owner, viewer]
}

func (f *fakeFollows) IsCloseFriend(ownerID, viewerID uint) (bool, error) {
	return f.closeFriends[[2]uint{ownerID, viewerID}], nil
}

type fakeGroups struct {
	members map[[2]uint]bool // [group, user]
}

func (f *fakeGroups) IsMember(groupID, userID uint) (bool, error) {
	return f.members[[2]uint{groupID, userID}], nil
}

func newTestResolver(graph *fakeGraph, follows *fakeFollows, groups *fakeGroups) *Resolver {
	if graph == nil {
		graph = &fakeGraph{friends: map[[2]uint]bool{}}
	}
	if follows == nil {
		follows = &fakeFollows{closeFriends: map[[2]uint]bool{}}
	}
	if groups == nil {
		groups = &fakeGroups{members: map[[2]uint]bool{}}
	}
	return NewResolver(graph, follows, groups, nil, 1000)
}

func publicPost(ownerID uint) *models.Post {
	return &models.Post{
		ID:          1,
		UserID:      ownerID,
		Visibility:  models.VisibilityPublic,
		PublishedAt: time.Now().Add(-time.Hour),
	}
}

func TestOwnerAlwaysSees(t *testing.T) {
	r := newTestResolver(nil, nil, nil)
	owner := &models.User{ID: 1}
	ctx := context.Background()

	post := publicPost(1)
	post.Visibility = models.VisibilityPrivate
	assert.True(t, r.IsVisible(ctx, post, owner))

	// Even hidden, expired and scheduled content stays visible to its owner.
	post.IsHidden = true
	assert.True(t, r.IsVisible(ctx, post, owner))

	post.IsHidden = false
	post.PublishedAt = time.Now().Add(time.Hour)
	assert.True(t, r.IsVisible(ctx, post, owner))
}

func TestAnonymousViewerOnlySeesPublic(t *testing.T) {
	r := newTestResolver(nil, nil, nil)
	ctx := context.Background()

	for _, vis := range []models.Visibility{
		models.VisibilityFriends,
		models.VisibilityCloseFriends,
		models.VisibilityFriendsOfFriends,
		models.VisibilityPrivate,
		models.VisibilityGroup,
		models.VisibilityCustom,
	} {
		post := publicPost(1)
		post.Visibility = vis
		assert.False(t, r.IsVisible(ctx, post, nil), "visibility %s", vis)
	}

	assert.True(t, r.IsVisible(ctx, publicPost(1), nil))
}

func TestFriendsVisibility(t *testing.T) {
	graph := &fakeGraph{friends: map[[2]uint]bool{{1, 2}: true}}
	r := newTestResolver(graph, nil, nil)
	ctx := context.Background()

	post := publicPost(1)
	post.Visibility = models.VisibilityFriends

	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 2}))
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 3}))
}

func TestCloseFriendsRequiresFriendshipAndFlag(t *testing.T) {
	graph := &fakeGraph{friends: map[[2]uint]bool{{1, 2}: true, {1, 3}: true}}
	follows := &fakeFollows{closeFriends: map[[2]uint]bool{{1, 2}: true}}
	r := newTestResolver(graph, follows, nil)
	ctx := context.Background()

	post := publicPost(1)
	post.Visibility = models.VisibilityCloseFriends

	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 2}))
	// Friend without the close-friend flag.
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 3}))
	// Close-friend flag without friendship does not help.
	follows.closeFriends[[2]uint{1, 4}] = true
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 4}))
}

func TestFriendOfFriendViaIntersection(t *testing.T) {
	// 1 - 2 - 3: viewer 3 shares friend 2 with owner 1.
	graph := &fakeGraph{friends: map[[2]uint]bool{{1, 2}: true, {2, 3}: true}}
	r := newTestResolver(graph, nil, nil)
	ctx := context.Background()

	post := publicPost(1)
	post.Visibility = models.VisibilityFriendsOfFriends

	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 2}), "direct friends qualify")
	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 3}), "shared friend qualifies")
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 4}), "stranger does not")
}

func TestCustomAudience(t *testing.T) {
	r := newTestResolver(nil, nil, nil)
	ctx := context.Background()

	post := publicPost(1)
	post.Visibility = models.VisibilityCustom
	post.CustomAudience = []uint{5, 6}

	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 5}))
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 7}))

	// Empty audience means nobody but the owner.
	post.CustomAudience = nil
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 5}))
	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 1}))
}

func TestGroupVisibility(t *testing.T) {
	groups := &fakeGroups{members: map[[2]uint]bool{{9, 2}: true}}
	r := newTestResolver(nil, nil, groups)
	ctx := context.Background()

	groupID := uint(9)
	post := publicPost(1)
	post.Visibility = models.VisibilityGroup
	post.GroupID = &groupID

	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 2}))
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 3}))

	post.GroupID = nil
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 2}))
}

func TestExpiredVisibilityWindow(t *testing.T) {
	r := newTestResolver(nil, nil, nil)
	ctx := context.Background()

	expired := time.Now().Add(-time.Minute)
	post := publicPost(1)
	post.VisibilityExpiresAt = &expired

	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 2}))
	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 1}))
}

func TestScheduledPostHiddenUntilPublication(t *testing.T) {
	r := newTestResolver(nil, nil, nil)
	base := time.Now()
	r.now = func() time.Time { return base }
	ctx := context.Background()

	post := publicPost(1)
	post.PublishedAt = base.Add(time.Hour)
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 2}))

	r.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.True(t, r.IsVisible(ctx, post, &models.User{ID: 2}))
}

func TestLookupFailureDenies(t *testing.T) {
	graph := &fakeGraph{friends: map[[2]uint]bool{{1, 2}: true}, fail: true}
	r := newTestResolver(graph, nil, nil)
	ctx := context.Background()

	post := publicPost(1)
	post.Visibility = models.VisibilityFriends
	assert.False(t, r.IsVisible(ctx, post, &models.User{ID: 2}))
}

func TestRelationshipClassification(t *testing.T) {
	graph := &fakeGraph{friends: map[[2]uint]bool{{1, 2}: true, {2, 3}: true}}
	r := newTestResolver(graph, nil, nil)
	ctx := context.Background()

	assert.Equal(t, RelationshipSelf, r.Relationship(ctx, 1, 1))
	assert.Equal(t, RelationshipFriends, r.Relationship(ctx, 2, 1))
	assert.Equal(t, RelationshipFriendsOfFriends, r.Relationship(ctx, 3, 1))
	assert.Equal(t, RelationshipStrangers, r.Relationship(ctx, 4, 1))
}

func TestAudienceSummaryHidesMembersFromNonOwners(t *testing.T) {
	r := newTestResolver(nil, nil, nil)

	post := publicPost(1)
	post.Visibility = models.VisibilityCustom
	post.CustomAudience = []uint{5, 6}

	forOwner := r.AudienceSummary(post, &models.User{ID: 1})
	assert.Equal(t, []uint{5, 6}, forOwner.CustomAudience)
	assert.Equal(t, 2, forOwner.CustomAudienceSize)

	forViewer := r.AudienceSummary(post, &models.User{ID: 5})
	assert.Nil(t, forViewer.CustomAudience)
	assert.Equal(t, 2, forViewer.CustomAudienceSize)
}
