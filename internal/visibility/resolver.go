package visibility

import (
	"context"
	"time"

	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/pkg/logger"
	"go.uber.org/zap"
)

// Relationship is the classification of a viewer relative to a content owner
type Relationship string

const (
	RelationshipSelf             Relationship = "self"
	RelationshipFriends          Relationship = "friends"
	RelationshipFriendsOfFriends Relationship = "friends_of_friends"
	RelationshipStrangers        Relationship = "strangers"
)

// FriendshipStore is the friendship lookup surface the resolver needs
type FriendshipStore interface {
	AreFriends(userA, userB uint) (bool, error)
	AcceptedFriendIDs(userID uint, limit int) ([]uint, error)
}

// FollowStore exposes the close-friend flag lookup
type FollowStore interface {
	IsCloseFriend(ownerID, viewerID uint) (bool, error)
}

// GroupStore exposes group membership lookups
type GroupStore interface {
	IsMember(groupID, userID uint) (bool, error)
}

// PostStore is the post mutation surface used by bulk visibility updates
type PostStore interface {
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdateVisibility(ctx context.Context, post *models.Post, newVis models.Visibility, audience []uint, actorID uint) error
}

// Resolver decides whether a piece of content is visible to a viewer.
// Relationship state is computed fresh per check; nothing is cached here
// because friendship state changes between requests.
type Resolver struct {
	friendships FriendshipStore
	follows     FollowStore
	groups      GroupStore
	posts       PostStore

	// maxFriendsConsidered caps each side's friend-id list in the
	// friend-of-friend intersection. A soft performance limit, not a
	// correctness requirement.
	maxFriendsConsidered int

	now func() time.Time
}

// NewResolver creates a visibility resolver. maxFriendsConsidered <= 0
// disables the friend-list cap.
func NewResolver(friendships FriendshipStore, follows FollowStore, groups GroupStore, posts PostStore, maxFriendsConsidered int) *Resolver {
	return &Resolver{
		friendships:          friendships,
		follows:              follows,
		groups:               groups,
		posts:                posts,
		maxFriendsConsidered: maxFriendsConsidered,
		now:                  time.Now,
	}
}

// IsVisible reports whether the viewer may see the post. A nil viewer is an
// anonymous request and is treated as maximally restricted. Lookup failures
// deny rather than default-allow; this function never returns an error.
func (r *Resolver) IsVisible(ctx context.Context, post *models.Post, viewer *models.User) bool {
	now := r.now()

	// Owner always sees their own content, whatever its state.
	if viewer != nil && viewer.ID == post.UserID {
		return true
	}

	// Moderated, hidden or reported content is owner-only.
	if post.IsHidden || post.IsReported || post.ModeratedAt != nil {
		return false
	}

	// Scheduled posts stay invisible until publication.
	if post.IsScheduled(now) {
		return false
	}

	// An expired temporary-visibility window hides the post from everyone
	// but the owner.
	if post.VisibilityExpired(now) {
		return false
	}

	return r.levelAllows(ctx, post, viewer)
}

// levelAllows evaluates the visibility level against the viewer's
// relationship to the owner. The switch is exhaustive over the closed
// Visibility set; unknown levels deny.
func (r *Resolver) levelAllows(ctx context.Context, post *models.Post, viewer *models.User) bool {
	switch post.Visibility {
	case models.VisibilityPublic:
		return true

	case models.VisibilityPrivate:
		return false // owner handled above

	case models.VisibilityFriends:
		if viewer == nil {
			return false
		}
		return r.Relationship(ctx, viewer.ID, post.UserID) == RelationshipFriends

	case models.VisibilityCloseFriends:
		if viewer == nil {
			return false
		}
		if r.Relationship(ctx, viewer.ID, post.UserID) != RelationshipFriends {
			return false
		}
		isClose, err := r.follows.IsCloseFriend(post.UserID, viewer.ID)
		if err != nil {
			logger.Log.Warn("close-friend lookup failed", zap.Error(err))
			return false
		}
		return isClose

	case models.VisibilityFriendsOfFriends:
		if viewer == nil {
			return false
		}
		rel := r.Relationship(ctx, viewer.ID, post.UserID)
		return rel == RelationshipFriends || rel == RelationshipFriendsOfFriends

	case models.VisibilityCustom:
		// An empty custom audience is visible to nobody but the owner.
		if viewer == nil {
			return false
		}
		for _, id := range post.CustomAudience {
			if id == viewer.ID {
				return true
			}
		}
		return false

	case models.VisibilityGroup:
		if viewer == nil || post.GroupID == nil {
			return false
		}
		member, err := r.groups.IsMember(*post.GroupID, viewer.ID)
		if err != nil {
			logger.Log.Warn("group membership lookup failed", zap.Error(err))
			return false
		}
		return member
	}

	return false
}

// Relationship classifies viewer relative to owner: self > friends >
// friends_of_friends > strangers. Friend-of-friend status is a non-empty
// intersection of both sides' accepted-friend id sets, each capped at
// maxFriendsConsidered.
func (r *Resolver) Relationship(ctx context.Context, viewerID, ownerID uint) Relationship {
	if viewerID == ownerID {
		return RelationshipSelf
	}

	friends, err := r.friendships.AreFriends(viewerID, ownerID)
	if err != nil {
		logger.Log.Warn("friendship lookup failed", zap.Error(err))
		return RelationshipStrangers
	}
	if friends {
		return RelationshipFriends
	}

	viewerFriends, err := r.friendships.AcceptedFriendIDs(viewerID, r.maxFriendsConsidered)
	if err != nil {
		logger.Log.Warn("friend-id lookup failed", zap.Error(err))
		return RelationshipStrangers
	}
	ownerFriends, err := r.friendships.AcceptedFriendIDs(ownerID, r.maxFriendsConsidered)
	if err != nil {
		logger.Log.Warn("friend-id lookup failed", zap.Error(err))
		return RelationshipStrangers
	}

	seen := make(map[uint]bool, len(viewerFriends))
	for _, id := range viewerFriends {
		seen[id] = true
	}
	for _, id := range ownerFriends {
		if seen[id] {
			return RelationshipFriendsOfFriends
		}
	}
	return RelationshipStrangers
}
