package visibility

import (
	"context"
	"time"

	"github.com/threadline/backend/internal/models"
)

// AudienceSummary is a human-consumable description of who can see a post.
// Individual viewer identities are only enumerated for the owner or an admin.
type AudienceSummary struct {
	Visibility         models.Visibility `json:"visibility"`
	CustomAudienceSize int               `json:"custom_audience_size,omitempty"`
	CustomAudience     []uint            `json:"custom_audience,omitempty"`
	GroupID            *uint             `json:"group_id,omitempty"`
	Expired            bool              `json:"expired"`
	ExpiresAt          *time.Time        `json:"expires_at,omitempty"`
}

// AudienceSummary describes the post's audience without leaking member
// identities to non-owners
func (r *Resolver) AudienceSummary(post *models.Post, actor *models.User) AudienceSummary {
	summary := AudienceSummary{
		Visibility: post.Visibility,
		GroupID:    post.GroupID,
		Expired:    post.VisibilityExpired(r.now()),
		ExpiresAt:  post.VisibilityExpiresAt,
	}
	if post.Visibility == models.VisibilityCustom {
		summary.CustomAudienceSize = len(post.CustomAudience)
		if actor != nil && (actor.ID == post.UserID || actor.IsAdmin) {
			summary.CustomAudience = post.CustomAudience
		}
	}
	return summary
}

// BulkResult reports the outcome of a bulk visibility update
type BulkResult struct {
	Updated []uint          `json:"updated"`
	Failed  []uint          `json:"failed"`
	Errors  map[uint]string `json:"errors,omitempty"`
}

// BulkUpdateVisibility applies one visibility change across a batch of
// posts. Items the actor does not own are skipped and reported per-item;
// they never fail the whole batch.
func (r *Resolver) BulkUpdateVisibility(ctx context.Context, postIDs []uint, newVis models.Visibility, actor *models.User) BulkResult {
	result := BulkResult{
		Updated: []uint{},
		Failed:  []uint{},
		Errors:  map[uint]string{},
	}

	for _, id := range postIDs {
		post, err := r.posts.GetPostByID(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, id)
			result.Errors[id] = "not found"
			continue
		}
		if actor == nil || post.UserID != actor.ID {
			result.Failed = append(result.Failed, id)
			result.Errors[id] = "not owner"
			continue
		}
		if err := r.posts.UpdateVisibility(ctx, post, newVis, post.CustomAudience, actor.ID); err != nil {
			result.Failed = append(result.Failed, id)
			result.Errors[id] = "update failed"
			continue
		}
		result.Updated = append(result.Updated, id)
	}

	return result
}
