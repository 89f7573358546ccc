package feed

import (
	"context"
	"fmt"

	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/pkg/logger"
	"go.uber.org/zap"
)

// Cached feed entries are keyed per viewer + feed type + option hash, with
// a per-viewer version counter mixed in. Invalidation bumps the counter,
// which orphans every cached page for that viewer at once; the orphans
// expire by TTL.

func (c *Composer) cacheKey(ctx context.Context, viewer *models.User, opts *Options) string {
	if c.cache == nil {
		return ""
	}
	viewerID := uint(0)
	if viewer != nil {
		viewerID = viewer.ID
	}
	ver, err := c.cache.GetInt(ctx, versionKey(viewerID))
	if err != nil {
		ver = 0
	}
	return fmt.Sprintf("feed:%d:%d:%s:%s", viewerID, ver, opts.Type, opts.hash())
}

func versionKey(viewerID uint) string {
	return fmt.Sprintf("feed:ver:%d", viewerID)
}

// InvalidateViewer drops every cached feed page for one viewer. Fired on
// explicit preference changes (follow settings, mutes).
func (c *Composer) InvalidateViewer(ctx context.Context, viewerID uint) {
	if c.cache == nil {
		return
	}
	if _, err := c.cache.Incr(ctx, versionKey(viewerID)); err != nil {
		logger.Log.Warn("feed cache invalidation failed",
			zap.Uint("viewer_id", viewerID), zap.Error(err))
	}
}

// InvalidateForAuthor drops cached feeds of everyone who might see the
// author's posts: the author's followers, their friends and the author
// themselves. Fired on new posts and visibility changes.
func (c *Composer) InvalidateForAuthor(ctx context.Context, followers Followers, authorID uint) {
	if c.cache == nil {
		return
	}
	c.InvalidateViewer(ctx, authorID)

	followerIDs, err := followers.FollowerIDs(authorID)
	if err != nil {
		logger.Log.Warn("follower lookup for invalidation failed", zap.Error(err))
	}
	for _, id := range followerIDs {
		c.InvalidateViewer(ctx, id)
	}

	friendIDs, err := c.graph.AcceptedFriendIDs(authorID, 0)
	if err != nil {
		logger.Log.Warn("friend lookup for invalidation failed", zap.Error(err))
	}
	for _, id := range friendIDs {
		c.InvalidateViewer(ctx, id)
	}
}
