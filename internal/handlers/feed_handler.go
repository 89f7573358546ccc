package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/feed"
	"github.com/threadline/backend/pkg/response"
)

// FeedHandler handles HTTP requests for composed feeds
type FeedHandler struct {
	composer *feed.Composer
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(composer *feed.Composer) *FeedHandler {
	return &FeedHandler{composer: composer}
}

// RegisterFeedRoutes registers the feed route
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns one page of the requested feed type. The viewer may be
// anonymous, in which case only public content is served.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	actor := currentUser(c)

	feedType := feed.FeedType(c.QueryParam("type"))
	if c.QueryParam("type") != "" && !feedType.Valid() {
		return apierror.Validation("unknown feed type", map[string]string{
			"type": "must be one of chronological, algorithmic, following, trending, discover, bookmarks",
		})
	}
	if actor == nil && (feedType == feed.FeedFollowing || feedType == feed.FeedBookmarks) {
		return apierror.Unauthorized("this feed requires authentication")
	}

	page, perPage := pageParams(c)
	opts := feed.Options{
		Type:        feedType,
		Page:        page,
		PerPage:     perPage,
		Period:      c.QueryParam("period"),
		ContentType: c.QueryParam("content_type"),
		BypassCache: c.QueryParam("bypass_cache") == "true",
	}

	if tags := c.QueryParam("hashtags"); tags != "" {
		opts.Hashtags = strings.Split(tags, ",")
	}
	if from := c.QueryParam("date_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return apierror.Validation("invalid date_from", map[string]string{"date_from": "must be RFC3339"})
		}
		opts.DateFrom = &t
	}
	if to := c.QueryParam("date_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return apierror.Validation("invalid date_to", map[string]string{"date_to": "must be RFC3339"})
		}
		opts.DateTo = &t
	}
	if min := c.QueryParam("min_engagement"); min != "" {
		n, err := strconv.Atoi(min)
		if err != nil || n < 0 {
			return apierror.Validation("invalid min_engagement", map[string]string{"min_engagement": "must be a non-negative integer"})
		}
		opts.MinEngagement = n
	}
	if exclude := c.QueryParam("exclude_authors"); exclude != "" {
		for _, raw := range strings.Split(exclude, ",") {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return apierror.Validation("invalid exclude_authors", map[string]string{"exclude_authors": "must be a comma-separated list of ids"})
			}
			opts.ExcludeAuthors = append(opts.ExcludeAuthors, uint(id))
		}
	}

	result, err := h.composer.GenerateFeed(c.Request().Context(), actor, opts)
	if err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.Paginated(result.Posts, result.Pagination))
}
