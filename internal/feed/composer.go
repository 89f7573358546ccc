package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/visibility"
	"github.com/threadline/backend/pkg/logger"
	"github.com/threadline/backend/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FeedType selects the candidate set for a feed
type FeedType string

const (
	FeedChronological FeedType = "chronological"
	FeedAlgorithmic   FeedType = "algorithmic"
	FeedFollowing     FeedType = "following"
	FeedTrending      FeedType = "trending"
	FeedDiscover      FeedType = "discover"
	FeedBookmarks     FeedType = "bookmarks"
)

// Valid reports whether t is a known feed type
func (t FeedType) Valid() bool {
	switch t {
	case FeedChronological, FeedAlgorithmic, FeedFollowing, FeedTrending, FeedDiscover, FeedBookmarks:
		return true
	}
	return false
}

// Options are the per-request feed parameters
type Options struct {
	Type           FeedType   `json:"type"`
	Page           int        `json:"page"`
	PerPage        int        `json:"per_page"`
	Period         string     `json:"period,omitempty"` // 24h, 7d, 30d, all
	ContentType    string     `json:"content_type,omitempty"`
	Hashtags       []string   `json:"hashtags,omitempty"`
	DateFrom       *time.Time `json:"date_from,omitempty"`
	DateTo         *time.Time `json:"date_to,omitempty"`
	MinEngagement  int        `json:"min_engagement,omitempty"`
	ExcludeAuthors []uint     `json:"exclude_authors,omitempty"`
	BypassCache    bool       `json:"-"`
}

func (o *Options) normalize() {
	if !o.Type.Valid() {
		o.Type = FeedChronological
	}
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PerPage < 1 || o.PerPage > 50 {
		o.PerPage = 20
	}
	sort.Strings(o.Hashtags)
	sort.Slice(o.ExcludeAuthors, func(i, j int) bool { return o.ExcludeAuthors[i] < o.ExcludeAuthors[j] })
}

// hash produces the cache-key component for this option combination
func (o *Options) hash() string {
	h := fnv.New64a()
	raw, _ := json.Marshal(o)
	h.Write(raw)
	return fmt.Sprintf("%x", h.Sum64())
}

// Result is a composed feed page
type Result struct {
	Posts      []models.Post        `json:"posts"`
	Pagination *response.Pagination `json:"pagination"`
}

// Cache is the key-value surface the composer needs; pkg/cache.RedisClient
// satisfies it. A nil Cache disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// SocialGraph exposes the relationship lookups used to pick candidate sets
type SocialGraph interface {
	AcceptedFriendIDs(userID uint, limit int) ([]uint, error)
	FollowingIDs(followerID uint) ([]uint, error)
}

// Followers exposes the reverse edge used for cache invalidation fan-out
type Followers interface {
	FollowerIDs(userID uint) ([]uint, error)
}

// Bookmarks exposes saved-post ids for the bookmarks feed
type Bookmarks interface {
	SavedPostIDs(userID uint) ([]uint, error)
}

// maxCandidates bounds how many posts one feed request will scan and
// visibility-filter before paginating
const maxCandidates = 500

// Composer assembles paginated, filterable feeds. Every candidate post
// passes through the visibility resolver before inclusion, regardless of
// feed type.
type Composer struct {
	db        *gorm.DB
	cache     Cache
	resolver  *visibility.Resolver
	graph     SocialGraph
	bookmarks Bookmarks

	ttl      time.Duration
	lookback time.Duration // trending candidate window
	now      func() time.Time
}

// NewComposer creates a feed composer. cache may be nil.
func NewComposer(db *gorm.DB, c Cache, resolver *visibility.Resolver, graph SocialGraph, bookmarks Bookmarks, ttl, trendingLookback time.Duration) *Composer {
	return &Composer{
		db:        db,
		cache:     c,
		resolver:  resolver,
		graph:     graph,
		bookmarks: bookmarks,
		ttl:       ttl,
		lookback:  trendingLookback,
		now:       time.Now,
	}
}

// GenerateFeed returns one page of the viewer's feed. viewer may be nil
// (anonymous), in which case only public content survives filtering.
func (c *Composer) GenerateFeed(ctx context.Context, viewer *models.User, opts Options) (*Result, error) {
	opts.normalize()

	key := c.cacheKey(ctx, viewer, &opts)
	if key != "" && !opts.BypassCache {
		if cached, err := c.cache.Get(ctx, key); err == nil {
			var result Result
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return &result, nil
			}
		}
	}

	candidates, err := c.candidates(ctx, viewer, &opts)
	if err != nil {
		return nil, err
	}

	// Visibility filtering is layered on top of every candidate set,
	// never skipped.
	visible := make([]models.Post, 0, len(candidates))
	for i := range candidates {
		if c.resolver.IsVisible(ctx, &candidates[i], viewer) {
			visible = append(visible, candidates[i])
		}
	}

	c.rank(visible, opts.Type)

	total := int64(len(visible))
	start := (opts.Page - 1) * opts.PerPage
	end := start + opts.PerPage
	if start > len(visible) {
		start = len(visible)
	}
	if end > len(visible) {
		end = len(visible)
	}

	result := &Result{
		Posts:      visible[start:end],
		Pagination: response.NewPagination(opts.Page, opts.PerPage, total),
	}

	if key != "" {
		raw, err := json.Marshal(result)
		if err == nil {
			if err := c.cache.SetEx(ctx, key, raw, c.ttl); err != nil {
				logger.Log.Warn("feed cache write failed", zap.Error(err))
			}
		}
	}

	return result, nil
}

// candidates runs the per-type candidate query. Ordering is always
// published_at DESC with an id tiebreak, both monotonic and immutable, so
// pagination stays stable while new posts arrive.
func (c *Composer) candidates(ctx context.Context, viewer *models.User, opts *Options) ([]models.Post, error) {
	now := c.now()
	q := c.db.WithContext(ctx).Model(&models.Post{}).
		Where("published_at <= ?", now)

	switch opts.Type {
	case FeedFollowing:
		if viewer == nil {
			return []models.Post{}, nil
		}
		authorIDs, err := c.followedAuthors(viewer.ID)
		if err != nil {
			return nil, err
		}
		if len(authorIDs) == 0 {
			return []models.Post{}, nil
		}
		q = q.Where("user_id IN ?", authorIDs)

	case FeedTrending:
		q = q.Where("published_at >= ?", now.Add(-c.lookback))

	case FeedDiscover:
		if viewer != nil {
			known, err := c.followedAuthors(viewer.ID)
			if err != nil {
				return nil, err
			}
			known = append(known, viewer.ID)
			q = q.Where("user_id NOT IN ?", known)
		}

	case FeedBookmarks:
		if viewer == nil {
			return []models.Post{}, nil
		}
		ids, err := c.bookmarks.SavedPostIDs(viewer.ID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []models.Post{}, nil
		}
		q = q.Where("id IN ?", ids)
	}

	q = applyFilters(q, opts, now)

	var posts []models.Post
	err := q.Order("published_at DESC, id DESC").Limit(maxCandidates).Find(&posts).Error
	return posts, err
}

// followedAuthors is the union of the viewer's follows and accepted friends
func (c *Composer) followedAuthors(viewerID uint) ([]uint, error) {
	following, err := c.graph.FollowingIDs(viewerID)
	if err != nil {
		return nil, err
	}
	friends, err := c.graph.AcceptedFriendIDs(viewerID, 0)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(following)+len(friends))
	out := make([]uint, 0, len(following)+len(friends))
	for _, id := range append(following, friends...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

func applyFilters(q *gorm.DB, opts *Options, now time.Time) *gorm.DB {
	if d := periodDuration(opts.Period); d > 0 {
		q = q.Where("published_at >= ?", now.Add(-d))
	}
	if opts.ContentType != "" {
		q = q.Where("type = ?", opts.ContentType)
	}
	for _, tag := range opts.Hashtags {
		q = q.Where("content LIKE ?", "%#"+strings.TrimPrefix(tag, "#")+"%")
	}
	if opts.DateFrom != nil {
		q = q.Where("published_at >= ?", *opts.DateFrom)
	}
	if opts.DateTo != nil {
		q = q.Where("published_at <= ?", *opts.DateTo)
	}
	if opts.MinEngagement > 0 {
		q = q.Where("likes_count + comments_count + shares_count >= ?", opts.MinEngagement)
	}
	if len(opts.ExcludeAuthors) > 0 {
		q = q.Where("user_id NOT IN ?", opts.ExcludeAuthors)
	}
	return q
}

func periodDuration(period string) time.Duration {
	switch period {
	case "24h":
		return 24 * time.Hour
	case "7d":
		return 7 * 24 * time.Hour
	case "30d":
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// rank orders the visible set for ranked feed types. Chronological types
// keep the query's published_at ordering.
func (c *Composer) rank(posts []models.Post, feedType FeedType) {
	switch feedType {
	case FeedTrending:
		now := c.now()
		sort.SliceStable(posts, func(i, j int) bool {
			return trendingScore(&posts[i], now) > trendingScore(&posts[j], now)
		})
	case FeedAlgorithmic:
		now := c.now()
		sort.SliceStable(posts, func(i, j int) bool {
			return algorithmicScore(&posts[i], now) > algorithmicScore(&posts[j], now)
		})
	}
}

// algorithmicScore adds a small, linearly decaying recency bonus to flat
// engagement so fresh posts are not buried under long-lived high scorers
func algorithmicScore(p *models.Post, now time.Time) float64 {
	score := float64(p.EngagementScore())
	if age := now.Sub(p.PublishedAt); age >= 0 && age < 48*time.Hour {
		score += 6 * (1 - age.Hours()/48)
	}
	return score
}

// trendingScore divides flat engagement by elapsed hours since publication,
// with a floor of 1 hour to avoid division by zero
func trendingScore(p *models.Post, now time.Time) float64 {
	hours := now.Sub(p.PublishedAt).Hours()
	if hours < 1 {
		hours = 1
	}
	return float64(p.EngagementScore()) / hours
}
