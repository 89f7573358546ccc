package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/feed"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/internal/visibility"
	"github.com/threadline/backend/pkg/response"
	"gorm.io/gorm"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	resolver         *visibility.Resolver
	composer         *feed.Composer
	restoreWindow    time.Duration
	editWindow       time.Duration
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	resolver *visibility.Resolver,
	composer *feed.Composer,
	restoreWindow time.Duration,
	editWindow time.Duration,
) *PostHandler {
	return &PostHandler{
		postRepository:   postRepo,
		followRepository: followRepo,
		resolver:         resolver,
		composer:         composer,
		restoreWindow:    restoreWindow,
		editWindow:       editWindow,
	}
}

// RegisterPostRoutes registers post-related routes. Reads are open to
// anonymous viewers; mutations require auth.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/posts", h.CreatePost, auth)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost, auth)
	g.DELETE("/posts/:id", h.DeletePost, auth)
	g.POST("/posts/:id/restore", h.RestorePost, auth)
	g.DELETE("/posts/:id/permanent", h.PermanentlyDeletePost, auth)
	g.POST("/posts/:id/share", h.SharePost, auth)
	g.POST("/posts/:id/report", h.ReportPost, auth)
	g.PUT("/posts/:id/visibility", h.UpdateVisibility, auth)
	g.POST("/posts/visibility/bulk", h.BulkUpdateVisibility, auth)
	g.GET("/posts/:id/audience", h.GetAudienceSummary, auth)
	g.GET("/posts/:id/visibility-history", h.GetVisibilityHistory, auth)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

// CreatePost creates a new post, published immediately or scheduled when
// published_at lies in the future
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor := currentUser(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	vis := req.Visibility
	if vis == "" {
		vis = models.VisibilityPublic
	}
	if vis == models.VisibilityCustom && len(req.CustomAudience) == 0 {
		return apierror.Validation("custom visibility requires a non-empty audience", map[string]string{
			"custom_audience": "must list at least one user",
		})
	}
	if vis == models.VisibilityGroup && req.GroupID == nil {
		return apierror.Validation("group visibility requires a group", map[string]string{
			"group_id": "this field is required",
		})
	}

	post := &models.Post{
		UserID:              actor.ID,
		GroupID:             req.GroupID,
		Content:             req.Content,
		Type:                orDefault(req.Type, "text"),
		Visibility:          vis,
		CustomAudience:      req.CustomAudience,
		VisibilityExpiresAt: req.VisibilityExpiresAt,
		AllowComments:       boolOr(req.AllowComments, true),
		AllowReactions:      boolOr(req.AllowReactions, true),
		AllowResharing:      boolOr(req.AllowResharing, true),
	}
	if req.PublishedAt != nil {
		post.PublishedAt = *req.PublishedAt
	}

	// The edit window opens at publication, so a scheduled post stays
	// editable until it goes live plus the window.
	editBase := time.Now()
	if post.PublishedAt.After(editBase) {
		editBase = post.PublishedAt
	}
	editableUntil := editBase.Add(h.editWindow)
	post.EditableUntil = &editableUntil

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return apierror.Internal()
	}

	// New content invalidates cached feeds of everyone who could see it.
	go h.composer.InvalidateForAuthor(context.Background(), h.followRepository, actor.ID)

	return c.JSON(http.StatusCreated, response.OK(post))
}

// GetPost returns a single post if visible to the actor. Invisible posts
// yield the same 404 as absent ones.
func (h *PostHandler) GetPost(c echo.Context) error {
	actor := currentUser(c)
	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}

	if actor == nil || actor.ID != post.UserID {
		go h.postRepository.IncrementViewsCount(context.Background(), post.ID)
	}

	return c.JSON(http.StatusOK, response.OK(post))
}

// UpdatePost applies a versioned content edit
func (h *PostHandler) UpdatePost(c echo.Context) error {
	actor := currentUser(c)
	post, err := h.ownedPost(c, actor)
	if err != nil {
		return err
	}
	if post.EditLocked {
		return apierror.StateConflict("this post is locked for editing")
	}
	if post.EditableUntil != nil && post.EditableUntil.Before(time.Now()) && !actor.IsAdmin {
		return apierror.StateConflict("the edit window for this post has closed")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.postRepository.UpdateContent(c.Request().Context(), post, req.Content); err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.OK(post))
}

// DeletePost soft-deletes a post with a restoration deadline
func (h *PostHandler) DeletePost(c echo.Context) error {
	actor := currentUser(c)
	post, err := h.ownedPost(c, actor)
	if err != nil {
		return err
	}

	var req models.DeletePostRequest
	_ = c.Bind(&req) // reason is optional

	restorableUntil := time.Now().Add(h.restoreWindow)
	if err := h.postRepository.SoftDeletePost(c.Request().Context(), post.ID, req.Reason, restorableUntil); err != nil {
		return apierror.Internal()
	}

	go h.composer.InvalidateForAuthor(context.Background(), h.followRepository, actor.ID)

	return c.JSON(http.StatusOK, response.OKMessage("post deleted; restorable until "+restorableUntil.Format(time.RFC3339)))
}

// RestorePost clears a soft delete while the restoration window is open
func (h *PostHandler) RestorePost(c echo.Context) error {
	actor := currentUser(c)
	id, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostIncludingDeleted(c.Request().Context(), id)
	if err != nil {
		return apierror.NotFound("post")
	}
	if post.UserID != actor.ID && !actor.IsAdmin {
		return apierror.NotFound("post")
	}
	if !post.DeletedAt.Valid {
		return apierror.StateConflict("post is not deleted")
	}
	if post.RestorableUntil != nil && post.RestorableUntil.Before(time.Now()) {
		return apierror.StateConflict("the restoration window for this post has closed")
	}

	if err := h.postRepository.RestorePost(c.Request().Context(), id); err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.OKMessage("post restored"))
}

// PermanentlyDeletePost removes a post for good, an explicit owner or
// admin operation that works whether or not the restoration window is open.
func (h *PostHandler) PermanentlyDeletePost(c echo.Context) error {
	actor := currentUser(c)
	id, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostIncludingDeleted(c.Request().Context(), id)
	if err != nil {
		return apierror.NotFound("post")
	}
	if post.UserID != actor.ID && !actor.IsAdmin {
		return apierror.NotFound("post")
	}

	if err := h.postRepository.PermanentlyDeletePost(c.Request().Context(), id); err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.OKMessage("post permanently deleted"))
}

// SharePost counts a reshare of a visible post
func (h *PostHandler) SharePost(c echo.Context) error {
	actor := currentUser(c)
	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}
	if !post.AllowResharing {
		return apierror.Forbidden("resharing is disabled on this post")
	}

	if err := h.postRepository.IncrementSharesCount(c.Request().Context(), post.ID); err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.OKMessage("post shared"))
}

// ReportPost flags a post for moderation
func (h *PostHandler) ReportPost(c echo.Context) error {
	actor := currentUser(c)
	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}
	if post.IsReported {
		return apierror.StateConflict("this post has already been reported")
	}

	if err := h.postRepository.MarkReported(c.Request().Context(), post.ID); err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.OKMessage("post reported"))
}

// UpdateVisibility changes a single post's visibility, appending to its history
func (h *PostHandler) UpdateVisibility(c echo.Context) error {
	actor := currentUser(c)
	post, err := h.ownedPost(c, actor)
	if err != nil {
		return err
	}

	var req models.UpdateVisibilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Visibility == models.VisibilityCustom && len(req.CustomAudience) == 0 {
		return apierror.Validation("custom visibility requires a non-empty audience", map[string]string{
			"custom_audience": "must list at least one user",
		})
	}

	if err := h.postRepository.UpdateVisibility(c.Request().Context(), post, req.Visibility, req.CustomAudience, actor.ID); err != nil {
		return apierror.Internal()
	}

	go h.composer.InvalidateForAuthor(context.Background(), h.followRepository, actor.ID)

	return c.JSON(http.StatusOK, response.OK(post))
}

// BulkUpdateVisibility applies one visibility change across many posts,
// skipping items the actor does not own
func (h *PostHandler) BulkUpdateVisibility(c echo.Context) error {
	actor := currentUser(c)

	var req models.BulkVisibilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result := h.resolver.BulkUpdateVisibility(c.Request().Context(), req.PostIDs, req.Visibility, actor)

	go h.composer.InvalidateForAuthor(context.Background(), h.followRepository, actor.ID)

	return c.JSON(http.StatusOK, response.OK(result))
}

// GetAudienceSummary describes who can see a post without enumerating
// viewer identities to non-owners
func (h *PostHandler) GetAudienceSummary(c echo.Context) error {
	actor := currentUser(c)
	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.OK(h.resolver.AudienceSummary(post, actor)))
}

// GetVisibilityHistory returns the append-only visibility change log,
// owner and admin only
func (h *PostHandler) GetVisibilityHistory(c echo.Context) error {
	actor := currentUser(c)
	post, err := h.ownedPost(c, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.OK(post.VisibilityHistory))
}

// GetUserPosts lists a user's posts, filtered by what the actor may see
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	actor := currentUser(c)
	userID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	page, perPage := pageParams(c)
	posts, err := h.postRepository.GetPostsByUserID(c.Request().Context(), userID, (page-1)*perPage, perPage)
	if err != nil {
		return apierror.Internal()
	}

	visible := make([]models.Post, 0, len(posts))
	for i := range posts {
		if h.resolver.IsVisible(c.Request().Context(), &posts[i], actor) {
			visible = append(visible, posts[i])
		}
	}

	return c.JSON(http.StatusOK, response.OK(visible))
}

// visiblePost loads the post and applies the visibility gate. Invisible
// and missing posts are deliberately indistinguishable.
func (h *PostHandler) visiblePost(c echo.Context, actor *models.User) (*models.Post, error) {
	id, err := paramUint(c, "id")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierror.NotFound("post")
		}
		return nil, apierror.Internal()
	}
	if !h.resolver.IsVisible(c.Request().Context(), post, actor) {
		return nil, apierror.NotFound("post")
	}
	return post, nil
}

// ownedPost loads the post and requires the actor to be its owner or admin
func (h *PostHandler) ownedPost(c echo.Context, actor *models.User) (*models.Post, error) {
	post, err := h.visiblePost(c, actor)
	if err != nil {
		return nil, err
	}
	if post.UserID != actor.ID && !actor.IsAdmin {
		return nil, apierror.Forbidden("you do not own this post")
	}
	return post, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
