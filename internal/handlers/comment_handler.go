package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/comments"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/realtime"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/internal/visibility"
	"github.com/threadline/backend/pkg/response"
	"gorm.io/gorm"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository     repositories.CommentRepository
	commentLikeRepository repositories.CommentLikeRepository
	postRepository        repositories.PostRepository
	commentService        *comments.Service
	resolver              *visibility.Resolver
	dispatcher            *notify.Dispatcher
	broadcaster           *realtime.Broadcaster
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	commentLikeRepo repositories.CommentLikeRepository,
	postRepo repositories.PostRepository,
	commentService *comments.Service,
	resolver *visibility.Resolver,
	dispatcher *notify.Dispatcher,
	broadcaster *realtime.Broadcaster,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:     commentRepo,
		commentLikeRepository: commentLikeRepo,
		postRepository:        postRepo,
		commentService:        commentService,
		resolver:              resolver,
		dispatcher:            dispatcher,
		broadcaster:           broadcaster,
	}
}

// RegisterCommentRoutes registers comment-related routes. The tree read is
// open to anonymous viewers; mutations require auth.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/posts/:post_id/comments", h.CreateComment, auth)
	g.GET("/posts/:post_id/comments", h.GetCommentTree)
	g.PUT("/comments/:id", h.UpdateComment, auth)
	g.DELETE("/comments/:id", h.DeleteComment, auth)
	g.POST("/comments/:id/like", h.ToggleCommentLike, auth)
}

// CreateComment creates a comment on a post, optionally threaded under a
// parent comment
func (h *CommentHandler) CreateComment(c echo.Context) error {
	actor := currentUser(c)

	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = h.commentRepository.GetCommentByID(*req.ParentID)
		if err != nil {
			return apierror.NotFound("parent comment")
		}
	}

	comment, err := h.commentService.CreateReply(c.Request().Context(), post, parent, actor, &req)
	if err != nil {
		if apiErr, ok := err.(*apierror.Error); ok {
			return apiErr
		}
		return apierror.Internal()
	}

	// Notifications and realtime events are best-effort side effects.
	go func(comment models.Comment) {
		ctx := context.Background()
		actorID := actor.ID
		if parent != nil {
			h.dispatcher.Dispatch(ctx, parent.UserID, &actorID, models.NotificationReply, map[string]any{
				"post_id":    post.ID,
				"comment_id": comment.ID,
			})
		}
		h.dispatcher.Dispatch(ctx, post.UserID, &actorID, models.NotificationComment, map[string]any{
			"post_id":    post.ID,
			"comment_id": comment.ID,
		})
		h.broadcaster.PublishToUser(ctx, post.UserID, realtime.EventCommentCreated, map[string]any{
			"post_id":    post.ID,
			"comment_id": comment.ID,
			"author_id":  actorID,
		})
	}(*comment)

	return c.JSON(http.StatusCreated, response.OK(comment))
}

// GetCommentTree returns the post's comments as a navigable forest,
// with hidden comments filtered for non-moderators
func (h *CommentHandler) GetCommentTree(c echo.Context) error {
	actor := currentUser(c)

	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}

	flat, err := h.commentRepository.GetCommentsByPostID(post.ID)
	if err != nil {
		return apierror.Internal()
	}

	filtered := make([]models.Comment, 0, len(flat))
	for _, comment := range flat {
		if comment.IsHidden && (actor == nil || (!actor.IsAdmin && actor.ID != comment.UserID)) {
			continue
		}
		filtered = append(filtered, comment)
	}

	return c.JSON(http.StatusOK, response.OK(comments.BuildTree(filtered)))
}

// UpdateComment edits a comment within the authorization window
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	actor := currentUser(c)

	comment, post, err := h.loadCommentWithPost(c, actor)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if !h.commentService.CanEdit(comment, actor, post) {
		return apierror.Forbidden("you are not allowed to edit this comment")
	}

	if err := h.commentRepository.UpdateContent(comment, req.Content); err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.OK(comment))
}

// DeleteComment soft-deletes a comment and rolls its counters back
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	actor := currentUser(c)

	comment, post, err := h.loadCommentWithPost(c, actor)
	if err != nil {
		return err
	}

	if !h.commentService.CanDelete(comment, actor, post) {
		return apierror.Forbidden("you are not allowed to delete this comment")
	}

	if err := h.commentService.Delete(c.Request().Context(), comment); err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.OKMessage("comment deleted"))
}

// ToggleCommentLike likes or unlikes a comment
func (h *CommentHandler) ToggleCommentLike(c echo.Context) error {
	actor := currentUser(c)

	comment, _, err := h.loadCommentWithPost(c, actor)
	if err != nil {
		return err
	}

	liked, err := h.commentLikeRepository.ToggleLike(comment.ID, actor.ID)
	if err != nil {
		return apierror.Internal()
	}

	if liked {
		actorID := actor.ID
		go h.dispatcher.Dispatch(context.Background(), comment.UserID, &actorID, models.NotificationLike, map[string]any{
			"post_id":    comment.PostID,
			"comment_id": comment.ID,
		})
	}

	return c.JSON(http.StatusOK, response.OK(map[string]any{"liked": liked}))
}

// loadCommentWithPost resolves a comment id plus its parent post and
// applies the post-level visibility gate
func (h *CommentHandler) loadCommentWithPost(c echo.Context, actor *models.User) (*models.Comment, *models.Post, error) {
	id, err := paramUint(c, "id")
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apierror.NotFound("comment")
		}
		return nil, nil, apierror.Internal()
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), comment.PostID)
	if err != nil {
		return nil, nil, apierror.NotFound("post")
	}
	if !h.resolver.IsVisible(c.Request().Context(), post, actor) {
		return nil, nil, apierror.NotFound("comment")
	}

	return comment, post, nil
}

// visiblePost mirrors PostHandler.visiblePost for comment routes keyed by post_id
func (h *CommentHandler) visiblePost(c echo.Context, actor *models.User) (*models.Post, error) {
	id, err := paramUint(c, "post_id")
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
