package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/realtime"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/internal/visibility"
	"github.com/threadline/backend/pkg/response"
	"gorm.io/gorm"
)

// LikeHandler handles HTTP requests related to post likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
	resolver       *visibility.Resolver
	dispatcher     *notify.Dispatcher
	broadcaster    *realtime.Broadcaster
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	resolver *visibility.Resolver,
	dispatcher *notify.Dispatcher,
	broadcaster *realtime.Broadcaster,
) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		resolver:       resolver,
		dispatcher:     dispatcher,
		broadcaster:    broadcaster,
	}
}

// RegisterLikeRoutes registers like-related routes, all of which require auth
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/posts/:id/like", h.ToggleLike, auth)
	g.GET("/posts/:id/like", h.GetLikeStatus, auth)
}

// ToggleLike likes the post if not yet liked, otherwise removes the like
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	actor := currentUser(c)

	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}
	if !post.AllowReactions {
		return apierror.Forbidden("reactions are disabled on this post")
	}

	liked, err := h.likeRepository.ToggleLike(post.ID, actor.ID)
	if err != nil {
		return apierror.Internal()
	}

	actorID := actor.ID
	go func() {
		ctx := context.Background()
		if liked {
			h.dispatcher.Dispatch(ctx, post.UserID, &actorID, models.NotificationLike, map[string]any{
				"post_id": post.ID,
			})
		}
		h.broadcaster.PublishToUser(ctx, post.UserID, realtime.EventLikeToggled, map[string]any{
			"post_id": post.ID,
			"user_id": actorID,
			"liked":   liked,
		})
	}()

	return c.JSON(http.StatusOK, response.OK(map[string]any{"liked": liked}))
}

// GetLikeStatus reports whether the actor has liked the post, and the total
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	actor := currentUser(c)

	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}

	liked, err := h.likeRepository.HasUserLikedPost(post.ID, actor.ID)
	if err != nil {
		return apierror.Internal()
	}
	count, err := h.likeRepository.CountLikes(post.ID)
	if err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.OK(map[string]any{
		"liked":       liked,
		"likes_count": count,
	}))
}

func (h *LikeHandler) visiblePost(c echo.Context, actor *models.User) (*models.Post, error) {
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
