package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/internal/visibility"
	"github.com/threadline/backend/pkg/response"
	"gorm.io/gorm"
)

// SavedPostHandler handles HTTP requests related to bookmarks
type SavedPostHandler struct {
	savedPostRepository repositories.SavedPostRepository
	postRepository      repositories.PostRepository
	resolver            *visibility.Resolver
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(
	savedPostRepo repositories.SavedPostRepository,
	postRepo repositories.PostRepository,
	resolver *visibility.Resolver,
) *SavedPostHandler {
	return &SavedPostHandler{
		savedPostRepository: savedPostRepo,
		postRepository:      postRepo,
		resolver:            resolver,
	}
}

// RegisterSavedPostRoutes registers bookmark-related routes, all of which
// require auth
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/posts/:id/save", h.SavePost, auth)
	g.DELETE("/posts/:id/save", h.UnsavePost, auth)
}

// SavePost bookmarks a post for the actor. Saving twice is a no-op.
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	actor := currentUser(c)

	post, err := h.visiblePost(c, actor)
	if err != nil {
		return err
	}

	if err := h.savedPostRepository.SavePost(actor.ID, post.ID); err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusCreated, response.OKMessage("post saved"))
}

// UnsavePost removes a bookmark
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	actor := currentUser(c)
	id, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if err := h.savedPostRepository.UnsavePost(actor.ID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apierror.NotFound("bookmark")
		}
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OKMessage("bookmark removed"))
}

func (h *SavedPostHandler) visiblePost(c echo.Context, actor *models.User) (*models.Post, error) {
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
