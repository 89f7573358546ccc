package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/feed"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/pkg/response"
	"gorm.io/gorm"
)

// FollowHandler handles HTTP requests related to follows
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	composer         *feed.Composer
	dispatcher       *notify.Dispatcher
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	composer *feed.Composer,
	dispatcher *notify.Dispatcher,
) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		composer:         composer,
		dispatcher:       dispatcher,
	}
}

// RegisterFollowRoutes registers follow-related routes. Follower and
// following lists are public; mutations require auth.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/users/:id/follow", h.Follow, auth)
	g.DELETE("/users/:id/follow", h.Unfollow, auth)
	g.PUT("/users/:id/follow", h.UpdateSettings, auth)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// Follow starts following another user
func (h *FollowHandler) Follow(c echo.Context) error {
	actor := currentUser(c)
	targetID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if _, err := h.userRepository.GetUserByID(targetID); err != nil {
		return apierror.NotFound("user")
	}

	follow, err := h.followRepository.Follow(actor.ID, targetID)
	if err != nil {
		if apiErr, ok := err.(*apierror.Error); ok {
			return apiErr
		}
		return apierror.Internal()
	}

	actorID := actor.ID
	go func() {
		ctx := context.Background()
		h.dispatcher.Dispatch(ctx, targetID, &actorID, models.NotificationFollow, map[string]any{
			"user_id": actorID,
		})
		h.composer.InvalidateViewer(ctx, actorID)
	}()

	return c.JSON(http.StatusCreated, response.OK(follow))
}

// Unfollow stops following another user
func (h *FollowHandler) Unfollow(c echo.Context) error {
	actor := currentUser(c)
	targetID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.followRepository.Unfollow(actor.ID, targetID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apierror.NotFound("follow")
		}
		return apierror.Internal()
	}

	go h.composer.InvalidateViewer(context.Background(), actor.ID)

	return c.JSON(http.StatusOK, response.OKMessage("unfollowed"))
}

// UpdateSettings toggles per-relationship settings on an existing follow:
// muting, close-friend designation and notification delivery
func (h *FollowHandler) UpdateSettings(c echo.Context) error {
	actor := currentUser(c)
	targetID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	var req models.UpdateFollowSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	follow, err := h.followRepository.GetFollow(actor.ID, targetID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apierror.NotFound("follow")
		}
		return apierror.Internal()
	}

	if err := h.followRepository.UpdateSettings(follow, &req); err != nil {
		return apierror.Internal()
	}

	// Mute and close-friend changes alter what the actor's feeds should
	// contain, so their cached pages are dropped.
	go h.composer.InvalidateViewer(context.Background(), actor.ID)

	return c.JSON(http.StatusOK, response.OK(follow))
}

// GetFollowers lists a user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	users, err := h.followRepository.GetFollowers(userID)
	if err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OK(compactUsers(users)))
}

// GetFollowing lists the users a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	users, err := h.followRepository.GetFollowing(userID)
	if err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OK(compactUsers(users)))
}

func compactUsers(users []models.User) []models.UserCompact {
	compact := make([]models.UserCompact, len(users))
	for i := range users {
		compact[i] = users[i].ToCompact()
	}
	return compact
}
