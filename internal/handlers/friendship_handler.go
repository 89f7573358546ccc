package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/internal/visibility"
	"github.com/threadline/backend/pkg/response"
	"gorm.io/gorm"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
	userRepository       repositories.UserRepository
	resolver             *visibility.Resolver
	dispatcher           *notify.Dispatcher
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(
	friendshipRepo repositories.FriendshipRepository,
	userRepo repositories.UserRepository,
	resolver *visibility.Resolver,
	dispatcher *notify.Dispatcher,
) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipRepository: friendshipRepo,
		userRepository:       userRepo,
		resolver:             resolver,
		dispatcher:           dispatcher,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes, all of
// which require auth
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/friendships", h.SendFriendRequest, auth)
	g.PUT("/friendships/:id", h.RespondToFriendRequest, auth)
	g.POST("/users/:id/block", h.BlockUser, auth)
	g.DELETE("/friendships/users/:id", h.Unfriend, auth)
	g.GET("/friendships", h.GetFriends, auth)
	g.GET("/friendships/pending", h.GetPendingRequests, auth)
	g.GET("/users/:id/relationship", h.GetRelationship, auth)
	g.GET("/users/:id/mutual-friends", h.GetMutualFriendsCount, auth)
}

// SendFriendRequest sends a friend request to another user
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	actor := currentUser(c)

	var req models.CreateFriendshipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.FriendID == actor.ID {
		return apierror.Validation("you cannot send a friend request to yourself", nil)
	}
	if _, err := h.userRepository.GetUserByID(req.FriendID); err != nil {
		return apierror.NotFound("user")
	}

	friendship := &models.Friendship{UserID: actor.ID, FriendID: req.FriendID}
	if err := h.friendshipRepository.SendFriendRequest(friendship); err != nil {
		if apiErr, ok := err.(*apierror.Error); ok {
			return apiErr
		}
		return apierror.Internal()
	}

	actorID := actor.ID
	go h.dispatcher.Dispatch(context.Background(), req.FriendID, &actorID, models.NotificationFriendRequest, map[string]any{
		"user_id":       actor.ID,
		"friendship_id": friendship.ID,
	})

	return c.JSON(http.StatusCreated, response.OK(friendship))
}

// RespondToFriendRequest accepts or declines a pending friend request
func (h *FriendshipHandler) RespondToFriendRequest(c echo.Context) error {
	actor := currentUser(c)
	id, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid friendship ID")
	}

	var req models.UpdateFriendshipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	friendship, err := h.friendshipRepository.GetFriendshipByID(id)
	if err != nil {
		return apierror.NotFound("friend request")
	}
	// Only the target of the request may respond to it.
	if friendship.FriendID != actor.ID {
		return apierror.NotFound("friend request")
	}
	if friendship.Status != models.FriendshipPending {
		return apierror.StateConflict("this friend request has already been resolved")
	}

	if err := h.friendshipRepository.UpdateStatus(friendship, req.Status); err != nil {
		return apierror.Internal()
	}

	if req.Status == models.FriendshipAccepted {
		actorID := actor.ID
		go h.dispatcher.Dispatch(context.Background(), friendship.UserID, &actorID, models.NotificationFriendAccept, map[string]any{
			"user_id": actor.ID,
		})
	}

	return c.JSON(http.StatusOK, response.OK(friendship))
}

// BlockUser moves the relationship with another user to blocked
func (h *FriendshipHandler) BlockUser(c echo.Context) error {
	actor := currentUser(c)
	targetID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if targetID == actor.ID {
		return apierror.Validation("you cannot block yourself", nil)
	}
	if _, err := h.userRepository.GetUserByID(targetID); err != nil {
		return apierror.NotFound("user")
	}

	if err := h.friendshipRepository.Block(actor.ID, targetID); err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OKMessage("user blocked"))
}

// Unfriend removes an accepted friendship
func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	actor := currentUser(c)
	targetID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	friendship, err := h.friendshipRepository.GetFriendshipBetween(actor.ID, targetID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apierror.NotFound("friendship")
		}
		return apierror.Internal()
	}
	if friendship.Status != models.FriendshipAccepted {
		return apierror.StateConflict("you are not friends with this user")
	}

	if err := h.friendshipRepository.Unfriend(actor.ID, targetID); err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OKMessage("friend removed"))
}

// GetFriends lists the actor's accepted friends
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	actor := currentUser(c)
	friends, err := h.friendshipRepository.GetUserFriends(actor.ID)
	if err != nil {
		return apierror.Internal()
	}
	compact := make([]models.UserCompact, len(friends))
	for i := range friends {
		compact[i] = friends[i].ToCompact()
	}
	return c.JSON(http.StatusOK, response.OK(compact))
}

// GetPendingRequests lists friend requests awaiting the actor's response
func (h *FriendshipHandler) GetPendingRequests(c echo.Context) error {
	actor := currentUser(c)
	requests, err := h.friendshipRepository.GetPendingRequests(actor.ID)
	if err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OK(requests))
}

// GetRelationship classifies the actor relative to another user
func (h *FriendshipHandler) GetRelationship(c echo.Context) error {
	actor := currentUser(c)
	targetID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	rel := h.resolver.Relationship(c.Request().Context(), actor.ID, targetID)
	return c.JSON(http.StatusOK, response.OK(map[string]string{"relationship": string(rel)}))
}

// GetMutualFriendsCount counts friends shared with another user
func (h *FriendshipHandler) GetMutualFriendsCount(c echo.Context) error {
	actor := currentUser(c)
	targetID, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	count, err := h.friendshipRepository.MutualFriendsCount(actor.ID, targetID, 0)
	if err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OK(map[string]int{"mutual_friends": count}))
}
