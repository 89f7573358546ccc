package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/pkg/response"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user profile routes. Profile reads and
// search are public; the "me" routes require auth.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/users/me", h.GetMe, auth)
	g.PUT("/users/me", h.UpdateMe, auth)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/search", h.SearchUsers)
}

// GetMe returns the acting user's full profile
func (h *UserHandler) GetMe(c echo.Context) error {
	actor := currentUser(c)
	user, err := h.userRepository.GetUserByID(actor.ID)
	if err != nil {
		return apierror.NotFound("user")
	}
	return c.JSON(http.StatusOK, response.OK(user))
}

// UpdateMe updates the acting user's profile fields
func (h *UserHandler) UpdateMe(c echo.Context) error {
	actor := currentUser(c)

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(actor.ID)
	if err != nil {
		return apierror.NotFound("user")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OK(user))
}

// GetUser returns another user's public profile
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	user, err := h.userRepository.GetUserByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apierror.NotFound("user")
		}
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OK(user.ToCompact()))
}

// SearchUsers finds users by name or email fragment
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return apierror.Validation("missing search query", map[string]string{"q": "required"})
	}
	users, err := h.userRepository.SearchUsers(query, 20)
	if err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OK(compactUsers(users)))
}
