package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/models"
)

// currentUser reconstructs the acting user from the JWT claims stored by
// the auth middleware. Returns nil for unauthenticated requests.
func currentUser(c echo.Context) *models.User {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return &models.User{
		ID:      claims.UserID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}
}

// paramUint parses a numeric path parameter
func paramUint(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// pageParams reads page/per_page query parameters with sane bounds
func pageParams(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = 20
	}
	return page, perPage
}
