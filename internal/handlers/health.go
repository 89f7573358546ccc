package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/pkg/response"
)

// HealthCheck reports service liveness
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, response.OK(map[string]string{"status": "ok"}))
}
