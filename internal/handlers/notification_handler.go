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

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notificationRepo}
}

// RegisterNotificationRoutes registers notification-related routes, all of
// which require auth
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/notifications", h.GetNotifications, auth)
	g.GET("/notifications/unread-count", h.GetUnreadCount, auth)
	g.PUT("/notifications/:id/read", h.MarkAsRead, auth)
	g.PUT("/notifications/read-all", h.MarkAllAsRead, auth)
	g.DELETE("/notifications/:id", h.Dismiss, auth)
}

// GetNotifications lists the actor's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	actor := currentUser(c)
	page, perPage := pageParams(c)

	notifications, total, err := h.notificationRepository.GetNotificationsByRecipient(
		actor.ID, (page-1)*perPage, perPage)
	if err != nil {
		return apierror.Internal()
	}

	return c.JSON(http.StatusOK, response.Paginated(notifications,
		response.NewPagination(page, perPage, total)))
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	actor := currentUser(c)
	count, err := h.notificationRepository.UnreadCount(actor.ID)
	if err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OK(map[string]int64{"unread": count}))
}

// MarkAsRead marks one of the actor's notifications read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	notification, err := h.ownedNotification(c)
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAsRead(notification.ID); err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OKMessage("notification marked as read"))
}

// MarkAllAsRead marks all of the actor's notifications read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	actor := currentUser(c)
	if err := h.notificationRepository.MarkAllAsRead(actor.ID); err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OKMessage("all notifications marked as read"))
}

// Dismiss removes a notification from the actor's list without deleting it
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	notification, err := h.ownedNotification(c)
	if err != nil {
		return err
	}
	if err := h.notificationRepository.Dismiss(notification.ID); err != nil {
		return apierror.Internal()
	}
	return c.JSON(http.StatusOK, response.OKMessage("notification dismissed"))
}

// ownedNotification loads a notification and verifies the actor is its
// recipient. Someone else's notification reads as absent.
func (h *NotificationHandler) ownedNotification(c echo.Context) (*models.Notification, error) {
	actor := currentUser(c)
	id, err := paramUint(c, "id")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}
	notification, err := h.notificationRepository.GetNotificationByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierror.NotFound("notification")
		}
		return nil, apierror.Internal()
	}
	if notification.RecipientID != actor.ID {
		return nil, apierror.NotFound("notification")
	}
	return notification, nil
}
