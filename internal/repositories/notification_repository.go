package repositories

import (
	"time"

	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetNotificationByID(id uint) (*models.Notification, error)
	GetNotificationsByRecipient(recipientID uint, offset, limit int) ([]models.Notification, int64, error)
	MarkAsRead(id uint) error
	MarkAllAsRead(recipientID uint) error
	Dismiss(id uint) error
	UnreadCount(recipientID uint) (int64, error)
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL
type PostgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// CreateNotification stores a new notification
func (r *PostgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetNotificationByID retrieves a single notification
func (r *PostgresNotificationRepository) GetNotificationByID(id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// GetNotificationsByRecipient retrieves a page of a user's notifications,
// newest first, excluding dismissed ones, along with the total count
func (r *PostgresNotificationRepository) GetNotificationsByRecipient(recipientID uint, offset, limit int) ([]models.Notification, int64, error) {
	base := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND dismissed_at IS NULL", recipientID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := base.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

// MarkAsRead marks a single notification read
func (r *PostgresNotificationRepository) MarkAsRead(id uint) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", id).
		Update("is_read", true).Error
}

// MarkAllAsRead marks all of a user's notifications read
func (r *PostgresNotificationRepository) MarkAllAsRead(recipientID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}

// Dismiss hides a notification from the user's list
func (r *PostgresNotificationRepository) Dismiss(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Notification{}).Where("id = ?", id).
		Update("dismissed_at", &now).Error
}

// UnreadCount returns the number of unread, undismissed notifications
func (r *PostgresNotificationRepository) UnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND dismissed_at IS NULL", recipientID, false).
		Count(&count).Error
	return count, err
}
