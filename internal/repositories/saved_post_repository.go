package repositories

import (
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository defines the interface for bookmark data operations
type SavedPostRepository interface {
	SavePost(userID, postID uint) error
	UnsavePost(userID, postID uint) error
	IsSaved(userID, postID uint) (bool, error)
	SavedPostIDs(userID uint) ([]uint, error)
}

// PostgresSavedPostRepository implements SavedPostRepository for PostgreSQL
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

// NewPostgresSavedPostRepository creates a new PostgresSavedPostRepository
func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

// SavePost bookmarks a post for a user
func (r *PostgresSavedPostRepository) SavePost(userID, postID uint) error {
	saved, err := r.IsSaved(userID, postID)
	if err != nil {
		return err
	}
	if saved {
		return nil
	}
	return r.db.Create(&models.SavedPost{UserID: userID, PostID: postID}).Error
}

// UnsavePost removes a bookmark
func (r *PostgresSavedPostRepository) UnsavePost(userID, postID uint) error {
	result := r.db.Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.SavedPost{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsSaved reports whether the user has bookmarked the post
func (r *PostgresSavedPostRepository) IsSaved(userID, postID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// SavedPostIDs returns the ids of all posts the user has bookmarked,
// newest bookmark first
func (r *PostgresSavedPostRepository) SavedPostIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.SavedPost{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("post_id", &ids).Error
	return ids, err
}
