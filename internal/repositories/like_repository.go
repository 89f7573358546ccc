package repositories

import (
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for post-like data operations
type LikeRepository interface {
	ToggleLike(postID, userID uint) (liked bool, err error)
	HasUserLikedPost(postID, userID uint) (bool, error)
	CountLikes(postID uint) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// ToggleLike likes the post if the user has not liked it, otherwise removes
// the like. The like row and the post's likes_count change in one
// transaction, with the counter adjusted by an atomic expression so
// concurrent toggles cannot lose updates.
func (r *PostgresLikeRepository) ToggleLike(postID, userID uint) (bool, error) {
	var liked bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch err {
		case nil:
			if err := tx.Unscoped().Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				Update("likes_count", gorm.Expr("likes_count - ?", 1)).Error
		case gorm.ErrRecordNotFound:
			if err := tx.Create(&models.Like{PostID: postID, UserID: userID}).Error; err != nil {
				return err
			}
			liked = true
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				Update("likes_count", gorm.Expr("likes_count + ?", 1)).Error
		default:
			return err
		}
	})
	return liked, err
}

// HasUserLikedPost reports whether the user has liked the post
func (r *PostgresLikeRepository) HasUserLikedPost(postID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

// CountLikes returns the number of like rows for a post
func (r *PostgresLikeRepository) CountLikes(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
