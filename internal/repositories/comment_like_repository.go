package repositories

import (
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// CommentLikeRepository defines the interface for comment-like data operations
type CommentLikeRepository interface {
	ToggleLike(commentID, userID uint) (liked bool, err error)
	HasUserLikedComment(commentID, userID uint) (bool, error)
}

// PostgresCommentLikeRepository implements CommentLikeRepository for PostgreSQL
type PostgresCommentLikeRepository struct {
	db *gorm.DB
}

// NewPostgresCommentLikeRepository creates a new PostgresCommentLikeRepository
func NewPostgresCommentLikeRepository(db *gorm.DB) *PostgresCommentLikeRepository {
	return &PostgresCommentLikeRepository{db: db}
}

// ToggleLike likes or unlikes a comment, adjusting its likes_count
// atomically in the same transaction
func (r *PostgresCommentLikeRepository) ToggleLike(commentID, userID uint) (bool, error) {
	var liked bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentLike
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
		switch err {
		case nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
			return tx.Model(&models.Comment{}).Where("id = ?", commentID).
				Update("likes_count", gorm.Expr("likes_count - ?", 1)).Error
		case gorm.ErrRecordNotFound:
			if err := tx.Create(&models.CommentLike{CommentID: commentID, UserID: userID}).Error; err != nil {
				return err
			}
			liked = true
			return tx.Model(&models.Comment{}).Where("id = ?", commentID).
				Update("likes_count", gorm.Expr("likes_count + ?", 1)).Error
		default:
			return err
		}
	})
	return liked, err
}

// HasUserLikedComment reports whether the user has liked the comment
func (r *PostgresCommentLikeRepository) HasUserLikedComment(commentID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.CommentLike{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&count).Error
	return count > 0, err
}
