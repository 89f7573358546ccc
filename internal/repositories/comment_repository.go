package repositories

import (
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment read operations.
// Reply creation and deletion carry counter side effects and live in the
// comments service, which owns the surrounding transaction.
type CommentRepository interface {
	GetCommentByID(id uint) (*models.Comment, error)
	GetCommentsByPostID(postID uint) ([]models.Comment, error)
	GetDescendants(comment *models.Comment) ([]models.Comment, error)
	UpdateContent(comment *models.Comment, content string) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// GetCommentByID retrieves a comment by ID
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all live comments for a post in creation order
func (r *PostgresCommentRepository) GetCommentsByPostID(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error
	return comments, err
}

// GetDescendants returns the transitive reply set of a comment via a
// materialized-path prefix scan, no recursive joins involved
func (r *PostgresCommentRepository) GetDescendants(comment *models.Comment) ([]models.Comment, error) {
	var descendants []models.Comment
	err := r.db.Where("post_id = ? AND path LIKE ?", comment.PostID, comment.Path+".%").
		Order("id ASC").Find(&descendants).Error
	return descendants, err
}

// UpdateContent persists an edited comment body
func (r *PostgresCommentRepository) UpdateContent(comment *models.Comment, content string) error {
	return r.db.Model(comment).Update("content", content).Error
}
