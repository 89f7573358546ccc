package repositories

import (
	"context"
	"time"

	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostIncludingDeleted(ctx context.Context, id uint) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error)
	UpdateContent(ctx context.Context, post *models.Post, newContent string) error
	UpdateVisibility(ctx context.Context, post *models.Post, newVis models.Visibility, audience []uint, actorID uint) error
	SoftDeletePost(ctx context.Context, id uint, reason string, restorableUntil time.Time) error
	RestorePost(ctx context.Context, id uint) error
	PermanentlyDeletePost(ctx context.Context, id uint) error
	MarkReported(ctx context.Context, id uint) error
	IncrementSharesCount(ctx context.Context, postID uint) error
	IncrementViewsCount(ctx context.Context, postID uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.PublishedAt.IsZero() {
		post.PublishedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

// GetPostByID retrieves a post by ID, excluding soft-deleted posts
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostIncludingDeleted retrieves a post by ID including soft-deleted rows,
// used by restore and permanent-delete flows
func (r *PostgresPostRepository) GetPostIncludingDeleted(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Unscoped().First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostsByUserID retrieves posts by a specific user, newest first
func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("published_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// UpdateContent applies a versioned edit: the previous content is appended
// to the edit history and the version number is bumped, in one transaction
func (r *PostgresPostRepository) UpdateContent(ctx context.Context, post *models.Post, newContent string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post.EditHistory = append(post.EditHistory, models.PostEdit{
			Version:  post.EditVersion,
			Content:  post.Content,
			EditedAt: time.Now(),
		})
		post.EditVersion++
		post.Content = newContent
		return tx.Model(post).Updates(map[string]interface{}{
			"content":      post.Content,
			"edit_version": post.EditVersion,
			"edit_history": post.EditHistory,
		}).Error
	})
}

// UpdateVisibility changes a post's visibility level, appending an entry to
// the append-only visibility history rather than overwriting it
func (r *PostgresPostRepository) UpdateVisibility(ctx context.Context, post *models.Post, newVis models.Visibility, audience []uint, actorID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post.VisibilityHistory = append(post.VisibilityHistory, models.VisibilityChange{
			From:      post.Visibility,
			To:        newVis,
			ChangedBy: actorID,
			ChangedAt: time.Now(),
		})
		post.Visibility = newVis
		if newVis == models.VisibilityCustom {
			post.CustomAudience = audience
		}
		return tx.Model(post).Updates(map[string]interface{}{
			"visibility":         post.Visibility,
			"custom_audience":    post.CustomAudience,
			"visibility_history": post.VisibilityHistory,
		}).Error
	})
}

// SoftDeletePost marks the post deleted with a reason and restoration deadline
func (r *PostgresPostRepository) SoftDeletePost(ctx context.Context, id uint, reason string, restorableUntil time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
			"delete_reason":    reason,
			"restorable_until": restorableUntil,
		}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// RestorePost clears the soft-delete marker on a post
func (r *PostgresPostRepository) RestorePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Model(&models.Post{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at":       nil,
			"delete_reason":    "",
			"restorable_until": nil,
		}).Error
}

// PermanentlyDeletePost removes the row for good
func (r *PostgresPostRepository) PermanentlyDeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Post{}, id).Error
}

// MarkReported flags the post as reported
func (r *PostgresPostRepository) MarkReported(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		Update("is_reported", true).Error
}

func (r *PostgresPostRepository) bumpCounter(ctx context.Context, postID uint, column string, delta int) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
}

// IncrementSharesCount atomically increments the shares count of a post.
// Like and comment counters are maintained where those rows are written,
// inside LikeRepository.ToggleLike and the comments service transactions.
func (r *PostgresPostRepository) IncrementSharesCount(ctx context.Context, postID uint) error {
	return r.bumpCounter(ctx, postID, "shares_count", 1)
}

// IncrementViewsCount atomically increments the views count of a post
func (r *PostgresPostRepository) IncrementViewsCount(ctx context.Context, postID uint) error {
	return r.bumpCounter(ctx, postID, "views_count", 1)
}
