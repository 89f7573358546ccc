package comments

import (
	"context"
	"strconv"
	"time"

	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// Service owns the comment tree mutations and their counter side effects.
// Mutations run in a single transaction so a failure partway leaves no
// partial counter drift.
type Service struct {
	db         *gorm.DB
	editWindow time.Duration
	now        func() time.Time
}

// NewService creates the comment tree service
func NewService(db *gorm.DB, editWindow time.Duration) *Service {
	return &Service{
		db:         db,
		editWindow: editWindow,
		now:        time.Now,
	}
}

// CreateReply inserts a comment under the post, threaded below parent when
// one is given. Depth and path derive from the parent's current state: a
// root comment's path is its own id (backfilled after insert, since ids are
// assigned by the database) and a reply's path is parent.path + "." + id.
// The parent's reply counter and the post's comment counter are incremented
// atomically in the same transaction.
func (s *Service) CreateReply(ctx context.Context, post *models.Post, parent *models.Comment, author *models.User, req *models.CreateCommentRequest) (*models.Comment, error) {
	if !post.AllowComments {
		return nil, apierror.Forbidden("comments are disabled on this post")
	}

	depth := 0
	if parent != nil {
		if parent.PostID != post.ID {
			return nil, apierror.NotFound("parent comment")
		}
		if parent.IsHidden {
			return nil, apierror.NotFound("parent comment")
		}
		if parent.Depth >= models.MaxCommentDepth {
			return nil, apierror.DepthLimitExceeded(models.MaxCommentDepth)
		}
		depth = parent.Depth + 1
	}

	ctype := req.Type
	if ctype == "" {
		ctype = "text"
	}

	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  author.ID,
		Content: req.Content,
		Type:    ctype,
		Depth:   depth,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		path := strconv.FormatUint(uint64(comment.ID), 10)
		if parent != nil {
			parentPath := parent.Path
			if parentPath == "" {
				parentPath = strconv.FormatUint(uint64(parent.ID), 10)
			}
			path = parentPath + "." + path
		}
		comment.Path = path
		if err := tx.Model(comment).Update("path", path).Error; err != nil {
			return err
		}

		if parent != nil {
			if err := tx.Model(&models.Comment{}).Where("id = ?", parent.ID).
				Update("replies_count", gorm.Expr("replies_count + ?", 1)).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("comments_count", gorm.Expr("comments_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CanReply reports whether the comment can receive further replies
func (s *Service) CanReply(comment *models.Comment, post *models.Post) bool {
	if comment.Depth >= models.MaxCommentDepth {
		return false
	}
	if comment.IsHidden {
		return false
	}
	return post.AllowComments
}

// CanEdit allows the author within the edit window, any admin, or the
// owner of the parent post at any time
func (s *Service) CanEdit(comment *models.Comment, actor *models.User, post *models.Post) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	if post != nil && post.UserID == actor.ID {
		return true
	}
	if comment.UserID == actor.ID {
		return s.now().Sub(comment.CreatedAt) <= s.editWindow
	}
	return false
}

// CanDelete allows the author at any time, any admin, or the post owner
func (s *Service) CanDelete(comment *models.Comment, actor *models.User, post *models.Post) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	if post != nil && post.UserID == actor.ID {
		return true
	}
	return comment.UserID == actor.ID
}

// Delete soft-deletes the comment and decrements the parent's reply counter
// and the post's comment counter in one transaction. Descendants are not
// cascaded; they stay in place under the soft-deleted ancestor and are
// filtered by visibility on read.
func (s *Service) Delete(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(comment).Error; err != nil {
			return err
		}
		if comment.ParentID != nil {
			if err := tx.Model(&models.Comment{}).Where("id = ?", *comment.ParentID).
				Update("replies_count", gorm.Expr("replies_count - ?", 1)).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			Update("comments_count", gorm.Expr("comments_count - ?", 1)).Error
	})
}
