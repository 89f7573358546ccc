package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MaxCommentDepth is the deepest nesting level a reply may reach (0 = root)
const MaxCommentDepth = 5

// Comment represents a threaded comment on a post.
// Path is a dot-separated materialized path of ancestor ids; a root
// comment's path is its own id, backfilled right after insertion since
// ids are assigned by the database.
type Comment struct {
	gorm.Model
	PostID   uint   `json:"post_id" gorm:"index"`
	UserID   uint   `json:"user_id" gorm:"index"`
	ParentID *uint  `json:"parent_id,omitempty" gorm:"index"`
	Content  string `json:"content"`
	Type     string `json:"type" gorm:"size:10;default:'text'"` // text, image, gif

	Depth int    `json:"depth" gorm:"default:0"`
	Path  string `json:"path" gorm:"index"`

	LikesCount   int `json:"likes_count" gorm:"default:0"`
	RepliesCount int `json:"replies_count" gorm:"default:0"`

	IsReported  bool       `json:"is_reported" gorm:"default:false"`
	IsHidden    bool       `json:"is_hidden" gorm:"default:false"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`
	ModeratedBy *uint      `json:"moderated_by,omitempty"`
}

// IsRoot reports whether the comment is a top-level comment
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// PathIDs decodes the materialized path into its ancestor chain (self last)
func (c *Comment) PathIDs() []uint {
	if c.Path == "" {
		return nil
	}
	parts := strings.Split(c.Path, ".")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// CreateCommentRequest defines the request body for creating a comment or reply
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=500"`
	Type     string `json:"type,omitempty" validate:"omitempty,oneof=text image gif"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
