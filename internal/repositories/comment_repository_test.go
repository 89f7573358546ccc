package repositories

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

func seedComment(t *testing.T, db *gorm.DB, postID uint, parent *models.Comment) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, UserID: 1, Content: "c"}
	if parent != nil {
		c.ParentID = &parent.ID
		c.Depth = parent.Depth + 1
	}
	require.NoError(t, db.Create(c).Error)
	path := fmt.Sprint(c.ID)
	if parent != nil {
		path = parent.Path + "." + path
	}
	c.Path = path
	require.NoError(t, db.Model(c).Update("path", path).Error)
	return c
}

func TestGetDescendantsFollowsPathPrefix(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresCommentRepository(db)
	post := seedPost(t, db, 1)

	root := seedComment(t, db, post.ID, nil)
	child := seedComment(t, db, post.ID, root)
	grandchild := seedComment(t, db, post.ID, child)
	other := seedComment(t, db, post.ID, nil)
	seedComment(t, db, post.ID, other)

	descendants, err := repo.GetDescendants(root)
	require.NoError(t, err)
	require.Len(t, descendants, 2)
	assert.Equal(t, child.ID, descendants[0].ID)
	assert.Equal(t, grandchild.ID, descendants[1].ID)

	// A leaf has no descendants.
	descendants, err = repo.GetDescendants(grandchild)
	require.NoError(t, err)
	assert.Empty(t, descendants)
}

func TestGetDescendantsScopedToPost(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresCommentRepository(db)
	post := seedPost(t, db, 1)
	otherPost := seedPost(t, db, 2)

	root := seedComment(t, db, post.ID, nil)
	seedComment(t, db, post.ID, root)

	// Same path shape on another post must not leak into the result.
	foreign := seedComment(t, db, otherPost.ID, nil)
	foreign.Path = root.Path
	require.NoError(t, db.Model(foreign).Update("path", root.Path).Error)
	seedComment(t, db, otherPost.ID, foreign)

	descendants, err := repo.GetDescendants(root)
	require.NoError(t, err)
	require.Len(t, descendants, 1)
	assert.Equal(t, post.ID, descendants[0].PostID)
}
