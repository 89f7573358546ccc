package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/backend/internal/models"
)

func TestSoftDeleteAndRestore(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresPostRepository(db)
	post := seedPost(t, db, 1)
	ctx := context.Background()

	deadline := time.Now().Add(30 * 24 * time.Hour)
	require.NoError(t, repo.SoftDeletePost(ctx, post.ID, "posted by accident", deadline))

	// Gone from default queries, reachable through the unscoped lookup.
	_, err := repo.GetPostByID(ctx, post.ID)
	assert.Error(t, err)

	deleted, err := repo.GetPostIncludingDeleted(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, deleted.DeletedAt.Valid)
	assert.Equal(t, "posted by accident", deleted.DeleteReason)
	require.NotNil(t, deleted.RestorableUntil)

	require.NoError(t, repo.RestorePost(ctx, post.ID))

	restored, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, restored.DeletedAt.Valid)
	assert.Empty(t, restored.DeleteReason)
	assert.Nil(t, restored.RestorableUntil)
}

func TestPermanentDelete(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresPostRepository(db)
	post := seedPost(t, db, 1)
	ctx := context.Background()

	require.NoError(t, repo.PermanentlyDeletePost(ctx, post.ID))

	_, err := repo.GetPostIncludingDeleted(ctx, post.ID)
	assert.Error(t, err)
}

func TestUpdateContentVersionsEdits(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresPostRepository(db)
	post := seedPost(t, db, 1)
	ctx := context.Background()

	original := post.Content
	require.NoError(t, repo.UpdateContent(ctx, post, "second draft"))
	require.NoError(t, repo.UpdateContent(ctx, post, "third draft"))

	reloaded, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "third draft", reloaded.Content)
	assert.Equal(t, 2, reloaded.EditVersion)
	require.Len(t, reloaded.EditHistory, 2)
	assert.Equal(t, original, reloaded.EditHistory[0].Content)
	assert.Equal(t, "second draft", reloaded.EditHistory[1].Content)
}

func TestUpdateVisibilityAppendsHistory(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresPostRepository(db)
	post := seedPost(t, db, 1)
	ctx := context.Background()

	require.NoError(t, repo.UpdateVisibility(ctx, post, models.VisibilityFriends, nil, 1))
	require.NoError(t, repo.UpdateVisibility(ctx, post, models.VisibilityCustom, []uint{7}, 1))

	reloaded, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityCustom, reloaded.Visibility)
	assert.Equal(t, []uint{7}, reloaded.CustomAudience)

	require.Len(t, reloaded.VisibilityHistory, 2)
	assert.Equal(t, models.VisibilityPublic, reloaded.VisibilityHistory[0].From)
	assert.Equal(t, models.VisibilityFriends, reloaded.VisibilityHistory[0].To)
	assert.Equal(t, models.VisibilityFriends, reloaded.VisibilityHistory[1].From)
	assert.Equal(t, models.VisibilityCustom, reloaded.VisibilityHistory[1].To)
}

func TestCreatePostDefaultsPublishedAt(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresPostRepository(db)
	ctx := context.Background()

	post := &models.Post{UserID: 1, Content: "now", Visibility: models.VisibilityPublic}
	require.NoError(t, repo.CreatePost(ctx, post))
	assert.False(t, post.PublishedAt.IsZero())

	future := time.Now().Add(time.Hour)
	scheduled := &models.Post{UserID: 1, Content: "later", Visibility: models.VisibilityPublic, PublishedAt: future}
	require.NoError(t, repo.CreatePost(ctx, scheduled))
	assert.True(t, scheduled.IsScheduled(time.Now()))
}
