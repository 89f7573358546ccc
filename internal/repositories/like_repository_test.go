package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

func seedPost(t *testing.T, db *gorm.DB, authorID uint) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:      authorID,
		Content:     "post",
		Visibility:  models.VisibilityPublic,
		PublishedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestToggleLikeRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresLikeRepository(db)
	post := seedPost(t, db, 1)

	liked, err := repo.ToggleLike(post.ID, 2)
	require.NoError(t, err)
	assert.True(t, liked)

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 1, reloaded.LikesCount)

	liked, err = repo.ToggleLike(post.ID, 2)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 0, reloaded.LikesCount)

	count, err := repo.CountLikes(post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestToggleLikeDistinctUsers(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresLikeRepository(db)
	post := seedPost(t, db, 1)

	for userID := uint(2); userID <= 4; userID++ {
		liked, err := repo.ToggleLike(post.ID, userID)
		require.NoError(t, err)
		assert.True(t, liked)
	}

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 3, reloaded.LikesCount)

	has, err := repo.HasUserLikedPost(post.ID, 3)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = repo.HasUserLikedPost(post.ID, 9)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestToggleLikeConcurrentUsers(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresLikeRepository(db)
	post := seedPost(t, db, 1)

	const likers = 8
	var wg sync.WaitGroup
	errs := make(chan error, likers)
	for userID := uint(2); userID < 2+likers; userID++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := repo.ToggleLike(post.ID, id)
			errs <- err
		}(userID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, likers, reloaded.LikesCount, "no toggle may be lost")

	count, err := repo.CountLikes(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(likers), count)
}

func TestPostCountersStayAtomicUnderConcurrentIncrements(t *testing.T) {
	db := testDB(t)
	repo := NewPostgresPostRepository(db)
	post := seedPost(t, db, 1)
	ctx := context.Background()

	const bumps = 10
	var wg sync.WaitGroup
	errs := make(chan error, bumps)
	for i := 0; i < bumps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementViewsCount(ctx, post.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, bumps, reloaded.ViewsCount)
}
