package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/comments"
	"github.com/threadline/backend/internal/feed"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/realtime"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/internal/visibility"
	"github.com/threadline/backend/validators"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the full handler stack over an in-memory database
type testEnv struct {
	e              *echo.Echo
	db             *gorm.DB
	commentHandler *CommentHandler
	postHandler    *PostHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // each connection to file::memory: sees its own database
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.Comment{},
		&models.Friendship{}, &models.Follow{}, &models.Group{}, &models.GroupMember{},
		&models.Notification{}, &models.Like{}, &models.CommentLike{}, &models.SavedPost{},
	))

	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(db)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	groupRepo := repositories.NewPostgresGroupRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(db)

	resolver := visibility.NewResolver(friendshipRepo, followRepo, groupRepo, postRepo, 1000)
	composer := feed.NewComposer(db, nil, resolver, &testGraph{friendshipRepo, followRepo}, savedPostRepo, time.Minute, 7*24*time.Hour)
	broadcaster := realtime.NewBroadcaster(nil)
	dispatcher := notify.NewDispatcher(notificationRepo, followRepo, broadcaster)
	service := comments.NewService(db, 15*time.Minute)

	e := echo.New()
	e.Validator = validators.NewValidator()

	return &testEnv{
		e:  e,
		db: db,
		commentHandler: NewCommentHandler(commentRepo, commentLikeRepo, postRepo, service,
			resolver, dispatcher, broadcaster),
		postHandler: NewPostHandler(postRepo, followRepo, resolver, composer, 30*24*time.Hour, 24*time.Hour),
	}
}

type testGraph struct {
	friendships repositories.FriendshipRepository
	follows     repositories.FollowRepository
}

func (g *testGraph) AcceptedFriendIDs(userID uint, limit int) ([]uint, error) {
	return g.friendships.AcceptedFriendIDs(userID, limit)
}

func (g *testGraph) FollowingIDs(followerID uint) ([]uint, error) {
	return g.follows.FollowingIDs(followerID)
}

func (env *testEnv) seedPost(t *testing.T, authorID uint, vis models.Visibility) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:        authorID,
		Content:       "post",
		Visibility:    vis,
		AllowComments: true,
		PublishedAt:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.db.Create(post).Error)
	return post
}

// request builds an echo context with an optional authenticated actor
func (env *testEnv) request(method, target, body string, actorID uint) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if actorID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: actorID})
	}
	return c, rec
}

func apiStatus(err error) int {
	if err == nil {
		return 0
	}
	if apiErr, ok := err.(*apierror.Error); ok {
		return apiErr.StatusCode()
	}
	if httpErr, ok := err.(*echo.HTTPError); ok {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

func TestCreateCommentAndReply(t *testing.T) {
	env := newTestEnv(t)
	post := env.seedPost(t, 1, models.VisibilityPublic)

	c, rec := env.request(http.MethodPost, "/", `{"content":"first"}`, 2)
	c.SetParamNames("post_id")
	c.SetParamValues(fmt.Sprint(post.ID))
	require.NoError(t, env.commentHandler.CreateComment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var root models.Comment
	require.NoError(t, env.db.Where("post_id = ?", post.ID).First(&root).Error)
	assert.Equal(t, 0, root.Depth)

	c, rec = env.request(http.MethodPost, "/", fmt.Sprintf(`{"content":"reply","parent_id":%d}`, root.ID), 3)
	c.SetParamNames("post_id")
	c.SetParamValues(fmt.Sprint(post.ID))
	require.NoError(t, env.commentHandler.CreateComment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var reply models.Comment
	require.NoError(t, env.db.Where("parent_id = ?", root.ID).First(&reply).Error)
	assert.Equal(t, 1, reply.Depth)
	assert.Equal(t, fmt.Sprintf("%d.%d", root.ID, reply.ID), reply.Path)
}

func TestCreateCommentDepthLimit(t *testing.T) {
	env := newTestEnv(t)
	post := env.seedPost(t, 1, models.VisibilityPublic)

	parentID := ""
	var lastID uint
	for depth := 0; depth <= models.MaxCommentDepth; depth++ {
		body := `{"content":"c"}`
		if parentID != "" {
			body = fmt.Sprintf(`{"content":"c","parent_id":%s}`, parentID)
		}
		c, rec := env.request(http.MethodPost, "/", body, 2)
		c.SetParamNames("post_id")
		c.SetParamValues(fmt.Sprint(post.ID))
		require.NoError(t, env.commentHandler.CreateComment(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		var created struct {
			Data models.Comment `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		lastID = created.Data.ID
		parentID = fmt.Sprint(lastID)
	}

	// One more level exceeds the cap.
	c, _ := env.request(http.MethodPost, "/", fmt.Sprintf(`{"content":"too deep","parent_id":%d}`, lastID), 2)
	c.SetParamNames("post_id")
	c.SetParamValues(fmt.Sprint(post.ID))
	err := env.commentHandler.CreateComment(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiStatus(err))
}

func TestCommentOnInvisiblePostReads404(t *testing.T) {
	env := newTestEnv(t)
	post := env.seedPost(t, 1, models.VisibilityPrivate)

	c, _ := env.request(http.MethodPost, "/", `{"content":"hi"}`, 2)
	c.SetParamNames("post_id")
	c.SetParamValues(fmt.Sprint(post.ID))
	err := env.commentHandler.CreateComment(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apiStatus(err), "invisible posts must read as absent")
}

func TestGetCommentTreeFiltersHidden(t *testing.T) {
	env := newTestEnv(t)
	post := env.seedPost(t, 1, models.VisibilityPublic)

	require.NoError(t, env.db.Create(&models.Comment{PostID: post.ID, UserID: 2, Content: "visible", Path: "1"}).Error)
	require.NoError(t, env.db.Create(&models.Comment{PostID: post.ID, UserID: 3, Content: "hidden", Path: "2", IsHidden: true}).Error)

	c, rec := env.request(http.MethodGet, "/", "", 4)
	c.SetParamNames("post_id")
	c.SetParamValues(fmt.Sprint(post.ID))
	require.NoError(t, env.commentHandler.GetCommentTree(c))

	var envelope struct {
		Data []comments.Node `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "visible", envelope.Data[0].Content)
}
