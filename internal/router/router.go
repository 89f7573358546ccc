package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/comments"
	"github.com/threadline/backend/internal/feed"
	"github.com/threadline/backend/internal/handlers"
	"github.com/threadline/backend/internal/middleware"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/realtime"
	"github.com/threadline/backend/internal/repositories"
	"github.com/threadline/backend/internal/visibility"
	"github.com/threadline/backend/pkg/cache"
	"github.com/threadline/backend/pkg/config"
	"github.com/threadline/backend/pkg/logger"
	"github.com/threadline/backend/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup migrates the schema, wires every layer together and registers all
// routes on the echo instance. redisClient may be nil, which disables feed
// caching and realtime publishing but nothing else.
func Setup(e *echo.Echo, db *gorm.DB, redisClient *cache.RedisClient, cfg *config.Config) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Friendship{},
		&models.Follow{},
		&models.Group{},
		&models.GroupMember{},
		&models.Notification{},
		&models.Like{},
		&models.CommentLike{},
		&models.SavedPost{},
	); err != nil {
		return err
	}

	e.HTTPErrorHandler = errorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())

	userRepo := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	groupRepo := repositories.NewPostgresGroupRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(db)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(db)

	resolver := visibility.NewResolver(friendshipRepo, followRepo, groupRepo, postRepo, cfg.MaxFriendsConsidered)

	// A nil *RedisClient must stay a nil interface value inside the
	// composer and broadcaster, so it is only assigned when present.
	var feedCache feed.Cache
	var publisher realtime.Publisher
	if redisClient != nil {
		feedCache = redisClient
		publisher = redisClient
	}

	composer := feed.NewComposer(db, feedCache, resolver, &socialGraph{friendshipRepo, followRepo}, savedPostRepo,
		time.Duration(cfg.FeedCacheTTLSeconds)*time.Second,
		time.Duration(cfg.TrendingLookbackDays)*24*time.Hour)
	broadcaster := realtime.NewBroadcaster(publisher)
	dispatcher := notify.NewDispatcher(notificationRepo, followRepo, broadcaster)
	commentService := comments.NewService(db, time.Duration(cfg.CommentEditWindowMins)*time.Minute)

	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.Use(middleware.OptionalJWTAuth(cfg.JWTSecret))
	auth := middleware.RequireAuth()

	handlers.NewAuthHandler(userRepo, cfg.JWTSecret).RegisterAuthRoutes(api)
	handlers.NewUserHandler(userRepo).RegisterUserRoutes(api, auth)
	handlers.NewPostHandler(postRepo, followRepo, resolver, composer,
		time.Duration(cfg.PostRestoreWindowDays)*24*time.Hour,
		time.Duration(cfg.PostEditWindowMins)*time.Minute).RegisterPostRoutes(api, auth)
	handlers.NewCommentHandler(commentRepo, commentLikeRepo, postRepo, commentService,
		resolver, dispatcher, broadcaster).RegisterCommentRoutes(api, auth)
	handlers.NewFriendshipHandler(friendshipRepo, userRepo, resolver, dispatcher).RegisterFriendshipRoutes(api, auth)
	handlers.NewFollowHandler(followRepo, userRepo, composer, dispatcher).RegisterFollowRoutes(api, auth)
	handlers.NewLikeHandler(likeRepo, postRepo, resolver, dispatcher, broadcaster).RegisterLikeRoutes(api, auth)
	handlers.NewSavedPostHandler(savedPostRepo, postRepo, resolver).RegisterSavedPostRoutes(api, auth)
	handlers.NewNotificationHandler(notificationRepo).RegisterNotificationRoutes(api, auth)
	handlers.NewFeedHandler(composer).RegisterFeedRoutes(api)

	return nil
}

// socialGraph joins the friendship and follow repositories into the single
// lookup surface the feed composer expects
type socialGraph struct {
	friendships repositories.FriendshipRepository
	follows     repositories.FollowRepository
}

func (g *socialGraph) AcceptedFriendIDs(userID uint, limit int) ([]uint, error) {
	return g.friendships.AcceptedFriendIDs(userID, limit)
}

func (g *socialGraph) FollowingIDs(followerID uint) ([]uint, error) {
	return g.follows.FollowingIDs(followerID)
}

// errorHandler translates every error into the standard response envelope.
// Taxonomy errors carry their own status and field details; anything
// unclassified becomes an opaque 500.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status = http.StatusInternalServerError
		body   = response.Fail("something went wrong")
	)

	switch e := err.(type) {
	case *apierror.Error:
		status = e.StatusCode()
		body = response.FailFields(e.Message, e.Fields)
	case *echo.HTTPError:
		status = e.Code
		if msg, ok := e.Message.(string); ok {
			body = response.Fail(msg)
		} else {
			body = response.Fail(http.StatusText(status))
		}
	default:
		if err == gorm.ErrRecordNotFound {
			status = http.StatusNotFound
			body = response.Fail("not found")
		} else {
			logger.Log.Error("unhandled error",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}
	}

	if writeErr := c.JSON(status, body); writeErr != nil {
		logger.Log.Error("error response write failed", zap.Error(writeErr))
	}
}
