package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/router"
	"github.com/threadline/backend/pkg/cache"
	"github.com/threadline/backend/pkg/config"
	"github.com/threadline/backend/pkg/logger"
	"github.com/threadline/backend/validators"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("logger initialization failed: " + err.Error())
	}
	defer logger.Close()

	db, err := config.InitDB()
	if err != nil {
		logger.Log.Fatal("database initialization failed", zap.Error(err))
	}
	defer db.CloseDB()

	// Redis is optional: without it the service runs with feed caching and
	// realtime publishing disabled.
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Log.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}
	defer redisClient.Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	if err := router.Setup(e, db.Postgres, redisClient, cfg); err != nil {
		logger.Log.Fatal("router setup failed", zap.Error(err))
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			logger.Log.Info("server stopped", zap.Error(err))
		}
	}()
	logger.Log.Info("server started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
}
