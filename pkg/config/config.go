package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	Env             string
	PostgresConnStr string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	JWTSecret       string
	LogLevel        string
	LogFile         string

	FeedCacheTTLSeconds   int
	TrendingLookbackDays  int
	MaxFriendsConsidered  int // cap on friend-id list sizes in friend-of-friend checks
	CommentEditWindowMins int
	PostEditWindowMins    int
	PostRestoreWindowDays int
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		JWTSecret:       getEnv("JWT_SECRET", "supersecretjwtkey"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", "server.log"),

		FeedCacheTTLSeconds:   getEnvInt("FEED_CACHE_TTL_SECONDS", 60),
		TrendingLookbackDays:  getEnvInt("FEED_TRENDING_LOOKBACK_DAYS", 7),
		MaxFriendsConsidered:  getEnvInt("MAX_FRIENDS_CONSIDERED", 1000),
		CommentEditWindowMins: getEnvInt("COMMENT_EDIT_WINDOW_MINUTES", 15),
		PostEditWindowMins:    getEnvInt("POST_EDIT_WINDOW_MINUTES", 1440),
		PostRestoreWindowDays: getEnvInt("POST_RESTORE_WINDOW_DAYS", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
