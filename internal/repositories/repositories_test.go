package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/threadline/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // each connection to file::memory: sees its own database
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Friendship{},
		&models.Follow{},
		&models.Notification{},
		&models.Like{},
		&models.CommentLike{},
		&models.SavedPost{},
	))
	return db
}
