package repositories

import (
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	Follow(followerID, followingID uint) (*models.Follow, error)
	Unfollow(followerID, followingID uint) error
	GetFollow(followerID, followingID uint) (*models.Follow, error)
	UpdateSettings(follow *models.Follow, req *models.UpdateFollowSettingsRequest) error
	IsFollowing(followerID, followingID uint) (bool, error)
	IsCloseFriend(ownerID, viewerID uint) (bool, error)
	NotificationsEnabled(recipientID, actorID uint) (bool, error)
	FollowingIDs(followerID uint) ([]uint, error)
	FollowerIDs(userID uint) ([]uint, error)
	GetFollowers(userID uint) ([]models.User, error)
	GetFollowing(userID uint) ([]models.User, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// Follow creates a follow relationship. Self-follow is rejected.
func (r *PostgresFollowRepository) Follow(followerID, followingID uint) (*models.Follow, error) {
	if followerID == followingID {
		return nil, apierror.Validation("you cannot follow yourself", nil)
	}

	existing, err := r.GetFollow(followerID, followingID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, apierror.StateConflict("already following this user")
	}

	follow := &models.Follow{
		FollowerID:           followerID,
		FollowingID:          followingID,
		NotificationsEnabled: true,
	}
	if err := r.db.Create(follow).Error; err != nil {
		return nil, err
	}
	return follow, nil
}

// Unfollow removes a follow relationship
func (r *PostgresFollowRepository) Unfollow(followerID, followingID uint) error {
	result := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetFollow retrieves a specific follow row
func (r *PostgresFollowRepository) GetFollow(followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

// UpdateSettings applies per-relationship setting toggles
func (r *PostgresFollowRepository) UpdateSettings(follow *models.Follow, req *models.UpdateFollowSettingsRequest) error {
	updates := map[string]interface{}{}
	if req.Muted != nil {
		updates["muted"] = *req.Muted
	}
	if req.CloseFriend != nil {
		updates["close_friend"] = *req.CloseFriend
	}
	if req.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *req.NotificationsEnabled
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(follow).Updates(updates).Error
}

// IsFollowing reports whether follower follows following
func (r *PostgresFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// IsCloseFriend reports whether the owner has marked the viewer as a close
// friend on their follow row toward the viewer
func (r *PostgresFollowRepository) IsCloseFriend(ownerID, viewerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ? AND close_friend = ?", ownerID, viewerID, true).
		Count(&count).Error
	return count > 0, err
}

// NotificationsEnabled reports whether the recipient still wants
// notifications about the actor. The toggle lives on the recipient's own
// follow edge toward the actor; no edge means enabled.
func (r *PostgresFollowRepository) NotificationsEnabled(recipientID, actorID uint) (bool, error) {
	follow, err := r.GetFollow(recipientID, actorID)
	if err == gorm.ErrRecordNotFound {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return follow.NotificationsEnabled, nil
}

// FollowingIDs returns the ids of everyone the user follows and has not
// muted. Muted edges stay in place but stop feeding candidate sets.
func (r *PostgresFollowRepository) FollowingIDs(followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND muted = ?", followerID, false).
		Pluck("following_id", &ids).Error
	return ids, err
}

// FollowerIDs returns the ids of everyone following the user
func (r *PostgresFollowRepository) FollowerIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

// GetFollowers retrieves the users following userID
func (r *PostgresFollowRepository) GetFollowers(userID uint) ([]models.User, error) {
	var users []models.User
	sub := r.db.Model(&models.Follow{}).Select("follower_id").Where("following_id = ?", userID)
	err := r.db.Where("id IN (?)", sub).Find(&users).Error
	return users, err
}

// GetFollowing retrieves the users userID follows
func (r *PostgresFollowRepository) GetFollowing(userID uint) ([]models.User, error) {
	var users []models.User
	sub := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)
	err := r.db.Where("id IN (?)", sub).Find(&users).Error
	return users, err
}
