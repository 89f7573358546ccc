package repositories

import (
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// GroupRepository defines the interface for group membership lookups
type GroupRepository interface {
	IsMember(groupID, userID uint) (bool, error)
	AddMember(member *models.GroupMember) error
}

// PostgresGroupRepository implements GroupRepository for PostgreSQL
type PostgresGroupRepository struct {
	db *gorm.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

// IsMember reports whether the user belongs to the group
func (r *PostgresGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddMember adds a user to a group
func (r *PostgresGroupRepository) AddMember(member *models.GroupMember) error {
	return r.db.Create(member).Error
}
