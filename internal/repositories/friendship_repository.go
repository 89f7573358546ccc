package repositories

import (
	"github.com/threadline/backend/internal/apierror"
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	SendFriendRequest(req *models.Friendship) error
	GetFriendshipByID(id uint) (*models.Friendship, error)
	GetFriendshipBetween(userA, userB uint) (*models.Friendship, error)
	UpdateStatus(friendship *models.Friendship, status models.FriendshipStatus) error
	Block(userID, targetID uint) error
	Unfriend(userA, userB uint) error
	AreFriends(userA, userB uint) (bool, error)
	AcceptedFriendIDs(userID uint, limit int) ([]uint, error)
	GetUserFriends(userID uint) ([]models.User, error)
	GetPendingRequests(userID uint) ([]models.Friendship, error)
	MutualFriendsCount(userA, userB uint, limit int) (int, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// SendFriendRequest creates a new friend request. At most one friendship row
// may exist per unordered pair, so an existing row in any live state blocks
// the new request.
func (r *PostgresFriendshipRepository) SendFriendRequest(req *models.Friendship) error {
	existing, err := r.GetFriendshipBetween(req.UserID, req.FriendID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendshipPending:
			return apierror.StateConflict("a pending friend request already exists between these users")
		case models.FriendshipAccepted:
			return apierror.StateConflict("users are already friends")
		case models.FriendshipBlocked:
			return apierror.StateConflict("friend request cannot be sent")
		default:
			// declined requests may be retried; reuse the row
			existing.UserID = req.UserID
			existing.FriendID = req.FriendID
			existing.Status = models.FriendshipPending
			if err := r.db.Save(existing).Error; err != nil {
				return err
			}
			*req = *existing
			return nil
		}
	}

	req.Status = models.FriendshipPending
	return r.db.Create(req).Error
}

// GetFriendshipByID retrieves a friendship row by ID
func (r *PostgresFriendshipRepository) GetFriendshipByID(id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.First(&friendship, id).Error; err != nil {
		return nil, err
	}
	return &friendship, nil
}

// GetFriendshipBetween retrieves the friendship row for an unordered pair
func (r *PostgresFriendshipRepository) GetFriendshipBetween(userA, userB uint) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.db.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		userA, userB, userB, userA).First(&friendship).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// UpdateStatus transitions a friendship to a new status. The mutual-friends
// count is recomputed only on transition to accepted.
func (r *PostgresFriendshipRepository) UpdateStatus(friendship *models.Friendship, status models.FriendshipStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == models.FriendshipAccepted {
		mutual, err := r.MutualFriendsCount(friendship.UserID, friendship.FriendID, 0)
		if err != nil {
			return err
		}
		updates["mutual_friends_count"] = mutual
	}
	return r.db.Model(friendship).Updates(updates).Error
}

// Block moves the pair's friendship row to blocked, creating one if absent.
// Blocked is reachable from any prior state.
func (r *PostgresFriendshipRepository) Block(userID, targetID uint) error {
	existing, err := r.GetFriendshipBetween(userID, targetID)
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(&models.Friendship{
			UserID:   userID,
			FriendID: targetID,
			Status:   models.FriendshipBlocked,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(existing).Update("status", models.FriendshipBlocked).Error
}

// Unfriend soft-deletes the friendship row between two users
func (r *PostgresFriendshipRepository) Unfriend(userA, userB uint) error {
	return r.db.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		userA, userB, userB, userA).Delete(&models.Friendship{}).Error
}

// AreFriends reports whether an accepted friendship exists, checked from
// either direction
func (r *PostgresFriendshipRepository) AreFriends(userA, userB uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Friendship{}).
		Where("((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)) AND status = ?",
			userA, userB, userB, userA, models.FriendshipAccepted).
		Count(&count).Error
	return count > 0, err
}

// AcceptedFriendIDs returns the ids of a user's accepted friends. A positive
// limit caps the list size for friend-of-friend intersection checks.
func (r *PostgresFriendshipRepository) AcceptedFriendIDs(userID uint, limit int) ([]uint, error) {
	var rows []models.Friendship
	q := r.db.Where("(user_id = ? OR friend_id = ?) AND status = ?",
		userID, userID, models.FriendshipAccepted)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, f := range rows {
		if f.UserID == userID {
			ids = append(ids, f.FriendID)
		} else {
			ids = append(ids, f.UserID)
		}
	}
	return ids, nil
}

// GetUserFriends retrieves all accepted friends for a user
func (r *PostgresFriendshipRepository) GetUserFriends(userID uint) ([]models.User, error) {
	ids, err := r.AcceptedFriendIDs(userID, 0)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var friends []models.User
	if err := r.db.Where("id IN ?", ids).Find(&friends).Error; err != nil {
		return nil, err
	}
	return friends, nil
}

// GetPendingRequests retrieves all pending friend requests addressed to a user
func (r *PostgresFriendshipRepository) GetPendingRequests(userID uint) ([]models.Friendship, error) {
	var requests []models.Friendship
	err := r.db.Where("friend_id = ? AND status = ?", userID, models.FriendshipPending).
		Find(&requests).Error
	return requests, err
}

// MutualFriendsCount counts the intersection of both users' accepted-friend
// sets. A positive limit caps each side's list size.
func (r *PostgresFriendshipRepository) MutualFriendsCount(userA, userB uint, limit int) (int, error) {
	idsA, err := r.AcceptedFriendIDs(userA, limit)
	if err != nil {
		return 0, err
	}
	idsB, err := r.AcceptedFriendIDs(userB, limit)
	if err != nil {
		return 0, err
	}
	seen := make(map[uint]bool, len(idsA))
	for _, id := range idsA {
		seen[id] = true
	}
	mutual := 0
	for _, id := range idsB {
		if seen[id] {
			mutual++
		}
	}
	return mutual, nil
}
