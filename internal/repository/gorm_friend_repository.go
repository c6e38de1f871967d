package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFriendRequestRepository stores friend requests in the friend_requests
// table, whose idx_friend_requests_pair unique index covers (from_user_id, to_user_id).
type GormFriendRequestRepository struct {
	db *gorm.DB
}

func NewGormFriendRequestRepository(db *gorm.DB) *GormFriendRequestRepository {
	return &GormFriendRequestRepository{db: db}
}

func (r *GormFriendRequestRepository) Create(ctx context.Context, req *models.FriendRequest) error {
	if req.FromUserID == req.ToUserID {
		return ErrSelfRequest
	}
	req.ID = uuid.NewString()
	req.CreatedAt = time.Now().UTC()
	req.Status = models.StatusPending

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(req)
	if result.Error != nil {
		return fmt.Errorf("failed to create friend request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *GormFriendRequestRepository) GetByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormFriendRequestRepository) Find(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	return r.first(ctx, "from_user_id = ? AND to_user_id = ?", fromUserID, toUserID)
}

func (r *GormFriendRequestRepository) first(ctx context.Context, query string, args ...interface{}) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).Where(query, args...).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find friend request: %w", err)
	}
	return &request, nil
}

func (r *GormFriendRequestRepository) ListPending(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return r.find(ctx, "to_user_id = ? AND status = ?", userID, models.StatusPending)
}

func (r *GormFriendRequestRepository) ListAccepted(ctx context.Context, userID string, dir Direction) ([]models.FriendRequest, error) {
	if dir == Incoming {
		return r.find(ctx, "to_user_id = ? AND status = ?", userID, models.StatusAccepted)
	}
	return r.find(ctx, "from_user_id = ? AND status = ?", userID, models.StatusAccepted)
}

func (r *GormFriendRequestRepository) find(ctx context.Context, query string, args ...interface{}) ([]models.FriendRequest, error) {
	requests := []models.FriendRequest{}
	err := r.db.WithContext(ctx).Where(query, args...).Order("created_at, id").Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %w", err)
	}
	return requests, nil
}

// UpdateStatusIfPending issues UPDATE ... WHERE id = ? AND status = 'pending'.
func (r *GormFriendRequestRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.FriendRequestStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update request status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
