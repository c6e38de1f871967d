package repository

import (
	"context"
	"errors"

	"github.com/Dias221467/Friend_Manager/internal/models"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a conditional update matched no record.
	ErrConflict = errors.New("conditional update matched no record")
	// ErrSelfRequest is returned when a friend request names the same user on both ends.
	ErrSelfRequest = errors.New("friend request sender and recipient are the same user")
)

// Direction selects which side of a friend request a user is on.
type Direction int

const (
	Outgoing Direction = iota // user is the sender
	Incoming                  // user is the recipient
)

// UserRepository is the user directory.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// GetByEmail matches the address exactly, ignoring case.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// SearchByEmail is GetByEmail shaped as a page.
	SearchByEmail(ctx context.Context, email string, p models.Pagination) ([]models.User, int64, error)
	// SearchByName matches a case-insensitive substring of the name.
	SearchByName(ctx context.Context, substring string, p models.Pagination) ([]models.User, int64, error)
	List(ctx context.Context, p models.Pagination) ([]models.User, int64, error)
}

// FriendRequestRepository stores directed friend requests.
//
// Implementations enforce uniqueness of the ordered (from, to) pair with a
// unique index and resolve requests with a single conditional write, so
// concurrent callers cannot create the same pair twice or resolve a request
// twice.
type FriendRequestRepository interface {
	// Create inserts req as pending, assigning its ID and CreatedAt.
	Create(ctx context.Context, req *models.FriendRequest) error
	GetByID(ctx context.Context, id string) (*models.FriendRequest, error)
	Find(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error)
	// ListPending returns pending requests addressed to userID, oldest first.
	ListPending(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListAccepted(ctx context.Context, userID string, dir Direction) ([]models.FriendRequest, error)
	// UpdateStatusIfPending sets the status only while the request is still
	// pending and returns ErrConflict otherwise.
	UpdateStatusIfPending(ctx context.Context, id string, status models.FriendRequestStatus) error
}

var (
	_ UserRepository          = (*MongoUserRepository)(nil)
	_ UserRepository          = (*GormUserRepository)(nil)
	_ UserRepository          = (*MemoryUserRepository)(nil)
	_ FriendRequestRepository = (*MongoFriendRequestRepository)(nil)
	_ FriendRequestRepository = (*GormFriendRequestRepository)(nil)
	_ FriendRequestRepository = (*MemoryFriendRequestRepository)(nil)
)
