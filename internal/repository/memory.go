package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/google/uuid"
)

// MemoryUserRepository keeps users in process memory. It backs
// STORAGE_DRIVER=memory and the service tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	order   []string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = models.NormalizeEmail(user.Email)
	user.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicate
	}
	if _, ok := r.users[user.ID]; ok {
		return ErrDuplicate
	}
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	r.order = append(r.order, user.ID)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.users[id]
	return &user, nil
}

func (r *MemoryUserRepository) GetByIDs(_ context.Context, ids []string) ([]models.User, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.filter(func(u models.User) bool { return wanted[u.ID] }), nil
}

func (r *MemoryUserRepository) SearchByEmail(_ context.Context, email string, p models.Pagination) ([]models.User, int64, error) {
	email = models.NormalizeEmail(email)
	return window(r.filter(func(u models.User) bool { return u.Email == email }), p)
}

func (r *MemoryUserRepository) SearchByName(_ context.Context, substring string, p models.Pagination) ([]models.User, int64, error) {
	substring = strings.ToLower(substring)
	return window(r.filter(func(u models.User) bool {
		return strings.Contains(strings.ToLower(u.Name), substring)
	}), p)
}

func (r *MemoryUserRepository) List(_ context.Context, p models.Pagination) ([]models.User, int64, error) {
	return window(r.filter(func(models.User) bool { return true }), p)
}

// filter returns matching users in insertion order.
func (r *MemoryUserRepository) filter(match func(models.User) bool) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []models.User{}
	for _, id := range r.order {
		if u := r.users[id]; match(u) {
			users = append(users, u)
		}
	}
	return users
}

func window(users []models.User, p models.Pagination) ([]models.User, int64, error) {
	total := int64(len(users))
	start := p.Offset()
	if start < 0 || start >= len(users) {
		return []models.User{}, total, nil
	}
	end := start + p.Limit
	if end > len(users) {
		end = len(users)
	}
	return users[start:end], total, nil
}

type pairKey struct {
	from, to string
}

// MemoryFriendRequestRepository keeps friend requests in process memory.
// The pair index and the status compare-and-set are checked under one lock.
type MemoryFriendRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]models.FriendRequest
	pairs    map[pairKey]string
	order    []string
}

func NewMemoryFriendRequestRepository() *MemoryFriendRequestRepository {
	return &MemoryFriendRequestRepository{
		requests: make(map[string]models.FriendRequest),
		pairs:    make(map[pairKey]string),
	}
}

func (r *MemoryFriendRequestRepository) Create(_ context.Context, req *models.FriendRequest) error {
	if req.FromUserID == req.ToUserID {
		return ErrSelfRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{req.FromUserID, req.ToUserID}
	if _, ok := r.pairs[key]; ok {
		return ErrDuplicate
	}

	req.ID = uuid.NewString()
	req.CreatedAt = time.Now().UTC()
	req.Status = models.StatusPending

	r.requests[req.ID] = *req
	r.pairs[key] = req.ID
	r.order = append(r.order, req.ID)
	return nil
}

// Insert stores req as given, bypassing the self-request and status checks
// of Create. It exists to seed records that Create would refuse.
func (r *MemoryFriendRequestRepository) Insert(req models.FriendRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	r.requests[req.ID] = req
	r.pairs[pairKey{req.FromUserID, req.ToUserID}] = req.ID
	r.order = append(r.order, req.ID)
}

func (r *MemoryFriendRequestRepository) GetByID(_ context.Context, id string) (*models.FriendRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &req, nil
}

func (r *MemoryFriendRequestRepository) Find(_ context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.pairs[pairKey{fromUserID, toUserID}]
	if !ok {
		return nil, ErrNotFound
	}
	req := r.requests[id]
	return &req, nil
}

func (r *MemoryFriendRequestRepository) ListPending(_ context.Context, userID string) ([]models.FriendRequest, error) {
	return r.filter(func(req models.FriendRequest) bool {
		return req.ToUserID == userID && req.Status == models.StatusPending
	}), nil
}

func (r *MemoryFriendRequestRepository) ListAccepted(_ context.Context, userID string, dir Direction) ([]models.FriendRequest, error) {
	return r.filter(func(req models.FriendRequest) bool {
		if req.Status != models.StatusAccepted {
			return false
		}
		if dir == Incoming {
			return req.ToUserID == userID
		}
		return req.FromUserID == userID
	}), nil
}

func (r *MemoryFriendRequestRepository) filter(match func(models.FriendRequest) bool) []models.FriendRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requests := []models.FriendRequest{}
	for _, id := range r.order {
		if req := r.requests[id]; match(req) {
			requests = append(requests, req)
		}
	}
	return requests
}

func (r *MemoryFriendRequestRepository) UpdateStatusIfPending(_ context.Context, id string, status models.FriendRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.Status != models.StatusPending {
		return ErrConflict
	}
	req.Status = status
	r.requests[id] = req
	return nil
}
