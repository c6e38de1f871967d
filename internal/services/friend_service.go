package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/Dias221467/Friend_Manager/internal/repository"
)

// FriendService handles business logic for friend requests and the
// friendship relation derived from them.
type FriendService struct {
	requests repository.FriendRequestRepository
	users    repository.UserRepository
}

// NewFriendService creates a new FriendService.
func NewFriendService(requests repository.FriendRequestRepository, users repository.UserRepository) *FriendService {
	return &FriendService{
		requests: requests,
		users:    users,
	}
}

// CreateFriendRequest records a pending request from senderID to recipientID.
func (s *FriendService) CreateFriendRequest(ctx context.Context, senderID, recipientID string) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, ErrSelfRequest
	}
	for _, id := range []string{senderID, recipientID} {
		if err := s.requireUser(ctx, id); err != nil {
			return nil, err
		}
	}

	request := &models.FriendRequest{
		FromUserID: senderID,
		ToUserID:   recipientID,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateRequest
		case errors.Is(err, repository.ErrSelfRequest):
			return nil, ErrSelfRequest
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return request, nil
}

func (s *FriendService) requireUser(ctx context.Context, id string) error {
	_, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUnknownUser
	}
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", id, err)
	}
	return nil
}

// ResolveFriendRequest moves a pending request to accepted or rejected on
// behalf of actingUserID. A request resolves at most once; the reverse
// request between the same users, if any, is left untouched.
func (s *FriendService) ResolveFriendRequest(ctx context.Context, requestID, actingUserID string, decision models.FriendRequestStatus) (*models.FriendRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := checkTransition(request, actingUserID, decision); err != nil {
		return nil, err
	}

	// The store re-checks pending atomically; losing a race surfaces here.
	if err := s.requests.UpdateStatusIfPending(ctx, request.ID, decision); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("failed to resolve friend request: %w", err)
	}

	request.Status = decision
	return request, nil
}

// checkTransition is the request state machine: only the recipient may act,
// only a pending request may move, and it may only move to a terminal state.
func checkTransition(request *models.FriendRequest, actingUserID string, decision models.FriendRequestStatus) error {
	if request.ToUserID != actingUserID {
		return ErrUnauthorized
	}
	if request.Status != models.StatusPending {
		return ErrAlreadyResolved
	}
	if !decision.IsDecision() {
		return ErrInvalidDecision
	}
	return nil
}

// GetFriendRequest returns a request to one of its two parties.
func (s *FriendService) GetFriendRequest(ctx context.Context, requestID, viewerID string) (*models.FriendRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.Involves(viewerID) {
		return nil, ErrNotFound
	}
	return request, nil
}

func (s *FriendService) getRequest(ctx context.Context, requestID string) (*models.FriendRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not find request: %w", err)
	}
	return request, nil
}

// ListPendingFor returns the pending requests addressed to userID.
func (s *FriendService) ListPendingFor(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	requests, err := s.requests.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

// ListFriendsOf derives userID's friends from accepted requests in either
// direction. The result never contains userID itself and is sorted by ID.
func (s *FriendService) ListFriendsOf(ctx context.Context, userID string) ([]models.User, error) {
	sent, err := s.requests.ListAccepted(ctx, userID, repository.Outgoing)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent requests: %w", err)
	}
	received, err := s.requests.ListAccepted(ctx, userID, repository.Incoming)
	if err != nil {
		return nil, fmt.Errorf("failed to list received requests: %w", err)
	}

	seen := make(map[string]bool, len(sent)+len(received))
	friendIDs := make([]string, 0, len(sent)+len(received))
	add := func(id string) {
		if id == userID || seen[id] {
			return
		}
		seen[id] = true
		friendIDs = append(friendIDs, id)
	}
	for _, req := range sent {
		add(req.ToUserID)
	}
	for _, req := range received {
		add(req.FromUserID)
	}

	if len(friendIDs) == 0 {
		return []models.User{}, nil
	}

	friends, err := s.users.GetByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].ID < friends[j].ID })
	return friends, nil
}

// AreFriends reports whether an accepted request links a and b in either direction.
func (s *FriendService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		req, err := s.requests.Find(ctx, pair[0], pair[1])
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to find friend request: %w", err)
		}
		if req.Status == models.StatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

// Describe expands requests with the public profile of both parties.
// Parties that no longer exist are rendered with their ID only.
func (s *FriendService) Describe(ctx context.Context, requests []models.FriendRequest) ([]models.FriendRequestView, error) {
	ids := make([]string, 0, 2*len(requests))
	for _, req := range requests {
		ids = append(ids, req.FromUserID, req.ToUserID)
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	byID := make(map[string]models.PublicUser, len(users))
	for _, u := range users {
		byID[u.ID] = u.Public()
	}
	lookup := func(id string) models.PublicUser {
		if u, ok := byID[id]; ok {
			return u
		}
		return models.PublicUser{ID: id}
	}

	views := make([]models.FriendRequestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, models.FriendRequestView{
			ID:        req.ID,
			FromUser:  lookup(req.FromUserID),
			ToUser:    lookup(req.ToUserID),
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
		})
	}
	return views, nil
}
