package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/Dias221467/Friend_Manager/internal/repository"
)

const maxNameLength = 100

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates account and directory operations.
type UserService struct {
	repo repository.UserRepository
	cost int
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{
		repo: repo,
		cost: bcrypt.DefaultCost,
	}
}

// RegisterUser creates an active, unprivileged account.
func (s *UserService) RegisterUser(ctx context.Context, email, name, password string) (*models.User, error) {
	return s.createUser(ctx, &models.User{Email: email, Name: name, IsActive: true}, password)
}

// CreateSuperuser creates an active account with staff and superuser flags.
func (s *UserService) CreateSuperuser(ctx context.Context, email, name, password string) (*models.User, error) {
	return s.createUser(ctx, &models.User{
		Email:       email,
		Name:        name,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}, password)
}

func (s *UserService) createUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	user.Email = models.NormalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	if user.Email == "" || user.Name == "" || password == "" {
		return nil, fmt.Errorf("%w: email, name and password are required", ErrInvalidInput)
	}
	if !emailRegex.MatchString(user.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	if len(user.Name) > maxNameLength {
		return nil, fmt.Errorf("%w: name longer than %d characters", ErrInvalidInput, maxNameLength)
	}

	if _, err := s.repo.GetByEmail(ctx, user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// AuthenticateUser verifies the email and password and returns the user if
// the credentials are valid and the account is active.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers pages through every user.
func (s *UserService) ListUsers(ctx context.Context, p models.Pagination) (*models.Page[models.User], error) {
	users, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &models.Page[models.User]{Items: users, Total: total, Pagination: p}, nil
}

// SearchUsers looks users up by query. A query containing "@" matches an
// email exactly (ignoring case); anything else matches a substring of the
// name (ignoring case). An empty query matches every name.
func (s *UserService) SearchUsers(ctx context.Context, query string, p models.Pagination) (*models.Page[models.User], error) {
	var (
		users []models.User
		total int64
		err   error
	)
	if strings.Contains(query, "@") {
		users, total, err = s.repo.SearchByEmail(ctx, query, p)
	} else {
		users, total, err = s.repo.SearchByName(ctx, query, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return &models.Page[models.User]{Items: users, Total: total, Pagination: p}, nil
}
