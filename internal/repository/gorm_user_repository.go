package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is the relational user directory.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts the user. ON CONFLICT DO NOTHING turns a unique email (or id)
// violation into zero affected rows, which is reported as ErrDuplicate.
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = models.NormalizeEmail(user.Email)
	user.CreatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if result.Error != nil {
		return fmt.Errorf("failed to insert user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", models.NormalizeEmail(email))
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at, id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users by IDs: %w", err)
	}
	return users, nil
}

func (r *GormUserRepository) SearchByEmail(ctx context.Context, email string, p models.Pagination) ([]models.User, int64, error) {
	return r.paginate(r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)), p)
}

func (r *GormUserRepository) SearchByName(ctx context.Context, substring string, p models.Pagination) ([]models.User, int64, error) {
	pattern := "%" + escapeLike(strings.ToLower(substring)) + "%"
	return r.paginate(r.db.WithContext(ctx).Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern), p)
}

func (r *GormUserRepository) List(ctx context.Context, p models.Pagination) ([]models.User, int64, error) {
	return r.paginate(r.db.WithContext(ctx), p)
}

// paginate counts the filtered set, then fetches one window of it.
func (r *GormUserRepository) paginate(query *gorm.DB, p models.Pagination) ([]models.User, int64, error) {
	query = query.Model(&models.User{}).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := []models.User{}
	if err := query.Order("created_at, id").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
