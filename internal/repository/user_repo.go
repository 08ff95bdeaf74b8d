package repository

import (
	"context"
	"errors"
	"time"

	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Create(user)
	return result.Error
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil // user not found
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("id = ?", userID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

// DeleteUnverifiedByEmail removes a stale unverified duplicate so a
// registration retry can proceed. Verified rows are never touched.
func (r *UserRepo) DeleteUnverifiedByEmail(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).
		Where("email = ? AND is_verified = ?", email, false).
		Delete(&models.User{})
	return result.Error
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", passwordHash)
	return result.Error
}

func (r *UserRepo) SetOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"is_online": online,
			"last_seen": time.Now(),
		})
	return result.Error
}

// Search returns users other than self, matched on name or email, sorted by
// name. The limit caps the contact-picker payload.
func (r *UserRepo) Search(ctx context.Context, selfID uuid.UUID, query string, limit int) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Where("id <> ?", selfID)
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	result := q.Order("name ASC").Limit(limit).Find(&users)
	return users, result.Error
}
