package repository

import (
	"context"
	"time"

	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RefreshTokenRepo struct {
	db *gorm.DB
}

func NewRefreshTokenRepo(db *gorm.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (r *RefreshTokenRepo) Save(ctx context.Context, token *models.RefreshToken) error {
	result := r.db.WithContext(ctx).Create(token)
	return result.Error
}

// Consume atomically deletes the token and returns the deleted row, or nil
// if the token did not exist. Two concurrent refresh calls presenting the
// same token race on this single conditional delete; only one wins.
func (r *RefreshTokenRepo) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("token = ?", token).
		Delete(&rt)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &rt, nil
}

func (r *RefreshTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{})
	return result.Error
}

func (r *RefreshTokenRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{})
	return result.Error
}

// DeleteExpired is the background sweep; refresh lookups re-check expiry
// independently, so a lagging sweep is harmless.
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
