package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/card_market/internal/models"
)

func (r *GormRepo) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("external_id = ?", externalID).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CreateUserIfAbsent inserts u unless a user with the same external id exists, and reports
// whether a row was written. An email already held by a different external id fails with
// ErrEmailTaken.
func (r *GormRepo) CreateUserIfAbsent(ctx context.Context, u *models.User) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(u)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return false, ErrEmailTaken
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
