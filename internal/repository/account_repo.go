package repository

import (
	"context"

	"worldchat/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert inserts a or refreshes the profile columns of the existing row with the same ID.
func (r *AccountRepository) Upsert(ctx context.Context, a *models.Account) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "discriminator", "avatar", "email", "email_verified", "updated_at"}),
	}).Create(a).Error
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
