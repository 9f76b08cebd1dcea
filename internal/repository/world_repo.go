package repository

import (
	"context"

	"worldchat/internal/models"

	"gorm.io/gorm"
)

type WorldRepository struct {
	db *gorm.DB
}

func NewWorldRepository(db *gorm.DB) *WorldRepository {
	return &WorldRepository{db: db}
}

// Create stores w and makes its owner the first member.
func (r *WorldRepository) Create(ctx context.Context, w *models.World) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		return tx.Model(w).Association("Members").Append(&models.User{ID: w.OwnerID})
	})
}

func (r *WorldRepository) GetByID(ctx context.Context, id string) (*models.World, error) {
	var w models.World
	if err := r.db.WithContext(ctx).Preload("Members").First(&w, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorldRepository) List(ctx context.Context) ([]models.World, error) {
	var worlds []models.World
	err := r.db.WithContext(ctx).Preload("Members").Order("name").Find(&worlds).Error
	return worlds, err
}

func (r *WorldRepository) AddMember(ctx context.Context, worldID, userID string) error {
	if _, err := r.GetByID(ctx, worldID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.World{ID: worldID}).
		Association("Members").Append(&models.User{ID: userID})
}
