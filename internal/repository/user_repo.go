package repository

import (
	"context"
	"time"

	"worldchat/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Preload("ActiveChannel").First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("ActiveChannel").Order("created_at").Find(&users).Error
	return users, err
}

// UpdateProfile writes only the name and image columns so it never races activity updates.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Model(u).Select("name", "image").Updates(u).Error
}

// SetActiveChannel points the user at channelID and stamps at, or clears both when channelID is nil.
// Both columns change in one statement inside one transaction. A channelID that does not exist
// returns gorm.ErrRecordNotFound from the channel lookup and nothing is written.
func (r *UserRepository) SetActiveChannel(ctx context.Context, userID string, channelID *string, at *time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if channelID != nil {
			var ch models.Channel
			if err := tx.Select("id").First(&ch, "id = ?", *channelID).Error; err != nil {
				return err
			}
		}
		res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
			"active_channel_id": channelID,
			"last_activity":     at,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
