package repository

import (
	"context"

	"worldchat/internal/models"

	"gorm.io/gorm"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

func (r *ChannelRepository) Create(ctx context.Context, c *models.Channel) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	var c models.Channel
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChannelRepository) List(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.WithContext(ctx).Order("name").Find(&channels).Error
	return channels, err
}

// AddMember records userID as a member of the channel; adding an existing member is a no-op.
func (r *ChannelRepository) AddMember(ctx context.Context, channelID, userID string) error {
	return r.db.WithContext(ctx).Model(&models.Channel{ID: channelID}).
		Association("Members").Append(&models.User{ID: userID})
}
