package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Channel struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	WorldID     *string   `gorm:"size:36;index" json:"world_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	World   *World `gorm:"foreignKey:WorldID;constraint:OnDelete:SET NULL" json:"world,omitempty"`
	Members []User `gorm:"many2many:channel_members" json:"-"`
}

func (c *Channel) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
