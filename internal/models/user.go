package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	AccountID       *string    `gorm:"uniqueIndex;size:64" json:"-"` // nil until linked to an OAuth account
	Name            string     `gorm:"size:128;not null" json:"name"`
	Image           string     `gorm:"size:512" json:"image"`
	ActiveChannelID *string    `gorm:"size:36;index" json:"active_channel_id"`
	LastActivity    *time.Time `json:"last_activity"` // set only while ActiveChannelID is set
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	Account       *Account  `gorm:"foreignKey:AccountID" json:"-"`
	ActiveChannel *Channel  `gorm:"foreignKey:ActiveChannelID;constraint:OnDelete:SET NULL" json:"active_channel,omitempty"`
	Channels      []Channel `gorm:"many2many:channel_members" json:"-"`
	Worlds        []World   `gorm:"many2many:world_members" json:"-"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
