package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type World struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Name        string `gorm:"size:128;not null" json:"name"`
	Description string `gorm:"size:2048" json:"description"`
	Image       string `gorm:"size:512" json:"image"`
	// OwnerID is a plain column; a User relation here would make users -> channels -> worlds -> users
	// a constraint cycle.
	OwnerID   string    `gorm:"size:36;index;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Members []User `gorm:"many2many:world_members" json:"-"`
}

func (w *World) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
