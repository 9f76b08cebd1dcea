package models

import "time"

// Account is the Discord identity a User signed in with.
type Account struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"` // Discord snowflake
	Username      string    `gorm:"size:64;not null" json:"username"`
	Discriminator string    `gorm:"size:8" json:"discriminator"`
	Avatar        string    `gorm:"size:128" json:"avatar"`
	Email         string    `gorm:"size:255" json:"email"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
