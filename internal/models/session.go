package models

import "time"

// Session is a server-held login. ID is the opaque token carried in the session cookie.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	IP        string    `gorm:"size:64" json:"ip"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
