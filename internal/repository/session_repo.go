package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"worldchat/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create issues a new session token for userID valid for ttl.
func (r *SessionRepository) Create(ctx context.Context, userID string, ttl time.Duration, userAgent, ip string) (*models.Session, error) {
	s := &models.Session{
		ID:        newToken(),
		UserID:    userID,
		UserAgent: truncate(userAgent, 512),
		IP:        truncate(ip, 64),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// Active returns the user bound to token, or "" when the token is unknown or expired.
func (r *SessionRepository) Active(ctx context.Context, token string, now time.Time) (string, error) {
	var s models.Session
	err := r.db.WithContext(ctx).Where("id = ? AND expires_at > ?", token, now).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", token).Error
}

// DeleteExpired removes sessions that expired before now and reports how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// newToken returns 64 hex characters drawn from two random UUIDs.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
