package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"worldchat/internal/auth"
)

var ErrUnauthorized = errors.New("not authorized")

// ActivityStore persists a user's active channel and last activity timestamp together.
type ActivityStore interface {
	SetActiveChannel(ctx context.Context, userID string, channelID *string, at *time.Time) error
}

// ActivityService records which channel the calling user is active in.
type ActivityService struct {
	store ActivityStore
	now   func() time.Time
}

func NewActivityService(store ActivityStore) *ActivityService {
	return &ActivityService{store: store, now: time.Now}
}

// NotifyActivity updates the caller's active channel. The caller is always the identity on ctx.
// A nil or blank channelID clears the channel and the timestamp. Store errors, including an
// unknown channel, are returned as-is.
func (s *ActivityService) NotifyActivity(ctx context.Context, channelID *string) error {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	if channelID == nil || strings.TrimSpace(*channelID) == "" {
		return s.store.SetActiveChannel(ctx, id.UserID, nil, nil)
	}
	ch := strings.TrimSpace(*channelID)
	at := s.now()
	return s.store.SetActiveChannel(ctx, id.UserID, &ch, &at)
}
