package repository

import (
	"context"
	"testing"
	"time"

	"worldchat/internal/database/dbtest"
	"worldchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := &models.User{Name: "bard#0001"}
	require.NoError(t, NewUserRepository(db).Create(ctx, u))
	repo := NewSessionRepository(db)

	s, err := repo.Create(ctx, u.ID, time.Hour, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.Len(t, s.ID, 64)

	userID, err := repo.Active(ctx, s.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	userID, err = repo.Active(ctx, s.ID, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, userID, "expired session must not resolve")

	userID, err = repo.Active(ctx, "unknown", time.Now())
	require.NoError(t, err)
	assert.Empty(t, userID)

	require.NoError(t, repo.Delete(ctx, s.ID))
	userID, err = repo.Active(ctx, s.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, userID)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewSessionRepository(db)

	short, err := repo.Create(ctx, "u1", time.Minute, "", "")
	require.NoError(t, err)
	long, err := repo.Create(ctx, "u1", 24*time.Hour, "", "")
	require.NoError(t, err)

	n, err := repo.DeleteExpired(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	userID, err := repo.Active(ctx, long.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	userID, err = repo.Active(ctx, short.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, userID)
}
