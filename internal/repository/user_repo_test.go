package repository

import (
	"context"
	"testing"
	"time"

	"worldchat/internal/database/dbtest"
	"worldchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUserAndChannel(t *testing.T, db *gorm.DB) (*models.User, *models.Channel) {
	t.Helper()
	ctx := context.Background()
	u := &models.User{Name: "bard#0001"}
	require.NoError(t, NewUserRepository(db).Create(ctx, u))
	ch := &models.Channel{ID: "chan-1", Name: "tavern"}
	require.NoError(t, NewChannelRepository(db).Create(ctx, ch))
	return u, ch
}

func TestUserRepository_SetActiveChannel(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u, ch := seedUserAndChannel(t, db)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.SetActiveChannel(ctx, u.ID, &ch.ID, &at))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ActiveChannelID)
	assert.Equal(t, "chan-1", *got.ActiveChannelID)
	require.NotNil(t, got.ActiveChannel)
	assert.Equal(t, "tavern", got.ActiveChannel.Name)
	require.NotNil(t, got.LastActivity)
	assert.True(t, got.LastActivity.Equal(at))
}

func TestUserRepository_SetActiveChannelClearsBoth(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u, ch := seedUserAndChannel(t, db)

	at := time.Now()
	require.NoError(t, repo.SetActiveChannel(ctx, u.ID, &ch.ID, &at))
	require.NoError(t, repo.SetActiveChannel(ctx, u.ID, nil, nil))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ActiveChannelID)
	assert.Nil(t, got.ActiveChannel)
	assert.Nil(t, got.LastActivity)
}

func TestUserRepository_SetActiveChannelUnknownChannel(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u, ch := seedUserAndChannel(t, db)

	at := time.Now()
	require.NoError(t, repo.SetActiveChannel(ctx, u.ID, &ch.ID, &at))

	missing := "does-not-exist"
	later := at.Add(time.Minute)
	err := repo.SetActiveChannel(ctx, u.ID, &missing, &later)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ActiveChannelID)
	assert.Equal(t, "chan-1", *got.ActiveChannelID, "failed update must leave the row untouched")
}

func TestUserRepository_SetActiveChannelUnknownUser(t *testing.T) {
	db := dbtest.New(t)
	err := NewUserRepository(db).SetActiveChannel(context.Background(), "ghost", nil, nil)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_SetActiveChannelOnlyTouchesCaller(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u, ch := seedUserAndChannel(t, db)
	other := &models.User{Name: "rogue#0002"}
	require.NoError(t, repo.Create(ctx, other))

	at := time.Now()
	require.NoError(t, repo.SetActiveChannel(ctx, u.ID, &ch.ID, &at))

	got, err := repo.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ActiveChannelID)
	assert.Nil(t, got.LastActivity)
}

func TestUserRepository_GetByAccountID(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	require.NoError(t, NewAccountRepository(db).Upsert(ctx, &models.Account{ID: "1234", Username: "bard"}))
	acc := "1234"
	u := &models.User{Name: "bard#0001", AccountID: &acc}
	require.NoError(t, NewUserRepository(db).Create(ctx, u))

	got, err := NewUserRepository(db).GetByAccountID(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = NewUserRepository(db).GetByAccountID(ctx, "9999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdateProfileKeepsActivity(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u, ch := seedUserAndChannel(t, db)

	// stale copy read before the activity update
	stale, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	at := time.Now()
	require.NoError(t, repo.SetActiveChannel(ctx, u.ID, &ch.ID, &at))

	stale.Name = "skald#0002"
	stale.Image = "https://cdn.example/a.png"
	require.NoError(t, repo.UpdateProfile(ctx, stale))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "skald#0002", got.Name)
	require.NotNil(t, got.ActiveChannelID)
	assert.Equal(t, ch.ID, *got.ActiveChannelID)
	assert.NotNil(t, got.LastActivity)
}
