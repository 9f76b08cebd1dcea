package repository

import (
	"context"
	"testing"

	"worldchat/internal/database/dbtest"
	"worldchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWorldRepository_CreateAndJoin(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	owner := &models.User{Name: "owner#0001"}
	guest := &models.User{Name: "guest#0002"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, guest))

	repo := NewWorldRepository(db)
	w := &models.World{Name: "Eldoria", Description: "high fantasy", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, w))
	require.NoError(t, repo.AddMember(ctx, w.ID, guest.ID))
	require.NoError(t, repo.AddMember(ctx, w.ID, guest.ID))

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, got.Members, 2)

	err = repo.AddMember(ctx, "missing", guest.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Eldoria", list[0].Name)
}

func TestChannelRepository_ListAndMembers(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := &models.User{Name: "bard#0001"}
	require.NoError(t, NewUserRepository(db).Create(ctx, u))

	repo := NewChannelRepository(db)
	require.NoError(t, repo.Create(ctx, &models.Channel{Name: "b-market"}))
	require.NoError(t, repo.Create(ctx, &models.Channel{Name: "a-tavern"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-tavern", list[0].Name)

	require.NoError(t, repo.AddMember(ctx, list[0].ID, u.ID))
	count := db.Model(&models.Channel{ID: list[0].ID}).Association("Members").Count()
	assert.Equal(t, int64(1), count)
}

func TestAccountRepository_Upsert(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewAccountRepository(db)

	require.NoError(t, repo.Upsert(ctx, &models.Account{ID: "42", Username: "old", Discriminator: "0001"}))
	require.NoError(t, repo.Upsert(ctx, &models.Account{ID: "42", Username: "new", Discriminator: "0002", EmailVerified: true}))

	got, err := repo.GetByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Username)
	assert.Equal(t, "0002", got.Discriminator)
	assert.True(t, got.EmailVerified)
}
