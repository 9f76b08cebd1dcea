package database

import (
	"path/filepath"
	"testing"

	"worldchat/config"
	"worldchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := NewDB(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
}

func TestAutoMigrate_SQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "migrate.db") + "?_pragma=foreign_keys(1)"
	db, err := NewDB(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))
	// Running twice must be a no-op.
	require.NoError(t, AutoMigrate(db))

	for _, table := range []any{&models.Account{}, &models.User{}, &models.Channel{}, &models.World{}, &models.Session{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasTable("channel_members"))
	assert.True(t, db.Migrator().HasTable("world_members"))
}
