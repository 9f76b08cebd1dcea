package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "4001", cfg.WebSocket.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.BaseURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "worldchat.sid", cfg.Session.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "http://localhost:3000/auth/discord/callback", cfg.OAuth.DiscordCallbackURL)
	assert.Less(t, cfg.WebSocket.PingPeriod, cfg.WebSocket.PongWait)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WEBSOCKET_PORT", "9001")
	t.Setenv("BASE_URL", "https://worlds.example.com/")
	t.Setenv("DISCORD_ID", "client-1")
	t.Setenv("DISCORD_SECRET", "secret-1")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.WebSocket.Port)
	assert.Equal(t, "https://worlds.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "client-1", cfg.OAuth.DiscordClientID)
	assert.Equal(t, "secret-1", cfg.OAuth.DiscordClientSecret)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "https://worlds.example.com/auth/discord/callback", cfg.OAuth.DiscordCallbackURL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worldchat.yaml")
	content := "server:\n  port: \"8080\"\nwebsocket:\n  port: \"8081\"\nlog:\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "8081", cfg.WebSocket.Port)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad driver", env: map[string]string{"DATABASE_DRIVER": "oracle"}},
		{name: "bad base url", env: map[string]string{"BASE_URL": "not a url"}},
		{name: "default secret in production", env: map[string]string{"APP_ENV": "production"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
