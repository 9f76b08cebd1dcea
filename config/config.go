// Package config loads server configuration from an optional file and the environment using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	BaseURL      string        `mapstructure:"base_url"` // public origin of the web client, used for CORS and redirects
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type WebSocketConfig struct {
	Port       string        `mapstructure:"port"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type SessionConfig struct {
	CookieName    string        `mapstructure:"cookie_name"`
	TTL           time.Duration `mapstructure:"ttl"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Issuer    string        `mapstructure:"issuer"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

type OAuthConfig struct {
	DiscordClientID     string `mapstructure:"discord_client_id"`
	DiscordClientSecret string `mapstructure:"discord_client_secret"`
	DiscordCallbackURL  string `mapstructure:"discord_callback_url"`
	DiscordAPIBase      string `mapstructure:"discord_api_base"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load reads the config file at path (if non-empty), then applies defaults and environment
// overrides. Nested keys map to env vars with "_" in place of ".", e.g. WEBSOCKET_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Short names used by existing deployments.
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV", "APP_ENV")
	_ = v.BindEnv("server.base_url", "SERVER_BASE_URL", "BASE_URL")
	_ = v.BindEnv("database.dsn", "DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("oauth.discord_client_id", "OAUTH_DISCORD_CLIENT_ID", "DISCORD_ID")
	_ = v.BindEnv("oauth.discord_client_secret", "OAUTH_DISCORD_CLIENT_SECRET", "DISCORD_SECRET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("websocket.port", "4001")
	v.SetDefault("websocket.write_wait", 10*time.Second)
	v.SetDefault("websocket.pong_wait", 60*time.Second)
	v.SetDefault("websocket.ping_period", 54*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:worldchat.db?_pragma=foreign_keys(1)")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("session.cookie_name", "worldchat.sid")
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("session.purge_interval", 15*time.Minute)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "worldchat")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)

	v.SetDefault("oauth.discord_client_id", "")
	v.SetDefault("oauth.discord_client_secret", "")
	v.SetDefault("oauth.discord_callback_url", "")
	v.SetDefault("oauth.discord_api_base", "https://discord.com/api")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", time.Minute)
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return errors.New("config: server port must be set")
	}
	if c.WebSocket.Port == "" {
		return errors.New("config: websocket port must be set")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid base URL %q", c.Server.BaseURL)
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == "change-me-in-production") {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	if c.WebSocket.PongWait <= 0 {
		c.WebSocket.PongWait = 60 * time.Second
	}
	if c.WebSocket.PingPeriod <= 0 || c.WebSocket.PingPeriod >= c.WebSocket.PongWait {
		c.WebSocket.PingPeriod = (c.WebSocket.PongWait * 9) / 10
	}
	if c.OAuth.DiscordCallbackURL == "" {
		c.OAuth.DiscordCallbackURL = c.Server.BaseURL + "/auth/discord/callback"
	}
	c.OAuth.DiscordAPIBase = strings.TrimRight(c.OAuth.DiscordAPIBase, "/")
	return nil
}
