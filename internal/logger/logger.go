package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"worldchat/config"

	"github.com/google/uuid"
)

// Init builds the process logger from cfg, installs it as the slog default and returns it.
func Init(cfg config.LogConfig) *slog.Logger {
	l := New(os.Stdout, cfg)
	slog.SetDefault(l)
	return l
}

// New builds a logger writing to w without touching the slog default.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRequestID returns a time-ordered id for correlating log lines of one request.
func NewRequestID() string {
	return uuid.Must(uuid.NewV7()).String()
}
