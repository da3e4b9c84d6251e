package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type ServerConfig struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:8080"`
	DBDriver        string        `env:"DB_DRIVER,default=sqlite"`
	SQLitePath      string        `env:"SQLITE_PATH,default=queuectl.db"`
	WorkerCount     int           `env:"WORKER_COUNT,default=2"`
	WorkerAutostart bool          `env:"WORKER_AUTOSTART,default=false"`
	StopTimeout     time.Duration `env:"WORKER_STOP_TIMEOUT,default=5s"`
	BackoffUnit     time.Duration `env:"BACKOFF_UNIT,default=1s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	DBLogLevel      string        `env:"DB_LOG_LEVEL,default=warn"`
	LogFormat       string        `env:"LOG_FORMAT,default=json"`
}

// to help with testing
var envProcess = func(ctx context.Context, v any) error {
	return envconfig.Process(ctx, v)
}

// LoadServerConfig reads the server configuration from the environment
// and validates it.
func LoadServerConfig(ctx context.Context) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := validateServerConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	return &cfg, nil
}

func validateServerConfig(cfg *ServerConfig) error {
	var errors []string

	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		errors = append(errors, "HTTP_ADDR is required")
	}

	switch strings.ToLower(cfg.DBDriver) {
	case "postgres":
	case "sqlite":
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			errors = append(errors, "SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		errors = append(errors, "DB_DRIVER must be postgres or sqlite")
	}

	if cfg.WorkerCount < 1 {
		errors = append(errors, "WORKER_COUNT must be positive")
	}

	if cfg.StopTimeout < 0 {
		errors = append(errors, "WORKER_STOP_TIMEOUT must not be negative")
	}

	if cfg.BackoffUnit <= 0 {
		errors = append(errors, "BACKOFF_UNIT must be positive")
	}

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, "REQUEST_TIMEOUT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// NewLogger builds the process logger. Unknown levels fall back to info,
// unknown formats to JSON.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(level)}

	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func ParseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
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
