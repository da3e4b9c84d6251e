package config

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig(t *testing.T) {
	valid := func(cfg *ServerConfig) {
		cfg.HTTPAddr = ":8080"
		cfg.DBDriver = "sqlite"
		cfg.SQLitePath = "queuectl.db"
		cfg.WorkerCount = 2
		cfg.StopTimeout = 5 * time.Second
		cfg.BackoffUnit = time.Second
		cfg.RequestTimeout = 10 * time.Second
		cfg.LogLevel = "info"
	}

	tests := []struct {
		name          string
		setupEnv      func(context.Context, any) error
		expectError   bool
		errorContains string
		validate      func(*testing.T, *ServerConfig)
	}{
		{
			name: "valid sqlite configuration",
			setupEnv: func(ctx context.Context, v any) error {
				valid(v.(*ServerConfig))
				return nil
			},
			validate: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "sqlite", cfg.DBDriver)
				assert.Equal(t, 2, cfg.WorkerCount)
			},
		},
		{
			name: "driver is normalized",
			setupEnv: func(ctx context.Context, v any) error {
				cfg := v.(*ServerConfig)
				valid(cfg)
				cfg.DBDriver = "Postgres"
				return nil
			},
			validate: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "postgres", cfg.DBDriver)
			},
		},
		{
			name: "env processing error",
			setupEnv: func(ctx context.Context, v any) error {
				return errors.New("env: bad duration")
			},
			expectError:   true,
			errorContains: "failed to process env config",
		},
		{
			name: "unknown driver",
			setupEnv: func(ctx context.Context, v any) error {
				cfg := v.(*ServerConfig)
				valid(cfg)
				cfg.DBDriver = "mysql"
				return nil
			},
			expectError:   true,
			errorContains: "DB_DRIVER must be postgres or sqlite",
		},
		{
			name: "non-positive worker count and backoff",
			setupEnv: func(ctx context.Context, v any) error {
				cfg := v.(*ServerConfig)
				valid(cfg)
				cfg.WorkerCount = 0
				cfg.BackoffUnit = 0
				return nil
			},
			expectError:   true,
			errorContains: "WORKER_COUNT must be positive; BACKOFF_UNIT must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalEnvProcess := envProcess
			defer func() { envProcess = originalEnvProcess }()
			envProcess = tt.setupEnv

			cfg, err := LoadServerConfig(context.Background())

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger("warn", "text", &buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("job_id", "a1"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "job_id=a1")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}
