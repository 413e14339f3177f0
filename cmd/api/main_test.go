package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/regroup/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.level))
		})
	}
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		jwtSecret string
		expected  string
	}{
		{"development when debug", "debug", "any-secret", "development"},
		{"production when secure secret", "info", "my-secure-production-secret", "production"},
		{"unknown when info with dev secret", "info", "dev-secret-change-in-production", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Log.Level = tt.logLevel
			cfg.Auth.JWTSecret = tt.jwtSecret
			assert.Equal(t, tt.expected, getEnvironment(cfg))
		})
	}
}

func TestSetupLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Format = "text"
	cfg.Log.Level = "warn"
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := setupLogger(cfg)

	assert.NotNil(t, logger)
	assert.Same(t, logger, slog.Default())
}

func TestServerConfig_WriteTimeoutFollowsDispatcherWait(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dispatcher.WaitTimeout = 40 * time.Second

	sc := serverConfig(cfg)

	assert.Greater(t, sc.WriteTimeout, cfg.Dispatcher.WaitTimeout)
	assert.Equal(t, cfg.Server.ReadTimeout, sc.ReadTimeout)
	assert.Empty(t, sc.TraceOperation)
}

func TestServerConfig_TracingNamesRequestSpans(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tracing.Enabled = true

	assert.Equal(t, cfg.App.Name, serverConfig(cfg).TraceOperation)

	tc := tracingConfig(cfg)
	assert.True(t, tc.Enabled)
	assert.Equal(t, cfg.Tracing.Endpoint, tc.Endpoint)
	assert.Equal(t, cfg.App.Name, tc.ServiceName)
	assert.Equal(t, version, tc.ServiceVersion)
}
