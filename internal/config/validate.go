package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validation errors.
var (
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrInvalidLogLevel  = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat = errors.New("invalid log format: must be json or text")
	ErrInvalidAppMode   = errors.New("invalid app mode: must be real or mock")
	ErrMockModeInProd   = errors.New("mock mode is not allowed in production")
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate reports every problem at once, wrapped in ErrConfigInvalid.
func (c *Config) Validate() error {
	var errs []error
	for _, check := range []func() []error{
		c.validateApp,
		c.validateServer,
		c.validateStores,
		c.validateAuth,
		c.validateLog,
		c.validateDispatcher,
		c.validateTracing,
	} {
		errs = append(errs, check()...)
	}
	if c.EventBus.MaxRetries < 0 {
		errs = append(errs, errors.New("eventbus.max_retries must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}
	return nil
}

func (c *Config) validateApp() []error {
	var errs []error
	if c.App.Mode != "" && c.App.Mode != AppModeReal && c.App.Mode != AppModeMock {
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidAppMode, c.App.Mode))
	}
	if c.App.IsMockMode() && c.IsProduction() {
		errs = append(errs, ErrMockModeInProd)
	}
	return errs
}

func (c *Config) validateServer() []error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	return errs
}

// validateStores only applies in real mode.
func (c *Config) validateStores() []error {
	if c.App.IsMockMode() {
		return nil
	}
	var errs []error
	if c.MongoDB.URI == "" {
		errs = append(errs, errors.New("mongodb.uri is required"))
	}
	if c.MongoDB.Database == "" {
		errs = append(errs, errors.New("mongodb.database is required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	return errs
}

func (c *Config) validateAuth() []error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.Leeway < 0 {
		errs = append(errs, errors.New("auth.leeway must not be negative"))
	}
	return errs
}

func (c *Config) validateLog() []error {
	var errs []error
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, ErrInvalidLogLevel)
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errs
}

func (c *Config) validateDispatcher() []error {
	var errs []error
	if c.Dispatcher.Workers <= 0 {
		errs = append(errs, errors.New("dispatcher.workers must be positive"))
	}
	if c.Dispatcher.QueueSize < 0 {
		errs = append(errs, errors.New("dispatcher.queue_size must not be negative"))
	}
	if c.Dispatcher.JobTimeout <= 0 {
		errs = append(errs, errors.New("dispatcher.job_timeout must be positive"))
	}
	if c.Dispatcher.WaitTimeout <= 0 {
		errs = append(errs, errors.New("dispatcher.wait_timeout must be positive"))
	}
	return errs
}

func (c *Config) validateTracing() []error {
	if !c.Tracing.Enabled {
		return nil
	}
	var errs []error
	if c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing.endpoint is required when tracing is enabled"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio))
	}
	return errs
}
