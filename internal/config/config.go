// Package config loads the regroup service configuration from YAML and the environment.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "1M"

	DefaultMongoDBTimeout     = 10 * time.Second
	DefaultMongoDBMaxPoolSize = 100

	DefaultRedisPoolSize = 10

	DefaultJWTLeeway = 30 * time.Second

	DefaultEventBusMaxRetries = 3

	DefaultDispatcherWorkers     = 4
	DefaultDispatcherQueueSize   = 64
	DefaultDispatcherJobTimeout  = 30 * time.Second
	DefaultDispatcherWaitTimeout = 10 * time.Second

	DefaultTracingEndpoint    = "localhost:4318"
	DefaultTracingSampleRatio = 1.0

	// writeTimeoutSlack is added on top of the dispatcher wait so that a
	// pending attempt can still answer 202 before the connection is cut.
	writeTimeoutSlack = 5 * time.Second
)

// devJWTSecret is the placeholder secret shipped in the defaults.
const devJWTSecret = "dev-secret-change-in-production"

// AppMode selects how dependencies are wired.
type AppMode string

// Wiring modes.
const (
	// AppModeReal wires MongoDB and Redis. This is the default.
	AppModeReal AppMode = "real"
	// AppModeMock wires in-memory stores. Refused in production.
	AppModeMock AppMode = "mock"
)

// Config is the complete service configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Log        LogConfig        `yaml:"log"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// AppConfig names the service and picks the wiring mode.
type AppConfig struct {
	Mode AppMode `yaml:"mode" env:"APP_MODE"`
	Name string  `yaml:"name" env:"APP_NAME"`
}

// IsRealMode reports whether MongoDB and Redis are wired.
func (c AppConfig) IsRealMode() bool {
	return c.Mode == "" || c.Mode == AppModeReal
}

// IsMockMode reports whether in-memory stores are wired.
func (c AppConfig) IsMockMode() bool {
	return c.Mode == AppModeMock
}

// ServerConfig configures the HTTP listener. The write timeout is not
// configured directly: it follows the dispatcher wait, see Config.WriteTimeout.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	BodyLimit       string        `yaml:"body_limit"       env:"SERVER_BODY_LIMIT"`
}

// Address returns host:port.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MongoDBConfig holds the group and user store connection.
type MongoDBConfig struct {
	URI         string        `yaml:"uri"           env:"MONGODB_URI"`
	Database    string        `yaml:"database"      env:"MONGODB_DATABASE"`
	Timeout     time.Duration `yaml:"timeout"       env:"MONGODB_TIMEOUT"`
	MaxPoolSize uint64        `yaml:"max_pool_size" env:"MONGODB_MAX_POOL_SIZE"`
}

// RedisConfig holds the event bus connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"      env:"REDIS_ADDR"`
	Password string `yaml:"password"  env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"        env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

// AuthConfig holds bearer token validation settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	Issuer    string        `yaml:"issuer"     env:"AUTH_ISSUER"`
	Leeway    time.Duration `yaml:"leeway"     env:"AUTH_LEEWAY"`
}

// EventBusConfig configures publishing of group events.
type EventBusConfig struct {
	RedisChannelPrefix string `yaml:"redis_channel_prefix" env:"EVENTBUS_REDIS_CHANNEL_PREFIX"`
	MaxRetries         int    `yaml:"max_retries"          env:"EVENTBUS_MAX_RETRIES"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"`  // debug | info | warn | error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json | text
}

// DispatcherConfig sizes the pool that runs add attempts and bounds how long
// a request waits for one.
type DispatcherConfig struct {
	Workers     int           `yaml:"workers"      env:"DISPATCHER_WORKERS"`
	QueueSize   int           `yaml:"queue_size"   env:"DISPATCHER_QUEUE_SIZE"`
	JobTimeout  time.Duration `yaml:"job_timeout"  env:"DISPATCHER_JOB_TIMEOUT"`
	WaitTimeout time.Duration `yaml:"wait_timeout" env:"DISPATCHER_WAIT_TIMEOUT"`
}

// TracingConfig configures OpenTelemetry span export over OTLP/HTTP.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"      env:"TRACING_ENABLED"`
	Endpoint    string  `yaml:"endpoint"     env:"TRACING_ENDPOINT"`
	Insecure    bool    `yaml:"insecure"     env:"TRACING_INSECURE"`
	SampleRatio float64 `yaml:"sample_ratio" env:"TRACING_SAMPLE_RATIO"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{Mode: AppModeReal, Name: "regroup"},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			BodyLimit:       DefaultBodyLimit,
		},
		MongoDB: MongoDBConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "regroup",
			Timeout:     DefaultMongoDBTimeout,
			MaxPoolSize: DefaultMongoDBMaxPoolSize,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: DefaultRedisPoolSize,
		},
		Auth: AuthConfig{
			JWTSecret: devJWTSecret,
			Issuer:    "regroup",
			Leeway:    DefaultJWTLeeway,
		},
		EventBus: EventBusConfig{
			RedisChannelPrefix: "events:",
			MaxRetries:         DefaultEventBusMaxRetries,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Dispatcher: DispatcherConfig{
			Workers:     DefaultDispatcherWorkers,
			QueueSize:   DefaultDispatcherQueueSize,
			JobTimeout:  DefaultDispatcherJobTimeout,
			WaitTimeout: DefaultDispatcherWaitTimeout,
		},
		Tracing: TracingConfig{
			Endpoint:    DefaultTracingEndpoint,
			Insecure:    true,
			SampleRatio: DefaultTracingSampleRatio,
		},
	}
}

// WriteTimeout is the HTTP write deadline. A request may block for the whole
// dispatcher wait, so the deadline always covers it.
func (c *Config) WriteTimeout() time.Duration {
	return c.Dispatcher.WaitTimeout + writeTimeoutSlack
}

// IsDevelopment reports a debug log level.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Log.Level, "debug")
}

// IsProduction reports whether a real signing secret is configured.
func (c *Config) IsProduction() bool {
	return c.Auth.JWTSecret != devJWTSecret && c.Auth.JWTSecret != ""
}
