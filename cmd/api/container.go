// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/config"
	"github.com/lllypuk/regroup/internal/domain/event"
	httphandler "github.com/lllypuk/regroup/internal/handler/http"
	"github.com/lllypuk/regroup/internal/infrastructure/eventbus"
	"github.com/lllypuk/regroup/internal/infrastructure/memory"
	"github.com/lllypuk/regroup/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/regroup/internal/infrastructure/mongodb"
	"github.com/lllypuk/regroup/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/regroup/internal/service"
	"github.com/lllypuk/regroup/internal/worker"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
)

// GroupStore is everything the container needs from group storage.
type GroupStore interface {
	service.GroupRepository
	migration.PendingStore
	migration.GroupReader
}

// Directory resolves recipients and reports their eligibility.
type Directory interface {
	migration.RecipientDirectory
	service.EligibilityChecker
}

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure, nil in mock mode.
	MongoDB *mongo.Client
	Redis   *redis.Client

	Registry *prometheus.Registry
	Metrics  *metrics.AdditionMetrics
	EventBus event.Bus
	Pool     *worker.Pool

	Groups    GroupStore
	Directory Directory

	MembershipService *service.MembershipService
	AddSuggestedUC    *migration.AddSuggestedMembersUseCase
	ListSuggestionsUC *migration.ListSuggestionsUseCase
	MigrateGroupUC    *migration.MigrateGroupUseCase
	Dispatcher        *migration.Dispatcher

	MigrationHandler *httphandler.MigrationHandler
	GroupHandler     *httphandler.GroupHandler

	HealthCheckers []appcore.HealthChecker
}

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates the dependency container.
// The wiring mode (real/mock) is determined by config.App.Mode.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logWiringMode()
	c.setupMetrics()

	if cfg.App.IsMockMode() {
		c.setupMockStores()
	} else if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupUseCases()
	c.setupHTTPHandlers()

	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

func (c *Container) logWiringMode() {
	mode := c.Config.App.Mode
	if mode == "" {
		mode = config.AppModeReal
	}

	if c.Config.App.IsMockMode() {
		c.Logger.Warn("container starting in MOCK mode",
			slog.String("mode", string(mode)),
			slog.Bool("is_development", c.Config.IsDevelopment()),
		)
		return
	}
	c.Logger.Info("container starting in REAL mode",
		slog.String("mode", string(mode)),
		slog.Bool("is_production", c.Config.IsProduction()),
	)
}

func (c *Container) validateWiring() error {
	var errs []error

	if c.EventBus == nil {
		errs = append(errs, errors.New("event bus not initialized"))
	}
	if c.Groups == nil {
		errs = append(errs, errors.New("group store not initialized"))
	}
	if c.Directory == nil {
		errs = append(errs, errors.New("directory not initialized"))
	}
	if c.Dispatcher == nil {
		errs = append(errs, errors.New("dispatcher not initialized"))
	}
	if c.MigrationHandler == nil || c.GroupHandler == nil {
		errs = append(errs, errors.New("http handlers not initialized"))
	}
	if c.Config.App.IsRealMode() && (c.MongoDB == nil || c.Redis == nil) {
		errs = append(errs, errors.New("real mode requires mongodb and redis"))
	}

	return errors.Join(errs...)
}

func (c *Container) setupMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewAdditionMetrics(c.Registry)
}

// setupMockStores wires in-memory stores for local development.
func (c *Container) setupMockStores() {
	c.EventBus = memory.NewEventBus(c.Logger, memory.DefaultHistorySize)
	c.Groups = memory.NewGroupStore()
	c.Directory = memory.NewDirectory()
}

func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	retry := eventbus.DefaultRetryConfig()
	retry.MaxRetries = c.Config.EventBus.MaxRetries
	bus := eventbus.NewRedisEventBus(
		c.Redis,
		eventbus.WithLogger(c.Logger),
		eventbus.WithChannelPrefix(c.Config.EventBus.RedisChannelPrefix),
		eventbus.WithRetryConfig(retry),
	)
	c.EventBus = bus

	db := c.MongoDB.Database(c.Config.MongoDB.Database)
	c.Groups = mongodb.NewMongoGroupRepository(
		db.Collection(mongodbinfra.CollectionGroups),
		mongodb.WithGroupRepoLogger(c.Logger),
	)
	c.Directory = mongodb.NewMongoUserRepository(
		db.Collection(mongodbinfra.CollectionUsers),
		mongodb.WithUserRepoLogger(c.Logger),
	)

	c.HealthCheckers = []appcore.HealthChecker{
		appcore.PingFunc{Component: "mongodb", Ping: func(ctx context.Context) error {
			return c.MongoDB.Ping(ctx, nil)
		}},
		appcore.PingFunc{Component: "redis", Ping: bus.Ping},
	}

	return nil
}

func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}
	c.MongoDB = client

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, client.Database(c.Config.MongoDB.Database)); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created successfully")
	return nil
}

func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)
	return nil
}

func (c *Container) setupUseCases() {
	c.MembershipService = service.NewMembershipService(c.Groups, c.Directory, c.EventBus, c.Logger)

	c.AddSuggestedUC = migration.NewAddSuggestedMembersUseCase(
		c.MembershipService,
		c.Groups,
		c.Directory,
		c.EventBus,
		migration.WithLogger(c.Logger),
		migration.WithRecorder(c.Metrics),
	)
	c.ListSuggestionsUC = migration.NewListSuggestionsUseCase(c.Groups, c.Groups, c.Directory)
	c.MigrateGroupUC = migration.NewMigrateGroupUseCase(c.MembershipService, c.Directory)

	c.Pool = worker.NewPool(worker.PoolConfig{
		Workers:    c.Config.Dispatcher.Workers,
		QueueSize:  c.Config.Dispatcher.QueueSize,
		JobTimeout: c.Config.Dispatcher.JobTimeout,
	}, c.Logger)
	c.Dispatcher = migration.NewDispatcher(c.Pool, c.AddSuggestedUC, c.Logger)
}

func (c *Container) setupHTTPHandlers() {
	c.MigrationHandler = httphandler.NewMigrationHandler(
		c.Dispatcher,
		c.ListSuggestionsUC,
		c.Config.Dispatcher.WaitTimeout,
		c.Logger,
	)
	c.GroupHandler = httphandler.NewGroupHandler(c.MigrateGroupUC)
}

// Start runs the background workers until ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	return c.Pool.Run(ctx)
}

// Close releases all resources. It is safe to call on a partially built container.
func (c *Container) Close() error {
	var errs []error

	if c.Pool != nil {
		c.Pool.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()
		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb: %w", err))
		}
	}

	return errors.Join(errs...)
}
