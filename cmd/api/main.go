package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/lllypuk/regroup/internal/config"
	"github.com/lllypuk/regroup/internal/infrastructure/httpserver"
	"github.com/lllypuk/regroup/internal/infrastructure/tracing"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg)

	logger.Info("starting regroup API server",
		slog.String("version", version),
		slog.String("environment", getEnvironment(cfg)),
	)

	if runErr := run(cfg, logger); runErr != nil {
		logger.Error("server exited with error", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
}

// run builds the container, serves HTTP and shuts everything down on a signal.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracingConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer func() {
		if traceErr := shutdownTracing(context.WithoutCancel(ctx)); traceErr != nil {
			logger.Error("tracing shutdown error", slog.String("error", traceErr.Error()))
		}
	}()

	container, err := NewContainer(cfg, WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := container.Close(); closeErr != nil {
			logger.Error("container close error", slog.String("error", closeErr.Error()))
		}
	}()

	server := httpserver.NewServer(serverConfig(cfg), logger)
	SetupRoutes(server, container)

	g, gctx := errgroup.WithContext(ctx)

	// The pool drains accepted jobs on its own once gctx is done.
	g.Go(func() error {
		return container.Start(gctx)
	})
	g.Go(func() error {
		return server.Run(gctx)
	})

	return g.Wait()
}

// serverConfig derives the listener settings. The write deadline follows the
// dispatcher wait so that a request blocked on an add attempt still gets its answer.
func serverConfig(cfg *config.Config) httpserver.ServerConfig {
	sc := httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		BodyLimit:       cfg.Server.BodyLimit,
	}
	if cfg.Tracing.Enabled {
		sc.TraceOperation = cfg.App.Name
	}
	return sc
}

func tracingConfig(cfg *config.Config) tracing.Config {
	return tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
		ServiceName:    cfg.App.Name,
		ServiceVersion: version,
	}
}

// setupLogger creates the structured logger described by the configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Log.Level),
		AddSource: cfg.IsDevelopment(),
	}

	switch cfg.Log.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(slog.String("app", cfg.App.Name))
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvironment returns the environment name based on configuration.
func getEnvironment(cfg *config.Config) string {
	if cfg.IsDevelopment() {
		return "development"
	}
	if cfg.IsProduction() {
		return "production"
	}
	return "unknown"
}
