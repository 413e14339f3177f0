package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lllypuk/regroup/internal/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	// Logger is the structured logger for router events.
	Logger *slog.Logger

	// AuthMiddleware protects the authenticated route group.
	AuthMiddleware echo.MiddlewareFunc

	LoggingConfig  middleware.LoggingConfig
	RecoveryConfig middleware.RecoveryConfig

	// APIPrefix is the prefix for all API routes. Default is "/api/v1".
	APIPrefix string
}

// DefaultRouterConfig returns a RouterConfig with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Logger:         slog.Default(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		RecoveryConfig: middleware.DefaultRecoveryConfig(),
		APIPrefix:      "/api/v1",
	}
}

// Router manages HTTP route groups and middleware chains.
type Router struct {
	echo   *echo.Echo
	config RouterConfig
	logger *slog.Logger

	public *echo.Group
	auth   *echo.Group
}

// NewRouter creates a new router with the given configuration.
func NewRouter(e *echo.Echo, config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.APIPrefix == "" {
		config.APIPrefix = "/api/v1"
	}

	r := &Router{
		echo:   e,
		config: config,
		logger: config.Logger,
	}

	// Recovery must be first to catch panics from everything after it.
	r.echo.Use(middleware.RecoveryWithConfig(r.config.RecoveryConfig))
	r.echo.Use(middleware.Logging(r.config.LoggingConfig))

	r.public = r.echo.Group(r.config.APIPrefix)
	if r.config.AuthMiddleware != nil {
		r.auth = r.public.Group("", r.config.AuthMiddleware)
	} else {
		r.auth = r.public
		r.logger.Warn("no auth middleware configured, authenticated routes are public")
	}

	return r
}

// Echo returns the underlying Echo instance.
func (r *Router) Echo() *echo.Echo {
	return r.echo
}

// Public returns the route group that needs no authentication.
func (r *Router) Public() *echo.Group {
	return r.public
}

// Auth returns the route group that requires a valid token.
func (r *Router) Auth() *echo.Group {
	return r.auth
}

// RouteRegistrar defines the interface for registering routes.
type RouteRegistrar interface {
	RegisterRoutes(r *Router)
}

// RegisterAll registers all route registrars with the router.
func (r *Router) RegisterAll(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r)
	}
}

// PrintRoutes logs all registered routes at debug level.
func (r *Router) PrintRoutes() {
	for _, route := range r.echo.Routes() {
		r.logger.Debug("registered route",
			slog.String("method", route.Method),
			slog.String("path", route.Path),
		)
	}
}

// RegisterMetricsEndpoint exposes the gatherer's metrics on GET /metrics.
func (r *Router) RegisterMetricsEndpoint(gatherer prometheus.Gatherer) {
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
