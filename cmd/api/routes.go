package main

import (
	"github.com/lllypuk/regroup/internal/infrastructure/httpserver"
	"github.com/lllypuk/regroup/internal/middleware"
)

// SetupRoutes configures all routes and middleware chains on server.
func SetupRoutes(server *httpserver.Server, c *Container) *httpserver.Router {
	routerConfig := httpserver.RouterConfig{
		Logger: c.Logger,
		AuthMiddleware: middleware.Auth(middleware.AuthConfig{
			Secret: []byte(c.Config.Auth.JWTSecret),
			Issuer: c.Config.Auth.Issuer,
			Leeway: c.Config.Auth.Leeway,
			Logger: c.Logger,
		}),
		LoggingConfig:  middleware.LoggingConfig{Logger: c.Logger, SkipPaths: middleware.DefaultLoggingConfig().SkipPaths},
		RecoveryConfig: middleware.RecoveryConfig{Logger: c.Logger, StackSize: middleware.DefaultStackSize, DisableStackAll: true},
		APIPrefix:      "/api/v1",
	}

	router := httpserver.NewRouter(server.Echo(), routerConfig)

	router.RegisterHealthEndpoints(c.HealthCheckers...)
	router.RegisterMetricsEndpoint(c.Registry)
	router.RegisterAll(c.MigrationHandler, c.GroupHandler)

	router.PrintRoutes()

	return router
}
