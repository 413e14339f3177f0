// Package httpserver provides the HTTP server, routing and JSON response helpers.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Defaults for a server built without configuration.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "1M"
	DefaultMaxHeaderBytes  = 1 << 20
)

// ServerConfig holds the listener settings.
// WriteTimeout must cover the longest handler wait, a request blocked on an
// add attempt included.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	BodyLimit       string
	// TraceOperation names the server span of every request. Empty disables
	// request tracing.
	TraceOperation string
}

// DefaultServerConfig returns the settings used by tests and local runs.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            DefaultHost,
		Port:            DefaultPort,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
	}
}

// Server owns the echo router and the http.Server that serves it.
type Server struct {
	echo   *echo.Echo
	http   *http.Server
	config ServerConfig
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds a server. Nothing listens until Run is called.
func NewServer(config ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if config.TraceOperation != "" {
		e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware(config.TraceOperation)))
	}
	if config.BodyLimit != "" {
		e.Use(echomw.BodyLimit(config.BodyLimit))
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Handler:           e,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       2 * config.ReadTimeout,
		MaxHeaderBytes:    DefaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	e.Server = srv

	return &Server{echo: e, http: srv, config: config, logger: logger}
}

// Echo exposes the router for middleware and route registration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// HTTPServer exposes the underlying http.Server.
func (s *Server) HTTPServer() *http.Server {
	return s.http
}

// Use adds middleware.
func (s *Server) Use(middleware ...echo.MiddlewareFunc) {
	s.echo.Use(middleware...)
}

// Run listens and serves until ctx is done, then shuts down gracefully within
// ShutdownTimeout. In-flight requests keep their own deadlines.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "starting HTTP server",
		slog.String("address", ln.Addr().String()),
		slog.Duration("read_timeout", s.http.ReadTimeout),
		slog.Duration("write_timeout", s.http.WriteTimeout),
	)

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.http.Serve(ln) }()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	if err = s.shutdown(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	if err = <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func (s *Server) shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "shutting down HTTP server",
		slog.Duration("timeout", s.config.ShutdownTimeout),
	)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.InfoContext(ctx, "HTTP server stopped")
	return nil
}

// Addr returns the bound address once Run is listening, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Address returns the configured host:port.
func (s *Server) Address() string {
	return s.http.Addr
}
