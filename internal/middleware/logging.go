package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/lllypuk/regroup/internal/application/appcore"
)

const (
	// RequestIDHeader carries the request ID in and out.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the echo context key of the request ID.
	RequestIDKey = "request_id"

	logAttrsKey = "log_attrs"
)

// LoggingConfig configures the access log.
type LoggingConfig struct {
	Logger    *slog.Logger
	SkipPaths []string
}

// DefaultLoggingConfig skips the health and scrape endpoints.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Logger:    slog.Default(),
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}
}

// Logging writes one access log line per request. The request ID is echoed in
// the response and becomes the correlation ID of events published while
// serving it. Handlers add fields with AddLogAttrs.
func Logging(config LoggingConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skip[c.Request().URL.Path]; ok {
				return next(c)
			}

			requestID := assignRequestID(c)
			start := time.Now()
			err := next(c)

			req := c.Request()
			status := statusOf(c, err)
			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("route", c.Path()),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
				slog.Int64("response_size", c.Response().Size),
			}
			if userID := GetUserID(c); !userID.IsZero() {
				attrs = append(attrs, slog.String("user_id", userID.String()))
			}
			if sc := trace.SpanContextFromContext(req.Context()); sc.HasTraceID() {
				attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
			}
			attrs = append(attrs, logAttrs(c)...)

			level := levelFor(status)
			if err != nil && level > slog.LevelInfo {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			config.Logger.LogAttrs(req.Context(), level, "HTTP request", attrs...)

			return err
		}
	}
}

func assignRequestID(c echo.Context) string {
	req := c.Request()
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	c.Response().Header().Set(RequestIDHeader, requestID)
	c.Set(RequestIDKey, requestID)
	c.SetRequest(req.WithContext(appcore.WithCorrelationID(req.Context(), requestID)))
	return requestID
}

func statusOf(c echo.Context, err error) int {
	var he *echo.HTTPError
	if err != nil && errors.As(err, &he) {
		return he.Code
	}
	return c.Response().Status
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// AddLogAttrs attaches fields to the access log line of the current request.
func AddLogAttrs(c echo.Context, attrs ...slog.Attr) {
	c.Set(logAttrsKey, append(logAttrs(c), attrs...))
}

func logAttrs(c echo.Context) []slog.Attr {
	attrs, _ := c.Get(logAttrsKey).([]slog.Attr)
	return attrs
}

// GetRequestID returns the request ID assigned by Logging.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
