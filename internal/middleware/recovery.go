package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
)

// DefaultStackSize is the captured stack size.
const DefaultStackSize = 4 << 10

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// Logger is the structured logger to use for panic logging.
	Logger *slog.Logger

	StackSize int
	// DisableStackAll limits the stack to the panicking goroutine.
	DisableStackAll bool
	// DisablePrintStack omits the stack from the log entry.
	DisablePrintStack bool
}

// DefaultRecoveryConfig returns a RecoveryConfig with sensible defaults.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		Logger:            slog.Default(),
		StackSize:         DefaultStackSize,
		DisableStackAll:   true,
		DisablePrintStack: false,
	}
}

// Recovery returns a middleware that recovers from panics and logs the error.
func Recovery(logger *slog.Logger) echo.MiddlewareFunc {
	config := DefaultRecoveryConfig()
	config.Logger = logger
	return RecoveryWithConfig(config)
}

// RecoveryWithConfig returns a recovery middleware with custom configuration.
func RecoveryWithConfig(config RecoveryConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.StackSize == 0 {
		config.StackSize = DefaultStackSize
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					handlePanic(c, config, r)
				}
			}()
			return next(c)
		}
	}
}

func handlePanic(c echo.Context, config RecoveryConfig, r any) {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}

	req := c.Request()
	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("remote_ip", c.RealIP()),
	}

	requestID := GetRequestID(c)
	if requestID == "" {
		requestID = req.Header.Get(RequestIDHeader)
	}
	if requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if userID := GetUserID(c); !userID.IsZero() {
		attrs = append(attrs, slog.String("user_id", userID.String()))
	}
	if !config.DisablePrintStack {
		stack := make([]byte, config.StackSize)
		stack = stack[:runtime.Stack(stack, !config.DisableStackAll)]
		attrs = append(attrs, slog.String("stack", string(stack)))
	}

	config.Logger.ErrorContext(req.Context(), "panic recovered", attrs...)

	if !c.Response().Committed {
		_ = c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error": map[string]string{
				"code":    "INTERNAL_ERROR",
				"message": "An internal error occurred",
			},
		})
	}
}
