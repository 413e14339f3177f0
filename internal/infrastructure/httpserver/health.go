package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/regroup/internal/application/appcore"
)

// Health status values reported by the health endpoints.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the response for health endpoints.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// HealthEndpoints serves the liveness and readiness checks.
type HealthEndpoints struct {
	checkers []appcore.HealthChecker
}

// NewHealthEndpoints creates a new HealthEndpoints instance.
func NewHealthEndpoints(checkers ...appcore.HealthChecker) *HealthEndpoints {
	return &HealthEndpoints{checkers: checkers}
}

// Register registers the health endpoints on the Echo instance.
//   - GET /health - liveness, always 200 while the process runs
//   - GET /ready - readiness, 503 when any component is unhealthy
func (h *HealthEndpoints) Register(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.GET("/ready", h.handleReady)
}

func (h *HealthEndpoints) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: StatusHealthy})
}

func (h *HealthEndpoints) handleReady(c echo.Context) error {
	components, ready := h.check(c.Request().Context())
	if ready {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:     StatusReady,
			Components: components,
		})
	}
	return c.JSON(http.StatusServiceUnavailable, HealthResponse{
		Status:     StatusNotReady,
		Components: components,
	})
}

func (h *HealthEndpoints) check(ctx context.Context) ([]ComponentStatus, bool) {
	ready := true
	components := make([]ComponentStatus, 0, len(h.checkers))
	for _, checker := range h.checkers {
		status := checker.Check(ctx)
		component := ComponentStatus{
			Name:    checker.Name(),
			Status:  StatusHealthy,
			Message: status.Message,
		}
		if !status.Healthy {
			component.Status = StatusUnhealthy
			ready = false
		}
		components = append(components, component)
	}
	return components, ready
}

// RegisterHealthEndpoints registers health endpoints backed by the given checkers.
func (r *Router) RegisterHealthEndpoints(checkers ...appcore.HealthChecker) {
	NewHealthEndpoints(checkers...).Register(r.echo)
}
