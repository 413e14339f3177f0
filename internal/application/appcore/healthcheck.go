// Package appcore provides core application interfaces and shared utilities.
package appcore

import (
	"context"
	"time"
)

// HealthChecker checks the health of one backing component.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
	Name() string
}

// HealthStatus represents the health status of a component.
type HealthStatus struct {
	Healthy   bool      `json:"healthy"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// PingFunc adapts a ping call into a HealthChecker.
type PingFunc struct {
	Component string
	Ping      func(ctx context.Context) error
}

// Name returns the component name.
func (p PingFunc) Name() string { return p.Component }

// Check pings the component.
func (p PingFunc) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, CheckedAt: time.Now()}
	if err := p.Ping(ctx); err != nil {
		status.Healthy = false
		status.Message = err.Error()
	}
	return status
}
