// Package event defines the domain event contract published after group changes.
package event

import (
	"context"
	"time"
)

// DomainEvent represents a domain event.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
	Version() int
	Metadata() Metadata
}

// Bus publishes events.
type Bus interface {
	Publish(ctx context.Context, event DomainEvent) error
}
