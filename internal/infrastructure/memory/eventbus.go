package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lllypuk/regroup/internal/domain/event"
)

// DefaultHistorySize bounds the events an EventBus keeps.
const DefaultHistorySize = 256

// EventBus logs published events and keeps the most recent ones.
type EventBus struct {
	logger *slog.Logger
	limit  int

	mu     sync.RWMutex
	events []event.DomainEvent
}

// NewEventBus creates a bus keeping up to limit events. A non-positive limit
// uses DefaultHistorySize.
func NewEventBus(logger *slog.Logger, limit int) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &EventBus{logger: logger, limit: limit}
}

// Publish records evt. It never fails.
func (b *EventBus) Publish(ctx context.Context, evt event.DomainEvent) error {
	b.mu.Lock()
	b.events = append(b.events, evt)
	if over := len(b.events) - b.limit; over > 0 {
		b.events = append(b.events[:0:0], b.events[over:]...)
	}
	b.mu.Unlock()

	b.logger.DebugContext(ctx, "event published",
		slog.String("event_type", evt.EventType()),
		slog.String("aggregate_id", evt.AggregateID()),
	)
	return nil
}

// Events returns the kept events, oldest first.
func (b *EventBus) Events() []event.DomainEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]event.DomainEvent(nil), b.events...)
}

var _ event.Bus = (*EventBus)(nil)
