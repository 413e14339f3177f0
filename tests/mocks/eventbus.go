package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/regroup/internal/domain/event"
)

// MockEventBus records published events and can be made to fail.
type MockEventBus struct {
	mu        sync.RWMutex
	published []event.DomainEvent
	err       error
}

// NewMockEventBus creates a new mock event bus.
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{}
}

// Publish records evt unless a failure is set.
func (b *MockEventBus) Publish(_ context.Context, evt event.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, evt)
	return nil
}

// FailWith makes every following Publish return err. Pass nil to recover.
func (b *MockEventBus) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// PublishedCount returns the number of published events.
func (b *MockEventBus) PublishedCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.published)
}

// PublishedEvents returns all published events.
func (b *MockEventBus) PublishedEvents() []event.DomainEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]event.DomainEvent(nil), b.published...)
}

// GetPublishedEventsByType returns the published events of eventType.
func (b *MockEventBus) GetPublishedEventsByType(eventType string) []event.DomainEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var events []event.DomainEvent
	for _, evt := range b.published {
		if evt.EventType() == eventType {
			events = append(events, evt)
		}
	}
	return events
}

// Reset forgets the published events.
func (b *MockEventBus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}
