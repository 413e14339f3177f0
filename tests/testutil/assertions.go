// Package testutil provides shared helpers for tests: containers, fixtures and assertions.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/regroup/internal/domain/event"
)

// AssertEventPublished checks that an event of eventType is present and returns the first one.
func AssertEventPublished(t *testing.T, events []event.DomainEvent, eventType string) event.DomainEvent {
	t.Helper()

	for _, evt := range events {
		if evt.EventType() == eventType {
			return evt
		}
	}

	require.Failf(t, "event not found", "expected event of type %s", eventType)
	return nil
}

// AssertNoEventPublished checks that no event of eventType is present.
func AssertNoEventPublished(t *testing.T, events []event.DomainEvent, eventType string) {
	t.Helper()

	for _, evt := range events {
		assert.NotEqual(t, eventType, evt.EventType(), "unexpected event of type %s", eventType)
	}
}
