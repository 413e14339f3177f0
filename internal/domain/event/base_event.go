package event

import "time"

// BaseEvent is embedded by concrete group events.
type BaseEvent struct {
	eventType     string
	aggregateID   string
	aggregateType string
	occurredAt    time.Time
	version       int
	metadata      Metadata
}

// NewBaseEvent stamps a new event with the current time.
func NewBaseEvent(eventType, aggregateID, aggregateType string, version int, metadata Metadata) BaseEvent {
	return BaseEvent{
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now(),
		version:       version,
		metadata:      metadata,
	}
}

func (e BaseEvent) EventType() string     { return e.eventType }
func (e BaseEvent) AggregateID() string   { return e.aggregateID }
func (e BaseEvent) AggregateType() string { return e.aggregateType }
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }
func (e BaseEvent) Version() int          { return e.version }
func (e BaseEvent) Metadata() Metadata    { return e.metadata }
