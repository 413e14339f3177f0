// Package eventbus publishes group domain events over Redis Pub/Sub.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/regroup/internal/domain/event"
)

// Default publish configuration constants.
const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 50 * time.Millisecond
	defaultMaxBackoff     = time.Second
	defaultBackoffFactor  = 2.0
	defaultChannelPrefix  = "events:"
)

// Envelope wraps a domain event for transport.
type Envelope struct {
	ID            string          `json:"id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Version       int             `json:"version"`
	Metadata      event.Metadata  `json:"metadata"`
	Payload       json.RawMessage `json:"payload"`
}

// DecodeEnvelope parses a message published by RedisEventBus.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return envelope, nil
}

// RetryConfig configures retries of failed publishes.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     defaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
		BackoffFactor:  defaultBackoffFactor,
	}
}

// RedisEventBus implements event.Bus using Redis Pub/Sub.
// Each event type is published on its own channel.
type RedisEventBus struct {
	client        redis.UniversalClient
	logger        *slog.Logger
	retryConfig   RetryConfig
	channelPrefix string
}

// Option configures a RedisEventBus.
type Option func(*RedisEventBus)

// WithLogger sets the logger for the event bus.
func WithLogger(logger *slog.Logger) Option {
	return func(b *RedisEventBus) {
		b.logger = logger
	}
}

// WithRetryConfig sets the retry configuration for publishing.
func WithRetryConfig(config RetryConfig) Option {
	return func(b *RedisEventBus) {
		b.retryConfig = config
	}
}

// WithChannelPrefix sets a prefix for Redis channel names.
func WithChannelPrefix(prefix string) Option {
	return func(b *RedisEventBus) {
		b.channelPrefix = prefix
	}
}

// NewRedisEventBus creates a new Redis-based event bus.
func NewRedisEventBus(client redis.UniversalClient, opts ...Option) *RedisEventBus {
	b := &RedisEventBus{
		client:        client,
		logger:        slog.Default(),
		retryConfig:   DefaultRetryConfig(),
		channelPrefix: defaultChannelPrefix,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Publish publishes a domain event, retrying transient Redis failures.
func (b *RedisEventBus) Publish(ctx context.Context, evt event.DomainEvent) error {
	if evt == nil {
		return errors.New("event cannot be nil")
	}

	envelope, err := newEnvelope(evt)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := b.ChannelName(evt.EventType())
	backoff := b.retryConfig.InitialBackoff

	var lastErr error
	for attempt := 0; attempt <= b.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("failed to publish event to Redis: %w", ctx.Err())
			case <-time.After(backoff):
			}
			backoff = min(time.Duration(float64(backoff)*b.retryConfig.BackoffFactor), b.retryConfig.MaxBackoff)
		}

		if lastErr = b.client.Publish(ctx, channel, data).Err(); lastErr == nil {
			b.logger.DebugContext(ctx, "event published",
				slog.String("event_id", envelope.ID),
				slog.String("event_type", evt.EventType()),
				slog.String("aggregate_id", evt.AggregateID()),
				slog.String("channel", channel),
			)
			return nil
		}

		b.logger.WarnContext(ctx, "event publish failed",
			slog.String("event_type", evt.EventType()),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
	}

	return fmt.Errorf("failed to publish event to Redis: %w", lastErr)
}

// Ping checks the Redis connection.
func (b *RedisEventBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// ChannelName returns the Redis channel name for an event type.
func (b *RedisEventBus) ChannelName(eventType string) string {
	return b.channelPrefix + eventType
}

func newEnvelope(evt event.DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return Envelope{
		ID:            uuid.New().String(),
		EventType:     evt.EventType(),
		AggregateID:   evt.AggregateID(),
		AggregateType: evt.AggregateType(),
		OccurredAt:    evt.OccurredAt(),
		Version:       evt.Version(),
		Metadata:      evt.Metadata(),
		Payload:       payload,
	}, nil
}

// Ensure RedisEventBus implements event.Bus
var _ event.Bus = (*RedisEventBus)(nil)
