package eventbus_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/regroup/internal/domain/event"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
	"github.com/lllypuk/regroup/internal/infrastructure/eventbus"
	"github.com/lllypuk/regroup/tests/testutil"
)

func TestRedisEventBus_ChannelName(t *testing.T) {
	bus := eventbus.NewRedisEventBus(nil, eventbus.WithChannelPrefix("regroup:"))
	assert.Equal(t, "regroup:group.members_added", bus.ChannelName(group.EventTypeMembersAdded))
}

func TestRedisEventBus_PublishNil(t *testing.T) {
	bus := eventbus.NewRedisEventBus(nil)
	require.Error(t, bus.Publish(context.Background(), nil))
}

func TestDecodeEnvelope_Invalid(t *testing.T) {
	_, err := eventbus.DecodeEnvelope([]byte("{"))
	require.Error(t, err)
}

func TestRedisEventBus_Publish(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	bus := eventbus.NewRedisEventBus(client, eventbus.WithChannelPrefix("test:"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pubsub := client.Subscribe(ctx, bus.ChannelName(group.EventTypeAdditionClassified))
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	groupID := uuid.NewUUID()
	classification, err := group.Classify(group.PermanentFailure{Cause: group.ErrInsufficientRights})
	require.NoError(t, err)
	evt := group.NewAdditionClassified(groupID, classification, group.ReasonInsufficientRights, 2,
		"Cannot add members.", event.NewMetadata("user-1", "corr-1"))

	require.NoError(t, bus.Publish(ctx, evt))

	var msg *redis.Message
	select {
	case msg = <-pubsub.Channel():
	case <-ctx.Done():
		t.Fatal("no message received")
	}

	envelope, err := eventbus.DecodeEnvelope([]byte(msg.Payload))
	require.NoError(t, err)
	assert.NotEmpty(t, envelope.ID)
	assert.Equal(t, group.EventTypeAdditionClassified, envelope.EventType)
	assert.Equal(t, groupID.String(), envelope.AggregateID)
	assert.Equal(t, "corr-1", envelope.Metadata.CorrelationID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "unrecoverable_error", payload["category"])
	assert.Equal(t, "insufficient_rights", payload["reason"])
	assert.Equal(t, "Cannot add members.", payload["notice"])
}

func TestRedisEventBus_PublishFailsAfterRetries(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	bus := eventbus.NewRedisEventBus(client, eventbus.WithRetryConfig(eventbus.RetryConfig{
		MaxRetries:     1,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  2,
	}))

	evt := group.NewUnmigratedPurged(uuid.NewUUID(), []uuid.UUID{uuid.NewUUID()}, 1, event.Metadata{})
	err := bus.Publish(context.Background(), evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event to Redis")
}
