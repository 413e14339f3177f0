package appcore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

func TestUserIDContext(t *testing.T) {
	t.Run("set and get userID", func(t *testing.T) {
		userID := uuid.NewUUID()
		ctx := appcore.WithUserID(context.Background(), userID)

		retrievedID, err := appcore.GetUserID(ctx)
		require.NoError(t, err)
		assert.Equal(t, userID, retrievedID)
	})

	t.Run("get userID from empty context", func(t *testing.T) {
		_, err := appcore.GetUserID(context.Background())
		require.ErrorIs(t, err, appcore.ErrUserIDNotFound)
	})
}

func TestCorrelationIDContext(t *testing.T) {
	ctx := appcore.WithCorrelationID(context.Background(), "corr-123")
	assert.Equal(t, "corr-123", appcore.GetCorrelationID(ctx))
	assert.Empty(t, appcore.GetCorrelationID(context.Background()))
}

func TestValidateUUIDList(t *testing.T) {
	require.NoError(t, appcore.ValidateUUIDList("ids", []uuid.UUID{uuid.NewUUID()}, 5))

	err := appcore.ValidateUUIDList("ids", []uuid.UUID{uuid.NewUUID(), ""}, 5)
	require.ErrorIs(t, err, appcore.ErrValidationFailed)
	assert.Contains(t, err.Error(), "ids[1]")

	err = appcore.ValidateUUIDList("ids", make([]uuid.UUID, 3), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 2")
}

func TestPingFunc(t *testing.T) {
	healthy := appcore.PingFunc{Component: "mongodb", Ping: func(context.Context) error { return nil }}
	assert.Equal(t, "mongodb", healthy.Name())
	assert.True(t, healthy.Check(context.Background()).Healthy)

	broken := appcore.PingFunc{Component: "redis", Ping: func(context.Context) error { return errors.New("refused") }}
	status := broken.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "refused", status.Message)
}
