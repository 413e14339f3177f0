package appcore

import (
	"context"
	"errors"

	"github.com/lllypuk/regroup/internal/domain/uuid"
)

type contextKey string

const (
	userIDKey        contextKey = "userID"
	correlationIDKey contextKey = "correlationID"
)

var (
	ErrUserIDNotFound = errors.New("user ID not found in context")
)

// GetUserID extracts the user ID from the context
func GetUserID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok {
		return "", ErrUserIDNotFound
	}
	return userID, nil
}

// WithUserID adds the user ID to the context
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetCorrelationID returns the correlation ID or an empty string
func GetCorrelationID(ctx context.Context) string {
	correlationID, _ := ctx.Value(correlationIDKey).(string)
	return correlationID
}

// WithCorrelationID adds the correlation ID to the context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}
