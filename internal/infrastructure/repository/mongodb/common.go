// Package mongodb implements the group and user stores on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// HandleMongoError converts a MongoDB error into a domain error.
// returns:
//   - nil if err == nil
//   - notFound if no document matched
//   - errs.ErrConcurrentModification on a duplicate key
//   - group.ErrNetwork wrapping connectivity and timeout errors
//   - a wrapped error otherwise
func HandleMongoError(err error, resourceType string, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", resourceType, errs.ErrConcurrentModification)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", group.ErrNetwork, resourceType, err)
	default:
		return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
	}
}

func parseIDs(values []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		out = append(out, uuid.UUID(v))
	}
	return out
}

// upsertOptions returns the standard options for an upsert.
func upsertOptions() *options.UpdateOneOptionsBuilder {
	return options.UpdateOne().SetUpsert(true)
}
