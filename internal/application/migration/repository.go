package migration

import (
	"context"
	"time"

	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// MembershipService applies an add-members change to a group.
type MembershipService interface {
	AddMembers(ctx context.Context, groupID, actor uuid.UUID, ids []uuid.UUID) (group.AddResult, error)
}

// GroupMigrator moves a legacy group to the current format and returns the
// members left behind as pending records.
type GroupMigrator interface {
	MigrateGroup(ctx context.Context, groupID, actor uuid.UUID) ([]uuid.UUID, error)
}

// PendingStore holds the members dropped during a group migration.
type PendingStore interface {
	UnmigratedMembers(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	RemoveUnmigrated(ctx context.Context, groupID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
}

// GroupReader answers membership questions for read paths.
type GroupReader interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// Recipient is a user as shown in notices.
type Recipient struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

// RecipientDirectory resolves display names for users.
type RecipientDirectory interface {
	Resolve(ctx context.Context, ids []uuid.UUID) ([]Recipient, error)
}

// OutcomeRecorder records classified add attempts.
type OutcomeRecorder interface {
	RecordOutcome(c group.Classification, reason string, count int, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordOutcome(group.Classification, string, int, time.Duration) {}
