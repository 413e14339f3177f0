package migration_test

import (
	"sync"
	"testing"
	"time"

	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
	"github.com/lllypuk/regroup/tests/mocks"
)

type recordedOutcome struct {
	Classification group.Classification
	Reason         string
	Count          int
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []recordedOutcome
}

func (r *fakeRecorder) RecordOutcome(c group.Classification, reason string, count int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, recordedOutcome{Classification: c, Reason: reason, Count: count})
}

func (r *fakeRecorder) all() []recordedOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedOutcome(nil), r.outcomes...)
}

type fixture struct {
	groupID     uuid.UUID
	admin       uuid.UUID
	pending     []uuid.UUID
	repo        *mocks.MockGroupRepository
	membership  *mocks.MockMembershipService
	directory   *mocks.MockRecipientDirectory
	eventBus    *mocks.MockEventBus
	recorder    *fakeRecorder
	addMembers  *migration.AddSuggestedMembersUseCase
	suggestions *migration.ListSuggestionsUseCase
}

// newFixture stores a group with two members dropped during migration.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	admin := uuid.NewUUID()
	pending := []uuid.UUID{uuid.NewUUID(), uuid.NewUUID()}
	groupID := uuid.NewUUID()

	repo := mocks.NewMockGroupRepository()
	repo.Put(group.Reconstruct(group.Snapshot{
		ID:         groupID,
		Title:      "Hiking",
		Format:     group.FormatV2,
		AddPolicy:  group.AddPolicyAnyMember,
		Members:    []group.Member{group.NewMember(admin, group.RoleAdmin)},
		Unmigrated: pending,
		Version:    1,
	}))

	directory := mocks.NewMockRecipientDirectory()
	directory.Add(pending[0], "Alice", group.EligibleToJoin)
	directory.Add(pending[1], "Bob", group.EligibleToInvite)

	f := &fixture{
		groupID:    groupID,
		admin:      admin,
		pending:    pending,
		repo:       repo,
		membership: mocks.NewMockMembershipService(),
		directory:  directory,
		eventBus:   mocks.NewMockEventBus(),
		recorder:   &fakeRecorder{},
	}
	f.addMembers = migration.NewAddSuggestedMembersUseCase(
		f.membership, f.repo, f.directory, f.eventBus,
		migration.WithRecorder(f.recorder),
	)
	f.suggestions = migration.NewListSuggestionsUseCase(f.repo, f.repo, f.directory)
	return f
}

func (f *fixture) command(ids ...uuid.UUID) migration.AddSuggestedMembersCommand {
	return migration.AddSuggestedMembersCommand{
		GroupID:     f.groupID,
		Suggestions: ids,
		RequestedBy: f.admin,
	}
}
