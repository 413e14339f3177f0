package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
	"github.com/lllypuk/regroup/internal/infrastructure/memory"
)

// MockGroupRepository wraps the in-memory group store with injectable errors
// and call counts.
type MockGroupRepository struct {
	store *memory.GroupStore

	mu     sync.Mutex
	errors map[string]error
	calls  map[string]int
}

// NewMockGroupRepository creates an empty repository.
func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		store:  memory.NewGroupStore(),
		errors: make(map[string]error),
		calls:  make(map[string]int),
	}
}

// Put stores g as is, bypassing version checks.
func (r *MockGroupRepository) Put(g *group.Group) {
	r.store.Put(g)
}

// SetError makes method return err until cleared with a nil err.
func (r *MockGroupRepository) SetError(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.errors, method)
		return
	}
	r.errors[method] = err
}

// Calls returns how many times method was called.
func (r *MockGroupRepository) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

func (r *MockGroupRepository) Load(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	if err := r.track("Load"); err != nil {
		return nil, err
	}
	return r.store.Load(ctx, id)
}

func (r *MockGroupRepository) Save(ctx context.Context, g *group.Group, expectedVersion int) error {
	if err := r.track("Save"); err != nil {
		return err
	}
	return r.store.Save(ctx, g, expectedVersion)
}

func (r *MockGroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	if err := r.track("IsMember"); err != nil {
		return false, err
	}
	return r.store.IsMember(ctx, groupID, userID)
}

func (r *MockGroupRepository) UnmigratedMembers(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	if err := r.track("UnmigratedMembers"); err != nil {
		return nil, err
	}
	return r.store.UnmigratedMembers(ctx, groupID)
}

func (r *MockGroupRepository) RemoveUnmigrated(ctx context.Context, groupID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if err := r.track("RemoveUnmigrated"); err != nil {
		return nil, err
	}
	return r.store.RemoveUnmigrated(ctx, groupID, ids)
}

func (r *MockGroupRepository) track(method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[method]++
	return r.errors[method]
}
