package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
	"github.com/lllypuk/regroup/internal/infrastructure/memory"
)

// MockRecipientDirectory is the in-memory directory with an injectable error.
type MockRecipientDirectory struct {
	*memory.Directory

	mu  sync.RWMutex
	err error
}

// NewMockRecipientDirectory creates an empty directory.
func NewMockRecipientDirectory() *MockRecipientDirectory {
	return &MockRecipientDirectory{Directory: memory.NewDirectory()}
}

// FailWith makes Resolve and Eligibility return err. Pass nil to recover.
func (d *MockRecipientDirectory) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *MockRecipientDirectory) Resolve(ctx context.Context, ids []uuid.UUID) ([]migration.Recipient, error) {
	if err := d.failure(); err != nil {
		return nil, err
	}
	return d.Directory.Resolve(ctx, ids)
}

func (d *MockRecipientDirectory) Eligibility(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]group.Eligibility, error) {
	if err := d.failure(); err != nil {
		return nil, err
	}
	return d.Directory.Eligibility(ctx, ids)
}

func (d *MockRecipientDirectory) failure() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.err
}
