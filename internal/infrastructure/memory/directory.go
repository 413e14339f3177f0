package memory

import (
	"context"
	"sync"

	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// Directory resolves display names and eligibility from registered users.
// Users never registered can join.
type Directory struct {
	mu          sync.RWMutex
	names       map[uuid.UUID]string
	eligibility map[uuid.UUID]group.Eligibility
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		names:       make(map[uuid.UUID]string),
		eligibility: make(map[uuid.UUID]group.Eligibility),
	}
}

// Add registers a user.
func (d *Directory) Add(id uuid.UUID, name string, eligibility group.Eligibility) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[id] = name
	d.eligibility[id] = eligibility
}

// Resolve returns the registered recipients among ids, in request order.
func (d *Directory) Resolve(_ context.Context, ids []uuid.UUID) ([]migration.Recipient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]migration.Recipient, 0, len(ids))
	for _, id := range ids {
		if name, ok := d.names[id]; ok {
			out = append(out, migration.Recipient{ID: id, DisplayName: name})
		}
	}
	return out, nil
}

// Eligibility returns the eligibility of every id.
func (d *Directory) Eligibility(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]group.Eligibility, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[uuid.UUID]group.Eligibility, len(ids))
	for _, id := range ids {
		e, ok := d.eligibility[id]
		if !ok {
			e = group.EligibleToJoin
		}
		out[id] = e
	}
	return out, nil
}
