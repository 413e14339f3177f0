// Package memory holds the in-memory stores wired in mock mode.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// GroupStore keeps group snapshots with optimistic versioning.
type GroupStore struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]group.Snapshot
}

// NewGroupStore creates an empty store.
func NewGroupStore() *GroupStore {
	return &GroupStore{groups: make(map[uuid.UUID]group.Snapshot)}
}

// Put stores g as is, bypassing version checks.
func (s *GroupStore) Put(g *group.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID()] = g.Snapshot()
}

// Load returns a fresh copy of the group.
func (s *GroupStore) Load(_ context.Context, id uuid.UUID) (*group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.groups[id]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return group.Reconstruct(snap), nil
}

// Save stores g if the stored version still equals expectedVersion.
func (s *GroupStore) Save(_ context.Context, g *group.Group, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.groups[g.ID()]; ok && current.Version != expectedVersion {
		return errs.ErrConcurrentModification
	}
	s.groups[g.ID()] = g.Snapshot()
	return nil
}

// IsMember reports whether userID is a member of the group.
func (s *GroupStore) IsMember(_ context.Context, groupID, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.groups[groupID]
	if !ok {
		return false, group.ErrGroupNotFound
	}
	return slices.ContainsFunc(snap.Members, func(m group.Member) bool {
		return m.UserID() == userID
	}), nil
}

// UnmigratedMembers returns the pending records of the group.
func (s *GroupStore) UnmigratedMembers(_ context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.groups[groupID]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return slices.Clone(snap.Unmigrated), nil
}

// RemoveUnmigrated drops ids from the pending records and returns those removed.
func (s *GroupStore) RemoveUnmigrated(_ context.Context, groupID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.groups[groupID]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	g := group.Reconstruct(snap)
	removed := g.RemoveUnmigrated(ids)
	s.groups[groupID] = g.Snapshot()
	return removed, nil
}
