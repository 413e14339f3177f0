package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// AddMembersCall records one call to MockMembershipService.AddMembers.
type AddMembersCall struct {
	GroupID uuid.UUID
	Actor   uuid.UUID
	IDs     []uuid.UUID
}

// MockMembershipService returns a preset result and error.
type MockMembershipService struct {
	mu     sync.Mutex
	result group.AddResult
	err    error
	calls  []AddMembersCall
}

// NewMockMembershipService creates a service whose calls succeed with an empty result.
func NewMockMembershipService() *MockMembershipService {
	return &MockMembershipService{}
}

// Returns sets the next result and error.
func (s *MockMembershipService) Returns(result group.AddResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.err = err
}

// AddMembers records the call and returns the preset values.
func (s *MockMembershipService) AddMembers(_ context.Context, groupID, actor uuid.UUID, ids []uuid.UUID) (group.AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, AddMembersCall{GroupID: groupID, Actor: actor, IDs: append([]uuid.UUID(nil), ids...)})
	return s.result, s.err
}

// Calls returns the recorded calls.
func (s *MockMembershipService) Calls() []AddMembersCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AddMembersCall(nil), s.calls...)
}
