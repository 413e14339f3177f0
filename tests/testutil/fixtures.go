package testutil

import (
	"testing"
	"time"

	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// GroupOption modifies a group snapshot before it is built.
type GroupOption func(*group.Snapshot)

// WithMembers adds regular members.
func WithMembers(ids ...uuid.UUID) GroupOption {
	return func(s *group.Snapshot) {
		for _, id := range ids {
			s.Members = append(s.Members, group.NewMember(id, group.RoleMember))
		}
	}
}

// WithUnmigrated sets the members dropped during migration.
func WithUnmigrated(ids ...uuid.UUID) GroupOption {
	return func(s *group.Snapshot) {
		s.Unmigrated = append(s.Unmigrated, ids...)
	}
}

// WithAddPolicy sets the add policy.
func WithAddPolicy(policy group.AddPolicy) GroupOption {
	return func(s *group.Snapshot) {
		s.AddPolicy = policy
	}
}

// WithFormat sets the group format.
func WithFormat(format group.Format) GroupOption {
	return func(s *group.Snapshot) {
		s.Format = format
	}
}

// BuildGroup creates a v2 group administered by admin.
func BuildGroup(t *testing.T, admin uuid.UUID, opts ...GroupOption) *group.Group {
	t.Helper()

	s := group.Snapshot{
		ID:        uuid.NewUUID(),
		Title:     "Test Group",
		Format:    group.FormatV2,
		AddPolicy: group.AddPolicyAnyMember,
		Members:   []group.Member{group.NewMember(admin, group.RoleAdmin)},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return group.Reconstruct(s)
}
