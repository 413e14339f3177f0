package group_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

func allJoin(uuid.UUID) group.Eligibility { return group.EligibleToJoin }

func newTestGroup(t *testing.T) (*group.Group, uuid.UUID) {
	t.Helper()
	owner := uuid.NewUUID()
	g, err := group.NewGroup("Family", owner)
	require.NoError(t, err)
	return g, owner
}

func TestNewGroup(t *testing.T) {
	g, owner := newTestGroup(t)

	assert.False(t, g.ID().IsZero())
	assert.Equal(t, group.FormatV2, g.Format())
	assert.Equal(t, group.AddPolicyAnyMember, g.AddPolicy())
	require.Len(t, g.Members(), 1)
	assert.True(t, g.Members()[0].IsAdmin())
	assert.True(t, g.HasMember(owner))

	_, err := group.NewGroup("x", "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestGroup_AddMembers(t *testing.T) {
	t.Run("adds eligible and invites the rest in order", func(t *testing.T) {
		g, owner := newTestGroup(t)
		a, b, c := uuid.NewUUID(), uuid.NewUUID(), uuid.NewUUID()
		eligibility := func(id uuid.UUID) group.Eligibility {
			if id == b {
				return group.EligibleToInvite
			}
			return group.EligibleToJoin
		}

		res, err := g.AddMembers(owner, []uuid.UUID{a, b, c}, eligibility)

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a, c}, res.Added)
		assert.Equal(t, []uuid.UUID{b}, res.Invited)
		assert.True(t, g.HasMember(a))
		assert.True(t, g.IsInvited(b))
		assert.Equal(t, 1, g.Version())

		events := g.GetUncommittedEvents()
		require.Len(t, events, 2)
		assert.Equal(t, group.EventTypeMembersAdded, events[0].EventType())
		assert.Equal(t, group.EventTypeMembersInvited, events[1].EventType())

		g.MarkEventsAsCommitted()
		assert.Empty(t, g.GetUncommittedEvents())
	})

	t.Run("existing members and duplicates are skipped", func(t *testing.T) {
		g, owner := newTestGroup(t)
		a := uuid.NewUUID()

		res, err := g.AddMembers(owner, []uuid.UUID{owner, a, a}, allJoin)

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a}, res.Added)
	})

	t.Run("no-op leaves version unchanged", func(t *testing.T) {
		g, owner := newTestGroup(t)

		res, err := g.AddMembers(owner, []uuid.UUID{owner}, allJoin)

		require.NoError(t, err)
		assert.Empty(t, res.Added)
		assert.Equal(t, 0, g.Version())
	})

	t.Run("actor not a member", func(t *testing.T) {
		g, _ := newTestGroup(t)
		_, err := g.AddMembers(uuid.NewUUID(), []uuid.UUID{uuid.NewUUID()}, allJoin)
		require.ErrorIs(t, err, group.ErrNotAMember)
	})

	t.Run("admins only policy", func(t *testing.T) {
		g, owner := newTestGroup(t)
		regular := uuid.NewUUID()
		_, err := g.AddMembers(owner, []uuid.UUID{regular}, allJoin)
		require.NoError(t, err)
		require.NoError(t, g.SetAddPolicy(group.AddPolicyAdminsOnly))

		_, err = g.AddMembers(regular, []uuid.UUID{uuid.NewUUID()}, allJoin)
		require.ErrorIs(t, err, group.ErrInsufficientRights)

		_, err = g.AddMembers(owner, []uuid.UUID{uuid.NewUUID()}, allJoin)
		require.NoError(t, err)
	})

	t.Run("ineligible recipient rejects the whole change", func(t *testing.T) {
		g, owner := newTestGroup(t)
		a, bad := uuid.NewUUID(), uuid.NewUUID()
		eligibility := func(id uuid.UUID) group.Eligibility {
			if id == bad {
				return group.NotEligible
			}
			return group.EligibleToJoin
		}

		_, err := g.AddMembers(owner, []uuid.UUID{a, bad}, eligibility)

		require.ErrorIs(t, err, group.ErrMembershipNotSuitable)
		assert.False(t, g.HasMember(a))
		assert.Empty(t, g.GetUncommittedEvents())
	})

	t.Run("legacy group", func(t *testing.T) {
		owner := uuid.NewUUID()
		g := group.Reconstruct(group.Snapshot{
			ID:      uuid.NewUUID(),
			Format:  group.FormatV1,
			Members: []group.Member{group.ReconstructMember(owner, group.RoleAdmin, time.Now())},
		})
		_, err := g.AddMembers(owner, []uuid.UUID{uuid.NewUUID()}, allJoin)
		require.ErrorIs(t, err, group.ErrMembershipNotSuitable)
	})

	t.Run("size limit", func(t *testing.T) {
		g, owner := newTestGroup(t)
		ids := make([]uuid.UUID, group.MaxMembers)
		for i := range ids {
			ids[i] = uuid.NewUUID()
		}
		_, err := g.AddMembers(owner, ids, allJoin)
		require.ErrorIs(t, err, group.ErrChangeFailed)
	})

	t.Run("invalid input", func(t *testing.T) {
		g, owner := newTestGroup(t)
		_, err := g.AddMembers(owner, nil, allJoin)
		require.ErrorIs(t, err, errs.ErrInvalidInput)
		_, err = g.AddMembers(owner, []uuid.UUID{""}, allJoin)
		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestGroup_MigrateFromV1(t *testing.T) {
	owner, kept, dropped := uuid.NewUUID(), uuid.NewUUID(), uuid.NewUUID()
	legacy := func() *group.Group {
		return group.Reconstruct(group.Snapshot{
			ID:     uuid.NewUUID(),
			Format: group.FormatV1,
			Members: []group.Member{
				group.ReconstructMember(owner, group.RoleAdmin, time.Now()),
				group.ReconstructMember(kept, group.RoleMember, time.Now()),
				group.ReconstructMember(dropped, group.RoleMember, time.Now()),
			},
			Version: 3,
		})
	}
	inviteDropped := func(id uuid.UUID) group.Eligibility {
		if id == dropped {
			return group.EligibleToInvite
		}
		return group.EligibleToJoin
	}

	t.Run("drops members that cannot join", func(t *testing.T) {
		g := legacy()

		got, err := g.MigrateFromV1(owner, inviteDropped)

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{dropped}, got)
		assert.Equal(t, group.FormatV2, g.Format())
		assert.True(t, g.HasMember(kept))
		assert.False(t, g.HasMember(dropped))
		assert.Equal(t, []uuid.UUID{dropped}, g.UnmigratedMembers())
		assert.Equal(t, 4, g.Version())

		events := g.GetUncommittedEvents()
		require.Len(t, events, 1)
		migrated, ok := events[0].(*group.GroupMigrated)
		require.True(t, ok)
		assert.Equal(t, []uuid.UUID{dropped}, migrated.Unmigrated)
		assert.Equal(t, owner, migrated.MigratedBy)
	})

	t.Run("second migration is refused", func(t *testing.T) {
		g := legacy()
		_, err := g.MigrateFromV1(owner, allJoin)
		require.NoError(t, err)

		_, err = g.MigrateFromV1(owner, allJoin)
		require.ErrorIs(t, err, group.ErrAlreadyMigrated)
	})

	t.Run("only admins migrate", func(t *testing.T) {
		g := legacy()

		_, err := g.MigrateFromV1(kept, allJoin)
		require.ErrorIs(t, err, group.ErrInsufficientRights)

		_, err = g.MigrateFromV1(uuid.NewUUID(), allJoin)
		require.ErrorIs(t, err, group.ErrNotAMember)
		assert.Equal(t, group.FormatV1, g.Format())
		assert.Empty(t, g.GetUncommittedEvents())
	})
}

func TestGroup_RemoveUnmigrated(t *testing.T) {
	a, b, c := uuid.NewUUID(), uuid.NewUUID(), uuid.NewUUID()
	g := group.Reconstruct(group.Snapshot{
		ID:         uuid.NewUUID(),
		Format:     group.FormatV2,
		Unmigrated: []uuid.UUID{a, b, c},
		Version:    4,
	})

	removed := g.RemoveUnmigrated([]uuid.UUID{a, c, uuid.NewUUID()})

	assert.Equal(t, []uuid.UUID{a, c}, removed)
	assert.Equal(t, []uuid.UUID{b}, g.UnmigratedMembers())
	assert.Equal(t, 5, g.Version())
	require.Len(t, g.GetUncommittedEvents(), 1)

	assert.Empty(t, g.RemoveUnmigrated([]uuid.UUID{a}))
	assert.Equal(t, 5, g.Version())
}

func TestGroup_SnapshotRoundTrip(t *testing.T) {
	g, owner := newTestGroup(t)
	_, err := g.AddMembers(owner, []uuid.UUID{uuid.NewUUID()}, allJoin)
	require.NoError(t, err)

	restored := group.Reconstruct(g.Snapshot())

	assert.Equal(t, g.Snapshot(), restored.Snapshot())
	assert.Empty(t, restored.GetUncommittedEvents())
}

func TestGroup_SetAddPolicy_Invalid(t *testing.T) {
	g, _ := newTestGroup(t)
	require.ErrorIs(t, g.SetAddPolicy("everyone"), errs.ErrInvalidInput)
}
