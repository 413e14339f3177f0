// Package group models messaging groups, their membership changes and the
// classification of add-member attempts.
package group

import (
	"fmt"
	"slices"
	"time"

	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/event"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// MaxMembers is the upper bound on members plus pending invites.
const MaxMembers = 1000

// Format is the storage format of a group.
type Format string

const (
	// FormatV1 is the legacy format. Its membership can no longer change.
	FormatV1 Format = "v1"
	// FormatV2 is the current format.
	FormatV2 Format = "v2"
)

// AddPolicy controls who may add members.
type AddPolicy string

const (
	// AddPolicyAnyMember lets every member add others.
	AddPolicyAnyMember AddPolicy = "any_member"
	// AddPolicyAdminsOnly restricts adding to admins.
	AddPolicyAdminsOnly AddPolicy = "admins_only"
)

// Eligibility describes how a recipient can enter a v2 group.
type Eligibility int

const (
	// EligibleToJoin recipients become full members immediately.
	EligibleToJoin Eligibility = iota
	// EligibleToInvite recipients lack the credentials to be added and are invited instead.
	EligibleToInvite
	// NotEligible recipients cannot take part in v2 groups at all.
	NotEligible
)

// EligibilityFunc reports the eligibility of a recipient.
type EligibilityFunc func(userID uuid.UUID) Eligibility

// AddResult lists who was added and who was invited, in request order.
type AddResult struct {
	Added   []uuid.UUID
	Invited []uuid.UUID
}

// Group is the group aggregate root.
type Group struct {
	id             uuid.UUID
	title          string
	format         Format
	addPolicy      AddPolicy
	members        []Member
	pendingInvites []uuid.UUID
	unmigrated     []uuid.UUID
	createdAt      time.Time

	version           int
	uncommittedEvents []event.DomainEvent
}

// NewGroup creates a v2 group whose creator is its first admin.
func NewGroup(title string, createdBy uuid.UUID) (*Group, error) {
	if createdBy.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	return &Group{
		id:        uuid.NewUUID(),
		title:     title,
		format:    FormatV2,
		addPolicy: AddPolicyAnyMember,
		members:   []Member{NewMember(createdBy, RoleAdmin)},
		createdAt: time.Now(),
	}, nil
}

// Snapshot is the persisted state of a group.
type Snapshot struct {
	ID             uuid.UUID
	Title          string
	Format         Format
	AddPolicy      AddPolicy
	Members        []Member
	PendingInvites []uuid.UUID
	Unmigrated     []uuid.UUID
	CreatedAt      time.Time
	Version        int
}

// Reconstruct rehydrates a group from storage without validating business rules.
func Reconstruct(s Snapshot) *Group {
	return &Group{
		id:             s.ID,
		title:          s.Title,
		format:         s.Format,
		addPolicy:      s.AddPolicy,
		members:        slices.Clone(s.Members),
		pendingInvites: slices.Clone(s.PendingInvites),
		unmigrated:     slices.Clone(s.Unmigrated),
		createdAt:      s.CreatedAt,
		version:        s.Version,
	}
}

// Snapshot returns the state to persist.
func (g *Group) Snapshot() Snapshot {
	return Snapshot{
		ID:             g.id,
		Title:          g.title,
		Format:         g.format,
		AddPolicy:      g.addPolicy,
		Members:        slices.Clone(g.members),
		PendingInvites: slices.Clone(g.pendingInvites),
		Unmigrated:     slices.Clone(g.unmigrated),
		CreatedAt:      g.createdAt,
		Version:        g.version,
	}
}

// MigrateFromV1 converts a legacy group on behalf of an admin. Members rejected
// by eligible are kept as unmigrated records so they can be suggested for
// re-adding later; they are returned in membership order.
func (g *Group) MigrateFromV1(actor uuid.UUID, eligible EligibilityFunc) ([]uuid.UUID, error) {
	if g.format != FormatV1 {
		return nil, fmt.Errorf("%w: group is %s", ErrAlreadyMigrated, g.format)
	}
	actorMember, ok := g.member(actor)
	if !ok {
		return nil, ErrNotAMember
	}
	if !actorMember.IsAdmin() {
		return nil, ErrInsufficientRights
	}

	kept := make([]Member, 0, len(g.members))
	var dropped []uuid.UUID
	for _, m := range g.members {
		if eligible(m.UserID()) == EligibleToJoin {
			kept = append(kept, m)
			continue
		}
		dropped = append(dropped, m.UserID())
	}
	g.members = kept
	g.unmigrated = append(g.unmigrated, dropped...)
	g.format = FormatV2
	g.version++
	g.record(NewGroupMigrated(g.id, dropped, actor, g.version, event.NewMetadata(actor.String(), "")))
	return dropped, nil
}

// AddMembers adds ids on behalf of actor. Either every id is accepted or the group is left unchanged.
func (g *Group) AddMembers(actor uuid.UUID, ids []uuid.UUID, eligible EligibilityFunc) (AddResult, error) {
	if actor.IsZero() || len(ids) == 0 {
		return AddResult{}, errs.ErrInvalidInput
	}
	if g.format != FormatV2 {
		return AddResult{}, fmt.Errorf("%w: group is %s", ErrMembershipNotSuitable, g.format)
	}
	actorMember, ok := g.member(actor)
	if !ok {
		return AddResult{}, ErrNotAMember
	}
	if g.addPolicy == AddPolicyAdminsOnly && !actorMember.IsAdmin() {
		return AddResult{}, ErrInsufficientRights
	}

	var result AddResult
	for _, id := range uuid.Unique(ids) {
		if id.IsZero() {
			return AddResult{}, errs.ErrInvalidInput
		}
		if g.HasMember(id) || g.IsInvited(id) {
			continue
		}
		switch eligible(id) {
		case EligibleToJoin:
			result.Added = append(result.Added, id)
		case EligibleToInvite:
			result.Invited = append(result.Invited, id)
		default:
			return AddResult{}, fmt.Errorf("%w: %s", ErrMembershipNotSuitable, id)
		}
	}

	if len(g.members)+len(g.pendingInvites)+len(result.Added)+len(result.Invited) > MaxMembers {
		return AddResult{}, fmt.Errorf("%w: group would exceed %d members", ErrChangeFailed, MaxMembers)
	}
	if len(result.Added) == 0 && len(result.Invited) == 0 {
		return result, nil
	}

	g.version++
	metadata := event.NewMetadata(actor.String(), "")
	for _, id := range result.Added {
		g.members = append(g.members, NewMember(id, RoleMember))
	}
	if len(result.Added) > 0 {
		g.record(NewMembersAdded(g.id, result.Added, actor, g.version, metadata))
	}
	g.pendingInvites = append(g.pendingInvites, result.Invited...)
	if len(result.Invited) > 0 {
		g.record(NewMembersInvited(g.id, result.Invited, actor, g.version, metadata))
	}
	return result, nil
}

// RemoveUnmigrated drops ids from the unmigrated records and returns those actually removed.
func (g *Group) RemoveUnmigrated(ids []uuid.UUID) []uuid.UUID {
	var removed []uuid.UUID
	kept := g.unmigrated[:0]
	for _, id := range g.unmigrated {
		if slices.Contains(ids, id) {
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	g.unmigrated = kept
	if len(removed) > 0 {
		g.version++
		g.record(NewUnmigratedPurged(g.id, removed, g.version, event.Metadata{}))
	}
	return removed
}

// SetAddPolicy changes who may add members.
func (g *Group) SetAddPolicy(policy AddPolicy) error {
	if policy != AddPolicyAnyMember && policy != AddPolicyAdminsOnly {
		return errs.ErrInvalidInput
	}
	g.addPolicy = policy
	return nil
}

// HasMember reports whether userID is a full member.
func (g *Group) HasMember(userID uuid.UUID) bool {
	_, ok := g.member(userID)
	return ok
}

// IsInvited reports whether userID has a pending invite.
func (g *Group) IsInvited(userID uuid.UUID) bool {
	return slices.Contains(g.pendingInvites, userID)
}

func (g *Group) member(userID uuid.UUID) (Member, bool) {
	for _, m := range g.members {
		if m.UserID() == userID {
			return m, true
		}
	}
	return Member{}, false
}

func (g *Group) record(evt event.DomainEvent) {
	g.uncommittedEvents = append(g.uncommittedEvents, evt)
}

func (g *Group) ID() uuid.UUID                  { return g.id }
func (g *Group) Title() string                  { return g.title }
func (g *Group) Format() Format                 { return g.format }
func (g *Group) AddPolicy() AddPolicy           { return g.addPolicy }
func (g *Group) Members() []Member              { return slices.Clone(g.members) }
func (g *Group) PendingInvites() []uuid.UUID    { return slices.Clone(g.pendingInvites) }
func (g *Group) UnmigratedMembers() []uuid.UUID { return slices.Clone(g.unmigrated) }
func (g *Group) CreatedAt() time.Time           { return g.createdAt }
func (g *Group) Version() int                   { return g.version }

// GetUncommittedEvents returns events recorded since the last save.
func (g *Group) GetUncommittedEvents() []event.DomainEvent {
	return slices.Clone(g.uncommittedEvents)
}

// MarkEventsAsCommitted clears recorded events after a successful save.
func (g *Group) MarkEventsAsCommitted() {
	g.uncommittedEvents = nil
}
