package group

import (
	"github.com/lllypuk/regroup/internal/domain/event"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// Event types
const (
	EventTypeMembersAdded       = "group.members_added"
	EventTypeMembersInvited     = "group.members_invited"
	EventTypeUnmigratedPurged   = "group.unmigrated_purged"
	EventTypeAdditionClassified = "group.addition_classified"
	EventTypeGroupMigrated      = "group.migrated"

	aggregateType = "Group"
)

// MembersAdded is recorded when recipients become full members.
type MembersAdded struct {
	event.BaseEvent

	UserIDs []uuid.UUID `json:"user_ids"`
	AddedBy uuid.UUID   `json:"added_by"`
}

// NewMembersAdded creates a MembersAdded event.
func NewMembersAdded(groupID uuid.UUID, ids []uuid.UUID, addedBy uuid.UUID, version int, metadata event.Metadata) *MembersAdded {
	return &MembersAdded{
		BaseEvent: event.NewBaseEvent(EventTypeMembersAdded, groupID.String(), aggregateType, version, metadata),
		UserIDs:   ids,
		AddedBy:   addedBy,
	}
}

// MembersInvited is recorded when recipients could only be invited.
type MembersInvited struct {
	event.BaseEvent

	UserIDs   []uuid.UUID `json:"user_ids"`
	InvitedBy uuid.UUID   `json:"invited_by"`
}

// NewMembersInvited creates a MembersInvited event.
func NewMembersInvited(groupID uuid.UUID, ids []uuid.UUID, invitedBy uuid.UUID, version int, metadata event.Metadata) *MembersInvited {
	return &MembersInvited{
		BaseEvent: event.NewBaseEvent(EventTypeMembersInvited, groupID.String(), aggregateType, version, metadata),
		UserIDs:   ids,
		InvitedBy: invitedBy,
	}
}

// UnmigratedPurged is recorded when pending migration records are dropped.
type UnmigratedPurged struct {
	event.BaseEvent

	UserIDs []uuid.UUID `json:"user_ids"`
}

// NewUnmigratedPurged creates an UnmigratedPurged event.
func NewUnmigratedPurged(groupID uuid.UUID, ids []uuid.UUID, version int, metadata event.Metadata) *UnmigratedPurged {
	return &UnmigratedPurged{
		BaseEvent: event.NewBaseEvent(EventTypeUnmigratedPurged, groupID.String(), aggregateType, version, metadata),
		UserIDs:   ids,
	}
}

// GroupMigrated is recorded when a legacy group moves to the current format.
type GroupMigrated struct {
	event.BaseEvent

	Unmigrated []uuid.UUID `json:"unmigrated"`
	MigratedBy uuid.UUID   `json:"migrated_by"`
}

// NewGroupMigrated creates a GroupMigrated event.
func NewGroupMigrated(groupID uuid.UUID, unmigrated []uuid.UUID, migratedBy uuid.UUID, version int, metadata event.Metadata) *GroupMigrated {
	return &GroupMigrated{
		BaseEvent:  event.NewBaseEvent(EventTypeGroupMigrated, groupID.String(), aggregateType, version, metadata),
		Unmigrated: unmigrated,
		MigratedBy: migratedBy,
	}
}

// AdditionClassified carries the classification of an add attempt to the notifier.
type AdditionClassified struct {
	event.BaseEvent

	Category string `json:"category"`
	Reason   string `json:"reason,omitempty"`
	Count    int    `json:"count"`
	Notice   string `json:"notice,omitempty"`
}

// NewAdditionClassified creates an AdditionClassified event.
func NewAdditionClassified(
	groupID uuid.UUID,
	c Classification,
	reason string,
	count int,
	notice string,
	metadata event.Metadata,
) *AdditionClassified {
	return &AdditionClassified{
		BaseEvent: event.NewBaseEvent(EventTypeAdditionClassified, groupID.String(), aggregateType, 0, metadata),
		Category:  c.Category.String(),
		Reason:    reason,
		Count:     count,
		Notice:    notice,
	}
}
