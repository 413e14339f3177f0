package migration

import (
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// AddSuggestedMembersCommand re-adds members dropped during migration.
// An empty Suggestions list means every pending member of the group.
type AddSuggestedMembersCommand struct {
	GroupID     uuid.UUID
	Suggestions group.PendingMemberSet
	RequestedBy uuid.UUID
}

// CommandName implements appcore.Command.
func (AddSuggestedMembersCommand) CommandName() string { return "AddSuggestedMembers" }

// ListSuggestionsQuery lists the pending members of a group.
type ListSuggestionsQuery struct {
	GroupID     uuid.UUID
	RequestedBy uuid.UUID
}

// QueryName implements appcore.Query.
func (ListSuggestionsQuery) QueryName() string { return "ListSuggestions" }

// MigrateGroupCommand moves a legacy group to the current format.
type MigrateGroupCommand struct {
	GroupID     uuid.UUID
	RequestedBy uuid.UUID
}

// CommandName implements appcore.Command.
func (MigrateGroupCommand) CommandName() string { return "MigrateGroup" }
