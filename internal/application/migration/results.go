package migration

import (
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// Result is the outcome of an AddSuggestedMembersCommand.
type Result struct {
	Classification group.Classification
	Outcome        group.AdditionOutcome
	Suggestions    group.PendingMemberSet
	Added          []uuid.UUID
	Invited        []Recipient
	Purged         []uuid.UUID
	Notice         string
	InviteSummary  InviteSummary
}

// Completion is the single value delivered for a dispatched command.
type Completion struct {
	Result Result
	Err    error
}

// SuggestionsResult is returned by ListSuggestionsUseCase.
type SuggestionsResult struct {
	GroupID     uuid.UUID   `json:"group_id"`
	Suggestions []Recipient `json:"suggestions"`
	Prompt      Prompt      `json:"prompt"`
}

// MigrationResult lists the members a migration could not carry over, with
// the prompt offering to re-add them.
type MigrationResult struct {
	GroupID    uuid.UUID   `json:"group_id"`
	Unmigrated []Recipient `json:"unmigrated"`
	Prompt     Prompt      `json:"prompt"`
}
