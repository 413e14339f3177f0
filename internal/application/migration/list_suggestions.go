package migration

import (
	"context"
	"fmt"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/domain/group"
)

// ListSuggestionsUseCase lists the members that can be re-added to a group.
type ListSuggestionsUseCase struct {
	groups    GroupReader
	pending   PendingStore
	directory RecipientDirectory
}

// NewListSuggestionsUseCase creates a new ListSuggestionsUseCase.
func NewListSuggestionsUseCase(groups GroupReader, pending PendingStore, directory RecipientDirectory) *ListSuggestionsUseCase {
	return &ListSuggestionsUseCase{groups: groups, pending: pending, directory: directory}
}

// Execute returns the pending members of the group with the matching prompt.
func (uc *ListSuggestionsUseCase) Execute(ctx context.Context, query ListSuggestionsQuery) (SuggestionsResult, error) {
	if err := appcore.ValidateUUID("groupID", query.GroupID); err != nil {
		return SuggestionsResult{}, fmt.Errorf("validation failed: %w", err)
	}
	if err := appcore.ValidateUUID("requestedBy", query.RequestedBy); err != nil {
		return SuggestionsResult{}, fmt.Errorf("validation failed: %w", err)
	}

	isMember, err := uc.groups.IsMember(ctx, query.GroupID, query.RequestedBy)
	if err != nil {
		return SuggestionsResult{}, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return SuggestionsResult{}, group.ErrNotAMember
	}

	ids, err := uc.pending.UnmigratedMembers(ctx, query.GroupID)
	if err != nil {
		return SuggestionsResult{}, fmt.Errorf("failed to load pending members: %w", err)
	}

	suggestions := []Recipient{}
	if len(ids) > 0 {
		resolved, resolveErr := uc.directory.Resolve(ctx, ids)
		if resolveErr != nil {
			return SuggestionsResult{}, fmt.Errorf("failed to resolve recipients: %w", resolveErr)
		}
		suggestions = fillRecipients(ids, resolved)
	}

	return SuggestionsResult{
		GroupID:     query.GroupID,
		Suggestions: suggestions,
		Prompt:      PromptFor(len(suggestions)),
	}, nil
}
