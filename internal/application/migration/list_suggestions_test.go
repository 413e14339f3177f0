package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

func TestListSuggestions(t *testing.T) {
	t.Run("returns pending members with prompt", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.suggestions.Execute(context.Background(), migration.ListSuggestionsQuery{
			GroupID:     f.groupID,
			RequestedBy: f.admin,
		})
		require.NoError(t, err)

		assert.Equal(t, f.groupID, result.GroupID)
		require.Len(t, result.Suggestions, 2)
		assert.Equal(t, "Alice", result.Suggestions[0].DisplayName)
		assert.Equal(t, "Bob", result.Suggestions[1].DisplayName)
		assert.Equal(t, "Add members?", result.Prompt.Title)
	})

	t.Run("empty group has no prompt", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.repo.RemoveUnmigrated(context.Background(), f.groupID, f.pending)
		require.NoError(t, err)

		result, err := f.suggestions.Execute(context.Background(), migration.ListSuggestionsQuery{
			GroupID:     f.groupID,
			RequestedBy: f.admin,
		})
		require.NoError(t, err)
		assert.NotNil(t, result.Suggestions)
		assert.Empty(t, result.Suggestions)
		assert.Equal(t, migration.Prompt{}, result.Prompt)
	})

	t.Run("non member is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.suggestions.Execute(context.Background(), migration.ListSuggestionsQuery{
			GroupID:     f.groupID,
			RequestedBy: uuid.NewUUID(),
		})
		require.ErrorIs(t, err, group.ErrNotAMember)
	})

	t.Run("unknown group", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.suggestions.Execute(context.Background(), migration.ListSuggestionsQuery{
			GroupID:     uuid.NewUUID(),
			RequestedBy: f.admin,
		})
		require.ErrorIs(t, err, group.ErrGroupNotFound)
	})

	t.Run("directory failure", func(t *testing.T) {
		f := newFixture(t)
		f.directory.FailWith(errs.ErrUnavailable)

		_, err := f.suggestions.Execute(context.Background(), migration.ListSuggestionsQuery{
			GroupID:     f.groupID,
			RequestedBy: f.admin,
		})
		require.ErrorIs(t, err, errs.ErrUnavailable)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.suggestions.Execute(context.Background(), migration.ListSuggestionsQuery{GroupID: f.groupID})
		require.ErrorIs(t, err, appcore.ErrValidationFailed)
	})
}
