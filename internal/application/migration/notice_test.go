package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

func TestNotice(t *testing.T) {
	tests := []struct {
		category group.Category
		count    int
		want     string
	}{
		{group.Succeeded, 1, ""},
		{group.Succeeded, 3, ""},
		{group.RetryableError, 1, "Failed to add member. Try again later."},
		{group.RetryableError, 2, "Failed to add members. Try again later."},
		{group.UnrecoverableError, 1, "Cannot add member."},
		{group.UnrecoverableError, 5, "Cannot add members."},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, migration.Notice(tt.category, tt.count))
		})
	}
}

func TestPromptFor(t *testing.T) {
	assert.Equal(t, migration.Prompt{}, migration.PromptFor(0))

	one := migration.PromptFor(1)
	assert.Equal(t, "Add member?", one.Title)
	assert.Equal(t, "Add member", one.PositiveButton)
	assert.Contains(t, one.Message, "This member")

	many := migration.PromptFor(4)
	assert.Equal(t, "Add members?", many.Title)
	assert.Equal(t, "Add members", many.PositiveButton)
	assert.Contains(t, many.Message, "These members")
}

func TestSummarizeInvites(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		summary := migration.SummarizeInvites(nil)
		assert.True(t, summary.Empty())
		assert.Empty(t, summary.Message)
	})

	t.Run("single recipient", func(t *testing.T) {
		summary := migration.SummarizeInvites([]migration.Recipient{{ID: uuid.NewUUID(), DisplayName: "Carol"}})
		assert.False(t, summary.Empty())
		assert.Equal(t, "Invitation sent", summary.Title)
		assert.Equal(t,
			"You can't add Carol automatically. They have been invited to join and will not see group messages until they accept.",
			summary.Message)
		assert.Nil(t, summary.Pending)
	})

	t.Run("several recipients", func(t *testing.T) {
		invited := []migration.Recipient{
			{ID: uuid.NewUUID(), DisplayName: "Carol"},
			{ID: uuid.NewUUID(), DisplayName: "Dave"},
			{ID: uuid.NewUUID(), DisplayName: "Erin"},
		}
		summary := migration.SummarizeInvites(invited)
		assert.Equal(t, "3 invitations sent", summary.Title)
		assert.Equal(t,
			"You can't add these users automatically. They have been invited to join and will not see group messages until they accept.",
			summary.Message)
		assert.Equal(t, invited, summary.Pending)

		invited[0].DisplayName = "changed"
		assert.Equal(t, "Carol", summary.Pending[0].DisplayName)
	})
}
