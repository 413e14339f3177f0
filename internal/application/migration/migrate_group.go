package migration

import (
	"context"
	"fmt"

	"github.com/lllypuk/regroup/internal/application/appcore"
)

// MigrateGroupUseCase converts a legacy group and reports who was left behind.
type MigrateGroupUseCase struct {
	migrator  GroupMigrator
	directory RecipientDirectory
}

// NewMigrateGroupUseCase creates a new MigrateGroupUseCase.
func NewMigrateGroupUseCase(migrator GroupMigrator, directory RecipientDirectory) *MigrateGroupUseCase {
	return &MigrateGroupUseCase{migrator: migrator, directory: directory}
}

// Execute migrates the group. The unmigrated members become the suggestions
// served by ListSuggestionsUseCase.
func (uc *MigrateGroupUseCase) Execute(ctx context.Context, cmd MigrateGroupCommand) (MigrationResult, error) {
	if err := appcore.ValidateUUID("groupID", cmd.GroupID); err != nil {
		return MigrationResult{}, fmt.Errorf("validation failed: %w", err)
	}
	if err := appcore.ValidateUUID("requestedBy", cmd.RequestedBy); err != nil {
		return MigrationResult{}, fmt.Errorf("validation failed: %w", err)
	}

	dropped, err := uc.migrator.MigrateGroup(ctx, cmd.GroupID, cmd.RequestedBy)
	if err != nil {
		return MigrationResult{}, err
	}

	unmigrated := []Recipient{}
	if len(dropped) > 0 {
		// The group is already migrated; unresolved names fall back to IDs.
		resolved, resolveErr := uc.directory.Resolve(ctx, dropped)
		if resolveErr != nil {
			resolved = nil
		}
		unmigrated = fillRecipients(dropped, resolved)
	}

	return MigrationResult{
		GroupID:    cmd.GroupID,
		Unmigrated: unmigrated,
		Prompt:     PromptFor(len(unmigrated)),
	}, nil
}
