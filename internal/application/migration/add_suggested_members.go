// Package migration re-adds members dropped when a legacy group was migrated.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/domain/event"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

const tracerName = "migration"

// Option configures an AddSuggestedMembersUseCase.
type Option func(*AddSuggestedMembersUseCase)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(uc *AddSuggestedMembersUseCase) {
		if logger != nil {
			uc.logger = logger
		}
	}
}

// WithTracerProvider sets the provider spans are started from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(uc *AddSuggestedMembersUseCase) {
		if tp != nil {
			uc.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithRecorder sets the outcome recorder.
func WithRecorder(recorder OutcomeRecorder) Option {
	return func(uc *AddSuggestedMembersUseCase) {
		if recorder != nil {
			uc.recorder = recorder
		}
	}
}

// AddSuggestedMembersUseCase adds pending members back to a group and decides
// what happens to their pending records.
type AddSuggestedMembersUseCase struct {
	membership MembershipService
	pending    PendingStore
	directory  RecipientDirectory
	eventBus   event.Bus
	recorder   OutcomeRecorder
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewAddSuggestedMembersUseCase creates a new AddSuggestedMembersUseCase.
func NewAddSuggestedMembersUseCase(
	membership MembershipService,
	pending PendingStore,
	directory RecipientDirectory,
	eventBus event.Bus,
	opts ...Option,
) *AddSuggestedMembersUseCase {
	uc := &AddSuggestedMembersUseCase{
		membership: membership,
		pending:    pending,
		directory:  directory,
		eventBus:   eventBus,
		recorder:   noopRecorder{},
		tracer:     otel.Tracer(tracerName),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs one add attempt. The returned Result carries the classification
// whenever the attempt was made, even if the follow-up purge failed.
func (uc *AddSuggestedMembersUseCase) Execute(ctx context.Context, cmd AddSuggestedMembersCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	ctx, span := uc.tracer.Start(ctx, "migration.add_suggested_members",
		trace.WithAttributes(
			attribute.String("group.id", cmd.GroupID.String()),
			attribute.String("user.id", cmd.RequestedBy.String()),
		),
	)
	defer span.End()

	suggestions, err := uc.suggestions(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))

	started := time.Now()
	added, addErr := uc.membership.AddMembers(ctx, cmd.GroupID, cmd.RequestedBy, suggestions)
	outcome := group.OutcomeFromError(addErr)
	classification, err := group.Classify(outcome)
	if err != nil {
		return Result{}, err
	}

	reason := outcomeReason(outcome)
	result := Result{
		Classification: classification,
		Outcome:        outcome,
		Suggestions:    suggestions,
		Added:          added.Added,
		Notice:         Notice(classification.Category, len(suggestions)),
	}
	uc.logOutcome(ctx, cmd, classification, reason, addErr)

	var purgeErr error
	if classification.ShouldPurgePendingRecords {
		purged, removeErr := uc.pending.RemoveUnmigrated(ctx, cmd.GroupID, suggestions)
		if removeErr != nil {
			uc.logger.ErrorContext(ctx, "failed to purge pending records",
				slog.String("group_id", cmd.GroupID.String()),
				slog.String("error", removeErr.Error()),
			)
			purgeErr = fmt.Errorf("%w: %w", ErrPurgeFailed, removeErr)
		} else {
			result.Purged = purged
		}
	}

	if len(added.Invited) > 0 {
		result.Invited = uc.recipients(ctx, added.Invited)
		result.InviteSummary = SummarizeInvites(result.Invited)
	}

	uc.publish(ctx, cmd, classification, reason, len(suggestions), result.Notice)
	uc.recorder.RecordOutcome(classification, reason, len(suggestions), time.Since(started))

	span.SetAttributes(
		attribute.String("outcome.category", classification.Category.String()),
		attribute.Bool("outcome.purge", classification.ShouldPurgePendingRecords),
	)
	if purgeErr != nil {
		span.RecordError(purgeErr)
		span.SetStatus(codes.Error, purgeErr.Error())
	}
	return result, purgeErr
}

func (uc *AddSuggestedMembersUseCase) validate(cmd AddSuggestedMembersCommand) error {
	if err := appcore.ValidateUUID("groupID", cmd.GroupID); err != nil {
		return err
	}
	if err := appcore.ValidateUUID("requestedBy", cmd.RequestedBy); err != nil {
		return err
	}
	return appcore.ValidateUUIDList("suggestions", cmd.Suggestions, appcore.MaxBatchSize)
}

// suggestions returns the explicit list from cmd or, when empty, every pending member.
func (uc *AddSuggestedMembersUseCase) suggestions(ctx context.Context, cmd AddSuggestedMembersCommand) (group.PendingMemberSet, error) {
	pending, err := uc.pending.UnmigratedMembers(ctx, cmd.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending members: %w", err)
	}
	if len(cmd.Suggestions) == 0 {
		if len(pending) == 0 {
			return nil, ErrNoSuggestions
		}
		return group.PendingMemberSet(pending), nil
	}

	requested := uuid.Unique(cmd.Suggestions)
	for _, id := range requested {
		if !slices.Contains(pending, id) {
			return nil, fmt.Errorf("%w: %s", ErrNotPending, id)
		}
	}
	return group.PendingMemberSet(requested), nil
}

func (uc *AddSuggestedMembersUseCase) recipients(ctx context.Context, ids []uuid.UUID) []Recipient {
	resolved, err := uc.directory.Resolve(ctx, ids)
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to resolve invited recipients",
			slog.Int("count", len(ids)),
			slog.String("error", err.Error()),
		)
	}
	return fillRecipients(ids, resolved)
}

func (uc *AddSuggestedMembersUseCase) publish(
	ctx context.Context,
	cmd AddSuggestedMembersCommand,
	c group.Classification,
	reason string,
	count int,
	notice string,
) {
	if uc.eventBus == nil {
		return
	}
	metadata := event.NewMetadata(cmd.RequestedBy.String(), appcore.GetCorrelationID(ctx))
	evt := group.NewAdditionClassified(cmd.GroupID, c, reason, count, notice, metadata)
	if err := uc.eventBus.Publish(ctx, evt); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish addition outcome",
			slog.String("group_id", cmd.GroupID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *AddSuggestedMembersUseCase) logOutcome(
	ctx context.Context,
	cmd AddSuggestedMembersCommand,
	c group.Classification,
	reason string,
	addErr error,
) {
	attrs := []any{
		slog.String("group_id", cmd.GroupID.String()),
		slog.String("category", c.Category.String()),
		slog.Bool("purge", c.ShouldPurgePendingRecords),
	}
	switch c.Category {
	case group.Succeeded:
		uc.logger.InfoContext(ctx, "suggested members added", attrs...)
	case group.RetryableError:
		attrs = append(attrs, slog.String("reason", reason), slog.String("error", addErr.Error()))
		uc.logger.WarnContext(ctx, "adding suggested members failed, retry possible", attrs...)
	default:
		attrs = append(attrs, slog.String("reason", reason), slog.String("error", addErr.Error()))
		uc.logger.WarnContext(ctx, "adding suggested members failed permanently", attrs...)
	}
}

func outcomeReason(outcome group.AdditionOutcome) string {
	switch o := outcome.(type) {
	case group.TransientFailure:
		return o.Reason()
	case group.PermanentFailure:
		return o.Reason()
	default:
		return ""
	}
}

// fillRecipients keeps the order of ids and falls back to the id for unresolved names.
func fillRecipients(ids []uuid.UUID, resolved []Recipient) []Recipient {
	names := make(map[uuid.UUID]string, len(resolved))
	for _, r := range resolved {
		names[r.ID] = r.DisplayName
	}
	out := make([]Recipient, 0, len(ids))
	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = id.String()
		}
		out = append(out, Recipient{ID: id, DisplayName: name})
	}
	return out
}
