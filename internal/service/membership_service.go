// Package service composes repositories and domain rules into the services
// used by the application layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/event"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// GroupRepository loads and stores group aggregates.
// Save fails with errs.ErrConcurrentModification when the stored version differs from expectedVersion.
type GroupRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*group.Group, error)
	Save(ctx context.Context, g *group.Group, expectedVersion int) error
}

// EligibilityChecker reports how each user can enter a v2 group.
type EligibilityChecker interface {
	Eligibility(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]group.Eligibility, error)
}

// MembershipService applies membership changes to stored groups.
// A group accepts one change at a time per process; a second concurrent
// change fails with group.ErrChangeBusy.
type MembershipService struct {
	repo        GroupRepository
	eligibility EligibilityChecker
	eventBus    event.Bus
	logger      *slog.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(
	repo GroupRepository,
	eligibility EligibilityChecker,
	eventBus event.Bus,
	logger *slog.Logger,
) *MembershipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MembershipService{
		repo:        repo,
		eligibility: eligibility,
		eventBus:    eventBus,
		logger:      logger,
		inFlight:    make(map[uuid.UUID]struct{}),
	}
}

// AddMembers adds ids to the group on behalf of actor.
func (s *MembershipService) AddMembers(
	ctx context.Context,
	groupID, actor uuid.UUID,
	ids []uuid.UUID,
) (group.AddResult, error) {
	if !s.begin(groupID) {
		return group.AddResult{}, group.ErrChangeBusy
	}
	defer s.end(groupID)

	g, err := s.repo.Load(ctx, groupID)
	if err != nil {
		return group.AddResult{}, err
	}
	expectedVersion := g.Version()

	eligibility, err := s.eligibility.Eligibility(ctx, ids)
	if err != nil {
		return group.AddResult{}, fmt.Errorf("failed to check eligibility: %w", err)
	}

	result, err := g.AddMembers(actor, ids, func(id uuid.UUID) group.Eligibility {
		if e, ok := eligibility[id]; ok {
			return e
		}
		return group.NotEligible
	})
	if err != nil {
		return group.AddResult{}, err
	}
	if g.Version() == expectedVersion {
		return result, nil
	}

	if err = s.repo.Save(ctx, g, expectedVersion); err != nil {
		return group.AddResult{}, fmt.Errorf("failed to save group: %w", err)
	}

	s.publish(ctx, g)
	return result, nil
}

// MigrateGroup moves a legacy group to the current format on behalf of actor.
// Members that cannot join become unmigrated records and are returned.
func (s *MembershipService) MigrateGroup(ctx context.Context, groupID, actor uuid.UUID) ([]uuid.UUID, error) {
	if !s.begin(groupID) {
		return nil, group.ErrChangeBusy
	}
	defer s.end(groupID)

	g, err := s.repo.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expectedVersion := g.Version()

	ids := make([]uuid.UUID, 0, len(g.Members()))
	for _, m := range g.Members() {
		ids = append(ids, m.UserID())
	}
	eligibility, err := s.eligibility.Eligibility(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check eligibility: %w", err)
	}

	dropped, err := g.MigrateFromV1(actor, func(id uuid.UUID) group.Eligibility {
		if e, ok := eligibility[id]; ok {
			return e
		}
		return group.NotEligible
	})
	if err != nil {
		return nil, err
	}

	if err = s.repo.Save(ctx, g, expectedVersion); err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}

	s.logger.InfoContext(ctx, "group migrated",
		slog.String("group_id", groupID.String()),
		slog.Int("members", len(ids)-len(dropped)),
		slog.Int("unmigrated", len(dropped)),
	)
	s.publish(ctx, g)
	return dropped, nil
}

func (s *MembershipService) publish(ctx context.Context, g *group.Group) {
	if s.eventBus == nil {
		g.MarkEventsAsCommitted()
		return
	}
	for _, evt := range g.GetUncommittedEvents() {
		if err := s.eventBus.Publish(ctx, evt); err != nil {
			s.logger.WarnContext(ctx, "failed to publish group event",
				slog.String("event_type", evt.EventType()),
				slog.String("group_id", g.ID().String()),
				slog.String("error", err.Error()),
			)
		}
	}
	g.MarkEventsAsCommitted()
}

func (s *MembershipService) begin(groupID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[groupID]; busy {
		return false
	}
	s.inFlight[groupID] = struct{}{}
	return true
}

func (s *MembershipService) end(groupID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, groupID)
}

var (
	_ migration.MembershipService = (*MembershipService)(nil)
	_ migration.GroupMigrator     = (*MembershipService)(nil)
)
