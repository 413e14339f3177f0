// Package httphandler exposes the migration use cases over HTTP.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/uuid"
	"github.com/lllypuk/regroup/internal/infrastructure/httpserver"
	"github.com/lllypuk/regroup/internal/middleware"
)

// DefaultWaitTimeout bounds how long a request waits for a dispatched attempt.
const DefaultWaitTimeout = 10 * time.Second

// AddSuggestedMembersRequest is the body of POST /groups/:group_id/suggestions/add.
// An empty member list adds every pending member.
type AddSuggestedMembersRequest struct {
	MemberIDs []string `json:"member_ids"`
}

// AddSuggestedMembersResponse reports a classified attempt.
type AddSuggestedMembersResponse struct {
	Category      string                   `json:"category"`
	Reason        string                   `json:"reason,omitempty"`
	ShouldPurge   bool                     `json:"should_purge_pending_records"`
	Added         []uuid.UUID              `json:"added"`
	Invited       []migration.Recipient    `json:"invited"`
	Purged        []uuid.UUID              `json:"purged"`
	Notice        string                   `json:"notice,omitempty"`
	InviteSummary *migration.InviteSummary `json:"invite_summary,omitempty"`
	PurgeFailed   bool                     `json:"purge_failed,omitempty"`
}

// PendingResponse is returned when an attempt outlives the wait timeout.
type PendingResponse struct {
	Status string `json:"status"`
}

// AdditionDispatcher runs add attempts in the background.
// Declared on the consumer side.
type AdditionDispatcher interface {
	Dispatch(ctx context.Context, cmd migration.AddSuggestedMembersCommand) <-chan migration.Completion
}

// MigrationHandler serves the suggested-member endpoints.
type MigrationHandler struct {
	dispatcher  AdditionDispatcher
	suggestions appcore.UseCase[migration.ListSuggestionsQuery, migration.SuggestionsResult]
	waitTimeout time.Duration
	logger      *slog.Logger
}

// NewMigrationHandler creates a new MigrationHandler.
func NewMigrationHandler(
	dispatcher AdditionDispatcher,
	suggestions appcore.UseCase[migration.ListSuggestionsQuery, migration.SuggestionsResult],
	waitTimeout time.Duration,
	logger *slog.Logger,
) *MigrationHandler {
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MigrationHandler{
		dispatcher:  dispatcher,
		suggestions: suggestions,
		waitTimeout: waitTimeout,
		logger:      logger,
	}
}

// RegisterRoutes registers the migration routes with the router.
func (h *MigrationHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().GET("/groups/:group_id/suggestions", h.ListSuggestions)
	r.Auth().POST("/groups/:group_id/suggestions/add", h.AddSuggestedMembers)
}

// ListSuggestions handles GET /api/v1/groups/:group_id/suggestions.
func (h *MigrationHandler) ListSuggestions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
	}

	groupID, err := uuid.ParseUUID(c.Param("group_id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_GROUP_ID", "Invalid group ID format")
	}

	result, err := h.suggestions.Execute(c.Request().Context(), migration.ListSuggestionsQuery{
		GroupID:     groupID,
		RequestedBy: userID,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	return httpserver.RespondOK(c, result)
}

// AddSuggestedMembers handles POST /api/v1/groups/:group_id/suggestions/add.
// Classified failures are reported with 200; the category tells the client
// whether to offer a retry.
func (h *MigrationHandler) AddSuggestedMembers(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
	}

	groupID, err := uuid.ParseUUID(c.Param("group_id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_GROUP_ID", "Invalid group ID format")
	}

	var req AddSuggestedMembersRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}
	if len(req.MemberIDs) > appcore.MaxBatchSize {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", "Too many member IDs")
	}
	memberIDs, err := uuid.ParseList(req.MemberIDs)
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid member ID format")
	}

	ctx := c.Request().Context()
	done := h.dispatcher.Dispatch(ctx, migration.AddSuggestedMembersCommand{
		GroupID:     groupID,
		Suggestions: memberIDs,
		RequestedBy: userID,
	})

	timer := time.NewTimer(h.waitTimeout)
	defer timer.Stop()

	select {
	case completion := <-done:
		return h.respondCompletion(c, completion)
	case <-timer.C:
		h.logger.WarnContext(ctx, "add attempt still running after wait timeout",
			slog.String("group_id", groupID.String()),
			slog.Duration("wait_timeout", h.waitTimeout),
		)
		middleware.AddLogAttrs(c, slog.String("category", "pending"))
		return c.JSON(http.StatusAccepted, httpserver.Response{
			Success: true,
			Data:    PendingResponse{Status: "pending"},
		})
	case <-ctx.Done():
		// The client is gone. The attempt keeps running on the worker.
		return ctx.Err()
	}
}

func (h *MigrationHandler) respondCompletion(c echo.Context, completion migration.Completion) error {
	purgeFailed := false
	if completion.Err != nil {
		if !errors.Is(completion.Err, migration.ErrPurgeFailed) {
			return httpserver.RespondError(c, completion.Err)
		}
		h.logger.WarnContext(c.Request().Context(), "pending records not purged",
			slog.String("error", completion.Err.Error()),
		)
		purgeFailed = true
	}
	resp := ToAddSuggestedMembersResponse(completion.Result, purgeFailed)
	middleware.AddLogAttrs(c,
		slog.String("category", resp.Category),
		slog.String("reason", resp.Reason),
		slog.Int("suggestions", len(completion.Result.Suggestions)),
	)
	return httpserver.RespondOK(c, resp)
}

// ToAddSuggestedMembersResponse converts a use case result into its wire form.
func ToAddSuggestedMembersResponse(result migration.Result, purgeFailed bool) AddSuggestedMembersResponse {
	resp := AddSuggestedMembersResponse{
		Category:    result.Classification.Category.String(),
		ShouldPurge: result.Classification.ShouldPurgePendingRecords,
		Added:       nonNil(result.Added),
		Invited:     result.Invited,
		Purged:      nonNil(result.Purged),
		Notice:      result.Notice,
		PurgeFailed: purgeFailed,
	}
	if resp.Invited == nil {
		resp.Invited = []migration.Recipient{}
	}
	if reasoned, ok := result.Outcome.(interface{ Reason() string }); ok {
		resp.Reason = reasoned.Reason()
	}
	if !result.InviteSummary.Empty() {
		summary := result.InviteSummary
		resp.InviteSummary = &summary
	}
	return resp
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
