package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/uuid"
	"github.com/lllypuk/regroup/internal/infrastructure/httpserver"
	"github.com/lllypuk/regroup/internal/middleware"
)

// GroupHandler serves group format changes.
type GroupHandler struct {
	migrate appcore.UseCase[migration.MigrateGroupCommand, migration.MigrationResult]
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(migrate appcore.UseCase[migration.MigrateGroupCommand, migration.MigrationResult]) *GroupHandler {
	return &GroupHandler{migrate: migrate}
}

// RegisterRoutes registers the group routes with the router.
func (h *GroupHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().POST("/groups/:group_id/migrate", h.MigrateGroup)
}

// MigrateGroup handles POST /api/v1/groups/:group_id/migrate.
func (h *GroupHandler) MigrateGroup(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
	}

	groupID, err := uuid.ParseUUID(c.Param("group_id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_GROUP_ID", "Invalid group ID format")
	}

	result, err := h.migrate.Execute(c.Request().Context(), migration.MigrateGroupCommand{
		GroupID:     groupID,
		RequestedBy: userID,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	middleware.AddLogAttrs(c, slog.Int("unmigrated", len(result.Unmigrated)))
	return httpserver.RespondOK(c, result)
}
