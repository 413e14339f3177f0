package httpserver_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/infrastructure/httpserver"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httpserver.Response {
	t.Helper()
	var resp httpserver.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestRespondOK(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, httpserver.RespondOK(c, map[string]string{"notice": ""}))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestRespondError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", errs.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"unauthorized", appcore.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not a member", fmt.Errorf("wrap: %w", group.ErrNotAMember), http.StatusForbidden, "NOT_A_MEMBER"},
		{"insufficient rights", group.ErrInsufficientRights, http.StatusForbidden, "FORBIDDEN"},
		{"group not found", group.ErrGroupNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"generic not found", errs.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"no suggestions", migration.ErrNoSuggestions, http.StatusUnprocessableEntity, "NO_SUGGESTIONS"},
		{"not pending", fmt.Errorf("%w: x", migration.ErrNotPending), http.StatusUnprocessableEntity, "NOT_PENDING"},
		{"not suitable", group.ErrMembershipNotSuitable, http.StatusUnprocessableEntity, "MEMBERSHIP_NOT_SUITABLE"},
		{"change failed", group.ErrChangeFailed, http.StatusUnprocessableEntity, "CHANGE_FAILED"},
		{"already migrated", fmt.Errorf("%w: group is v2", group.ErrAlreadyMigrated), http.StatusConflict, "ALREADY_MIGRATED"},
		{"busy", group.ErrChangeBusy, http.StatusConflict, "CHANGE_BUSY"},
		{"version conflict", errs.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"network", group.ErrNetwork, http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"dispatcher closed", migration.ErrDispatcherClosed, http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()

			require.NoError(t, httpserver.RespondError(c, tt.err))

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestRespondError_ValidationErrorCarriesField(t *testing.T) {
	c, rec := newContext()

	err := fmt.Errorf("bad request: %w", appcore.NewValidationError("member_ids", "must not be empty"))
	require.NoError(t, httpserver.RespondError(c, err))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Equal(t, "member_ids", resp.Error.Field)
	assert.Equal(t, "must not be empty", resp.Error.Message)
}

func TestRespondErrorWithCode(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, httpserver.RespondErrorWithCode(c, http.StatusGatewayTimeout, "TIMEOUT", "too slow"))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TIMEOUT", resp.Error.Code)
}
