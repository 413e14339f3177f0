package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/group"
)

// Response represents a standard API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents an error in the API response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// RespondJSON sends a successful JSON response.
func RespondJSON(c echo.Context, code int, data any) error {
	return c.JSON(code, Response{
		Success: true,
		Data:    data,
	})
}

// RespondOK sends a 200 OK response with data.
func RespondOK(c echo.Context, data any) error {
	return RespondJSON(c, http.StatusOK, data)
}

// RespondError sends an error JSON response based on the error type.
func RespondError(c echo.Context, err error) error {
	statusCode, apiError := mapError(err)
	return c.JSON(statusCode, Response{
		Success: false,
		Error:   apiError,
	})
}

// RespondErrorWithCode sends an error JSON response with a specific HTTP status code.
func RespondErrorWithCode(c echo.Context, code int, errorCode, message string) error {
	return c.JSON(code, Response{
		Success: false,
		Error: &Error{
			Code:    errorCode,
			Message: message,
		},
	})
}

// mapError maps domain and application errors to HTTP status codes and API errors.
//
//nolint:cyclop,funlen // flat switch over the error taxonomy
func mapError(err error) (int, *Error) {
	var validationErr *appcore.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, &Error{
			Code:    "VALIDATION_FAILED",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		}
	}

	switch {
	case errors.Is(err, errs.ErrInvalidInput), errors.Is(err, appcore.ErrValidationFailed):
		return http.StatusBadRequest, &Error{
			Code:    "INVALID_INPUT",
			Message: "Invalid input data",
		}

	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, appcore.ErrUnauthorized):
		return http.StatusUnauthorized, &Error{
			Code:    "UNAUTHORIZED",
			Message: "Authentication required",
		}

	case errors.Is(err, group.ErrNotAMember):
		return http.StatusForbidden, &Error{
			Code:    "NOT_A_MEMBER",
			Message: "You are not a member of this group",
		}

	case errors.Is(err, group.ErrInsufficientRights),
		errors.Is(err, errs.ErrForbidden),
		errors.Is(err, appcore.ErrForbidden):
		return http.StatusForbidden, &Error{
			Code:    "FORBIDDEN",
			Message: "Access denied",
		}

	case errors.Is(err, group.ErrGroupNotFound), errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, &Error{
			Code:    "NOT_FOUND",
			Message: "The requested group was not found",
		}

	case errors.Is(err, migration.ErrNotPending):
		return http.StatusUnprocessableEntity, &Error{
			Code:    "NOT_PENDING",
			Message: "Only pending members of the group can be added",
		}

	case errors.Is(err, migration.ErrNoSuggestions):
		return http.StatusUnprocessableEntity, &Error{
			Code:    "NO_SUGGESTIONS",
			Message: "There are no members to add",
		}

	case errors.Is(err, group.ErrMembershipNotSuitable):
		return http.StatusUnprocessableEntity, &Error{
			Code:    "MEMBERSHIP_NOT_SUITABLE",
			Message: "Membership is not suitable for this group",
		}

	case errors.Is(err, group.ErrChangeFailed):
		return http.StatusUnprocessableEntity, &Error{
			Code:    "CHANGE_FAILED",
			Message: "The group change was rejected",
		}

	case errors.Is(err, group.ErrAlreadyMigrated):
		return http.StatusConflict, &Error{
			Code:    "ALREADY_MIGRATED",
			Message: "The group has already been migrated",
		}

	case errors.Is(err, group.ErrChangeBusy):
		return http.StatusConflict, &Error{
			Code:    "CHANGE_BUSY",
			Message: "Another change to this group is in progress",
		}

	case errors.Is(err, errs.ErrConcurrentModification):
		return http.StatusConflict, &Error{
			Code:    "CONCURRENT_MODIFICATION",
			Message: "Resource was modified by another request",
		}

	case errors.Is(err, group.ErrNetwork),
		errors.Is(err, errs.ErrUnavailable),
		errors.Is(err, migration.ErrDispatcherClosed):
		return http.StatusServiceUnavailable, &Error{
			Code:    "UNAVAILABLE",
			Message: "Service temporarily unavailable",
		}

	default:
		return http.StatusInternalServerError, &Error{
			Code:    "INTERNAL_ERROR",
			Message: "An internal error occurred",
		}
	}
}
