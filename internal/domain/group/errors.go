package group

import (
	"errors"
	"fmt"

	"github.com/lllypuk/regroup/internal/domain/errs"
)

// Transient group change errors.
var (
	// ErrChangeBusy indicates another change to the group is in flight.
	ErrChangeBusy = errors.New("group change already in progress")
	// ErrNetwork indicates the membership service or its store could not be reached.
	ErrNetwork = errors.New("group service unreachable")
)

// Permanent group change errors.
var (
	// ErrNotAMember indicates the actor is no longer a member of the group.
	ErrNotAMember = errors.New("actor is not a member of the group")
	// ErrInsufficientRights indicates the actor lacks the rights to add members.
	ErrInsufficientRights = errors.New("insufficient rights to change group")
	// ErrMembershipNotSuitable indicates the requested membership cannot exist in this group format.
	ErrMembershipNotSuitable = errors.New("membership not suitable for group format")
	// ErrChangeFailed indicates the change was rejected outright.
	ErrChangeFailed = errors.New("group change rejected")
	// ErrGroupNotFound indicates the group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrAlreadyMigrated indicates a migration of a group that is not in the legacy format.
	ErrAlreadyMigrated = errors.New("group already migrated")
)

// Failure reasons reported alongside a classification.
const (
	ReasonChangeBusy            = "change_busy"
	ReasonNetwork               = "network"
	ReasonNotAMember            = "not_a_member"
	ReasonInsufficientRights    = "insufficient_rights"
	ReasonMembershipNotSuitable = "membership_not_suitable"
	ReasonChangeFailed          = "change_failed"
	ReasonGroupNotFound         = "group_not_found"
)

// OutcomeFromError translates the error of an add-members call into an outcome.
// Errors outside the known taxonomy are treated as transient: they come from
// infrastructure and a later attempt may succeed.
func OutcomeFromError(err error) AdditionOutcome {
	switch {
	case err == nil:
		return Success{}
	case errors.Is(err, ErrNotAMember),
		errors.Is(err, ErrInsufficientRights),
		errors.Is(err, ErrMembershipNotSuitable),
		errors.Is(err, ErrChangeFailed),
		errors.Is(err, ErrGroupNotFound),
		errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrForbidden),
		errors.Is(err, errs.ErrInvalidInput):
		return PermanentFailure{Cause: err}
	case errors.Is(err, ErrChangeBusy):
		return TransientFailure{Cause: err}
	case errors.Is(err, errs.ErrConcurrentModification):
		return TransientFailure{Cause: fmt.Errorf("%w: %w", ErrChangeBusy, err)}
	default:
		return TransientFailure{Cause: err}
	}
}
