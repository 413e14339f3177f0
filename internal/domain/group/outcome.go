package group

import (
	"errors"
	"fmt"

	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// ErrUnknownOutcome is returned by Classify for values outside the known outcome variants.
var ErrUnknownOutcome = errors.New("unknown addition outcome")

// PendingMemberSet is the ordered list of recipients proposed for addition.
type PendingMemberSet []uuid.UUID

// AdditionOutcome is the result of one add-members attempt.
// The set of variants is closed: Success, TransientFailure and PermanentFailure.
type AdditionOutcome interface {
	isAdditionOutcome()
}

// Success means every proposed member was added or invited.
type Success struct{}

// TransientFailure means the same attempt may succeed later.
type TransientFailure struct {
	Cause error
}

// PermanentFailure means the attempt cannot succeed without a change in
// rights, membership or group structure.
type PermanentFailure struct {
	Cause error
}

func (Success) isAdditionOutcome()          {}
func (TransientFailure) isAdditionOutcome() {}
func (PermanentFailure) isAdditionOutcome() {}

func (f TransientFailure) Error() string { return causeText("transient failure", f.Cause) }
func (f TransientFailure) Unwrap() error { return f.Cause }
func (f PermanentFailure) Error() string { return causeText("permanent failure", f.Cause) }
func (f PermanentFailure) Unwrap() error { return f.Cause }

// Reason names the specific permanent cause. Used for logs and metrics;
// classification does not depend on it.
func (f PermanentFailure) Reason() string {
	switch {
	case errors.Is(f.Cause, ErrNotAMember):
		return ReasonNotAMember
	case errors.Is(f.Cause, ErrInsufficientRights):
		return ReasonInsufficientRights
	case errors.Is(f.Cause, ErrMembershipNotSuitable):
		return ReasonMembershipNotSuitable
	case errors.Is(f.Cause, ErrGroupNotFound):
		return ReasonGroupNotFound
	default:
		return ReasonChangeFailed
	}
}

// Reason names the specific transient cause.
func (f TransientFailure) Reason() string {
	if errors.Is(f.Cause, ErrChangeBusy) {
		return ReasonChangeBusy
	}
	return ReasonNetwork
}

func causeText(prefix string, cause error) string {
	if cause == nil {
		return prefix
	}
	return prefix + ": " + cause.Error()
}

// Category is the recovery category of an outcome.
type Category int

const (
	// Succeeded is the category of Success.
	Succeeded Category = iota + 1
	// RetryableError is the category of TransientFailure.
	RetryableError
	// UnrecoverableError is the category of PermanentFailure.
	UnrecoverableError
)

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case Succeeded:
		return "succeeded"
	case RetryableError:
		return "retryable_error"
	case UnrecoverableError:
		return "unrecoverable_error"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	switch c {
	case Succeeded, RetryableError, UnrecoverableError:
		return []byte(c.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutcome, int(c))
	}
}

// Classification is what the caller acts on after an attempt.
type Classification struct {
	Category Category `json:"category"`

	// ShouldPurgePendingRecords is true for Succeeded and UnrecoverableError.
	// Retryable errors leave the pending records untouched so a later attempt can use them.
	ShouldPurgePendingRecords bool `json:"should_purge_pending_records"`
}

// Classify maps an outcome to its classification.
// It has no side effects and fails fast on a nil or foreign outcome.
func Classify(outcome AdditionOutcome) (Classification, error) {
	switch outcome.(type) {
	case Success:
		return Classification{Category: Succeeded, ShouldPurgePendingRecords: true}, nil
	case TransientFailure:
		return Classification{Category: RetryableError, ShouldPurgePendingRecords: false}, nil
	case PermanentFailure:
		return Classification{Category: UnrecoverableError, ShouldPurgePendingRecords: true}, nil
	default:
		return Classification{}, fmt.Errorf("%w: %T", ErrUnknownOutcome, outcome)
	}
}
