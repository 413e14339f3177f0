package migration

import "errors"

var (
	// ErrNoSuggestions is returned when there is nobody to add.
	ErrNoSuggestions = errors.New("no suggested members")
	// ErrNotPending is returned when a requested member is not a pending member of the group.
	ErrNotPending = errors.New("member is not pending in this group")
	// ErrPurgeFailed wraps failures to drop pending records after a final outcome.
	ErrPurgeFailed = errors.New("failed to purge pending records")
	// ErrDispatcherClosed is delivered when the dispatcher no longer accepts work.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)
