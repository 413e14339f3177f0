package appcore

import (
	"fmt"

	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// MaxBatchSize bounds the number of recipients accepted in one request.
const MaxBatchSize = 1000

// ValidateUUID checks that the id is set
func ValidateUUID(field string, id uuid.UUID) error {
	if id.IsZero() {
		return NewValidationError(field, "must be a valid UUID")
	}
	return nil
}

// ValidateUUIDList checks every id and the size of the list
func ValidateUUIDList(field string, ids []uuid.UUID, maxLen int) error {
	if len(ids) > maxLen {
		return NewValidationError(field, fmt.Sprintf("must contain at most %d items", maxLen))
	}
	for i, id := range ids {
		if id.IsZero() {
			return NewValidationError(fmt.Sprintf("%s[%d]", field, i), "must be a valid UUID")
		}
	}
	return nil
}
