// Package uuid provides the string-backed identifier used for groups and recipients.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// UUID identifies a group or a recipient.
type UUID string

var nilUUID = UUID(uuid.Nil.String())

// NewUUID generates a random identifier.
func NewUUID() UUID {
	return UUID(uuid.New().String())
}

// ParseUUID validates s and returns it as a UUID.
func ParseUUID(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return UUID(parsed.String()), nil
}

// MustParseUUID is ParseUUID that panics on malformed input. Test fixtures only.
func MustParseUUID(s string) UUID {
	id, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseList parses every element of raw, keeping order.
// The first malformed element aborts parsing.
func ParseList(raw []string) ([]UUID, error) {
	ids := make([]UUID, 0, len(raw))
	for i, s := range raw {
		id, err := ParseUUID(s)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Unique drops repeated identifiers, keeping the first occurrence.
func Unique(ids []UUID) []UUID {
	seen := make(map[UUID]struct{}, len(ids))
	out := make([]UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Strings converts ids into plain strings for storage and logging.
func Strings(ids []UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// String returns the textual form.
func (u UUID) String() string {
	return string(u)
}

// IsZero reports whether the identifier is unset or the nil UUID.
func (u UUID) IsZero() bool {
	return u == "" || u == nilUUID
}
