package group

import (
	"time"

	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// Role is the role of a group member.
type Role string

const (
	// RoleMember is a regular member.
	RoleMember Role = "member"
	// RoleAdmin can change group settings and membership.
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Member is a full member of a group (value object).
type Member struct {
	userID   uuid.UUID
	role     Role
	joinedAt time.Time
}

// NewMember creates a member who joins now.
func NewMember(userID uuid.UUID, role Role) Member {
	return Member{userID: userID, role: role, joinedAt: time.Now()}
}

// ReconstructMember rehydrates a member from storage without validation.
func ReconstructMember(userID uuid.UUID, role Role, joinedAt time.Time) Member {
	return Member{userID: userID, role: role, joinedAt: joinedAt}
}

func (m Member) UserID() uuid.UUID   { return m.userID }
func (m Member) Role() Role          { return m.role }
func (m Member) JoinedAt() time.Time { return m.joinedAt }
func (m Member) IsAdmin() bool       { return m.role == RoleAdmin }
