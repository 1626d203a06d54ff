package domain

import (
	"strings"

	dErrors "jobboard/pkg/domain-errors"
)

// Role is the single role a user holds on the job board.
// Invariant: the value must be one of admin, manager or candidate.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleCandidate Role = "candidate"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleManager:   true,
	RoleCandidate: true,
}

// ParseRole constructs a Role from external input (case-insensitive).
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsStaff reports whether the role may manage companies, jobs and interviews.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) String() string {
	return string(r)
}
