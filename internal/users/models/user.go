package models

import (
	"time"

	id "jobboard/pkg/domain"
)

// User is owned by the identity subsystem. The job-board core reads it to
// decide access and never mutates it.
type User struct {
	ID        id.UserID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      id.Role   `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleOf returns the user's role, or the empty role when the user is missing
// or carries a value outside the enum. The empty role passes no gate.
func RoleOf(u *User) id.Role {
	if u == nil || !u.Role.IsValid() {
		return ""
	}
	return u.Role
}
