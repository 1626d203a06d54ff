// Package policy decides whether a subject may perform an ability on a resource.
package policy

import (
	usermodels "jobboard/internal/users/models"
	id "jobboard/pkg/domain"
)

// Ability is the name of an action checked against a policy.
type Ability string

const (
	AbilityView         Ability = "view"
	AbilityViewAny      Ability = "viewAny"
	AbilityCreate       Ability = "create"
	AbilityUpdate       Ability = "update"
	AbilityDelete       Ability = "delete"
	AbilityUpdateRole   Ability = "updateRole"
	AbilityToggleActive Ability = "toggleActive"
	AbilityConfirm      Ability = "confirm"
	AbilityCancel       Ability = "cancel"
	AbilityComplete     Ability = "complete"
	AbilityAddNote      Ability = "addNote"

	// Role gates, evaluated against ResourceGate with no target.
	GateAdmin     Ability = "admin"
	GateManager   Ability = "manager"
	GateCandidate Ability = "candidate"
)

// protected abilities always go to the resource policy, even for admins.
var protected = map[Ability]struct{}{
	AbilityUpdateRole:   {},
	AbilityToggleActive: {},
	AbilityDelete:       {},
}

// IsProtected reports whether the admin bypass is disabled for the ability.
func (a Ability) IsProtected() bool {
	_, ok := protected[a]
	return ok
}

// ResourceType selects the registered policy.
type ResourceType string

const (
	ResourceUser        ResourceType = "user"
	ResourceCompany     ResourceType = "company"
	ResourceJob         ResourceType = "job"
	ResourceApplication ResourceType = "application"
	ResourceEvent       ResourceType = "event"
	ResourceGate        ResourceType = "gate"
)

// Subject is the acting user as seen by policies.
type Subject struct {
	ID   id.UserID
	Role id.Role
}

// SubjectOf builds a Subject from a user record. A nil user yields a subject
// with no role, which every policy denies.
func SubjectOf(u *usermodels.User) Subject {
	if u == nil {
		return Subject{}
	}
	return Subject{ID: u.ID, Role: usermodels.RoleOf(u)}
}

func (s Subject) is(role id.Role) bool {
	return s.Role == role
}

// Policy gives the verdict for one resource type.
type Policy interface {
	Allows(sub Subject, ability Ability, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(sub Subject, ability Ability, resource any) bool

func (f PolicyFunc) Allows(sub Subject, ability Ability, resource any) bool {
	return f(sub, ability, resource)
}

// Ownership views that resources implement so policies never import them.
type (
	// CandidateOwned is implemented by resources that belong to a candidate.
	CandidateOwned interface {
		CandidateUserID() id.UserID
	}
	// CompanyManaged is implemented by resources whose company has a managing user.
	CompanyManaged interface {
		CompanyManagerID() id.UserID
	}
	// UserTarget is implemented by resources that are themselves a user account.
	UserTarget interface {
		TargetUserID() id.UserID
	}
)

// UserRef lets a bare user id act as a UserTarget.
type UserRef id.UserID

func (u UserRef) TargetUserID() id.UserID { return id.UserID(u) }
