package policy

import (
	id "jobboard/pkg/domain"
)

const (
	roleAdmin     = id.RoleAdmin
	roleManager   = id.RoleManager
	roleCandidate = id.RoleCandidate
)

func isCandidateOwner(sub Subject, resource any) bool {
	owned, ok := resource.(CandidateOwned)
	return ok && sub.is(roleCandidate) && owned.CandidateUserID() == sub.ID
}

func isCompanyManager(sub Subject, resource any) bool {
	managed, ok := resource.(CompanyManaged)
	return ok && sub.is(roleManager) && managed.CompanyManagerID() == sub.ID
}

// userPolicy: admins manage other accounts but never their own role, status
// or existence.
func userPolicy(sub Subject, ability Ability, resource any) bool {
	target, ok := resource.(UserTarget)
	if !ok {
		return false
	}
	self := target.TargetUserID() == sub.ID
	switch ability {
	case AbilityView, AbilityUpdate:
		return self
	case AbilityUpdateRole, AbilityToggleActive, AbilityDelete:
		return sub.is(roleAdmin) && !self
	default:
		return false
	}
}

func companyPolicy(sub Subject, ability Ability, resource any) bool {
	switch ability {
	case AbilityViewAny, AbilityView:
		return true
	case AbilityCreate:
		return sub.is(roleManager)
	case AbilityUpdate:
		return isCompanyManager(sub, resource)
	case AbilityDelete:
		return sub.is(roleAdmin) || isCompanyManager(sub, resource)
	default:
		return false
	}
}

// jobPolicy mirrors companyPolicy; ownership comes through the posting company.
func jobPolicy(sub Subject, ability Ability, resource any) bool {
	return companyPolicy(sub, ability, resource)
}

func applicationPolicy(sub Subject, ability Ability, resource any) bool {
	switch ability {
	case AbilityViewAny:
		return sub.is(roleManager)
	case AbilityCreate:
		return sub.is(roleCandidate)
	case AbilityView:
		return isCandidateOwner(sub, resource) || isCompanyManager(sub, resource)
	case AbilityUpdate:
		return isCompanyManager(sub, resource)
	case AbilityDelete:
		return sub.is(roleAdmin) || isCandidateOwner(sub, resource)
	default:
		return false
	}
}

// eventPolicy covers interview events. For create and viewAny the resource is
// the application the event hangs off.
func eventPolicy(sub Subject, ability Ability, resource any) bool {
	switch ability {
	case AbilityView, AbilityViewAny, AbilityAddNote, AbilityCancel:
		return isCandidateOwner(sub, resource) || isCompanyManager(sub, resource)
	case AbilityCreate, AbilityUpdate, AbilityComplete:
		return isCompanyManager(sub, resource)
	case AbilityConfirm:
		return isCandidateOwner(sub, resource)
	case AbilityDelete:
		return sub.is(roleAdmin) || isCompanyManager(sub, resource)
	default:
		return false
	}
}

func gatePolicy(sub Subject, ability Ability, _ any) bool {
	switch ability {
	case GateAdmin:
		return sub.is(roleAdmin)
	case GateManager:
		return sub.is(roleManager)
	case GateCandidate:
		return sub.is(roleCandidate)
	default:
		return false
	}
}
