package policy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/policy/metrics"
	usermodels "jobboard/internal/users/models"
	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
)

type ownedResource struct {
	candidate id.UserID
	manager   id.UserID
}

func (r ownedResource) CandidateUserID() id.UserID  { return r.candidate }
func (r ownedResource) CompanyManagerID() id.UserID { return r.manager }

func subject(role id.Role) Subject {
	return Subject{ID: id.UserID(uuid.New()), Role: role}
}

var allAbilities = []Ability{
	AbilityView, AbilityViewAny, AbilityCreate, AbilityUpdate, AbilityDelete,
	AbilityUpdateRole, AbilityToggleActive, AbilityConfirm, AbilityCancel,
	AbilityComplete, AbilityAddNote, GateAdmin, GateManager, GateCandidate,
}

func TestAdminBypass(t *testing.T) {
	ctx := context.Background()
	deny := PolicyFunc(func(Subject, Ability, any) bool { return false })
	allow := PolicyFunc(func(Subject, Ability, any) bool { return true })
	admin := subject(id.RoleAdmin)

	for _, ability := range allAbilities {
		t.Run(string(ability), func(t *testing.T) {
			denying := NewEvaluator(WithPolicy(ResourceEvent, deny))
			allowing := NewEvaluator(WithPolicy(ResourceEvent, allow))

			if ability.IsProtected() {
				assert.False(t, denying.Evaluate(ctx, admin, ability, ResourceEvent, nil),
					"protected ability must follow the policy verdict")
				assert.True(t, allowing.Evaluate(ctx, admin, ability, ResourceEvent, nil))
				return
			}
			assert.True(t, denying.Evaluate(ctx, admin, ability, ResourceEvent, nil),
				"admin bypass must ignore the policy verdict")
		})
	}
}

func TestFailClosedWithoutPolicy(t *testing.T) {
	ctx := context.Background()
	e := NewEvaluator()

	assert.False(t, e.Evaluate(ctx, subject(id.RoleManager), AbilityView, ResourceCompany, nil))
	assert.False(t, e.Evaluate(ctx, subject(id.RoleAdmin), AbilityDelete, ResourceCompany, nil))
	assert.True(t, e.Evaluate(ctx, subject(id.RoleAdmin), AbilityView, ResourceCompany, nil))
}

func TestUnknownRoleIsDenied(t *testing.T) {
	ctx := context.Background()
	e := NewDefault()
	sub := Subject{ID: id.UserID(uuid.New()), Role: "superuser"}

	assert.False(t, e.Evaluate(ctx, sub, AbilityView, ResourceCompany, nil))
	assert.False(t, e.Evaluate(ctx, SubjectOf(nil), GateCandidate, ResourceGate, nil))
}

func TestSubjectOf(t *testing.T) {
	u := &usermodels.User{ID: id.UserID(uuid.New()), Role: id.RoleManager}
	sub := SubjectOf(u)
	assert.Equal(t, u.ID, sub.ID)
	assert.Equal(t, id.RoleManager, sub.Role)

	u.Role = "root"
	assert.Equal(t, id.Role(""), SubjectOf(u).Role)
}

func TestAuthorizeReturnsForbidden(t *testing.T) {
	e := NewDefault()
	err := e.Authorize(context.Background(), subject(id.RoleCandidate), GateManager, ResourceGate, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	require.NoError(t, e.Authorize(context.Background(), subject(id.RoleManager), GateManager, ResourceGate, nil))
}

func TestRegisterReplacesPolicy(t *testing.T) {
	ctx := context.Background()
	e := NewDefault()
	manager := subject(id.RoleManager)
	require.True(t, e.Evaluate(ctx, manager, AbilityCreate, ResourceCompany, nil))

	e.Register(ResourceCompany, PolicyFunc(func(Subject, Ability, any) bool { return false }))
	assert.False(t, e.Evaluate(ctx, manager, AbilityCreate, ResourceCompany, nil))
}

func TestDecisionsAreCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewDefault(WithMetrics(metrics.NewWithRegistry(reg)))
	ctx := context.Background()

	e.Evaluate(ctx, subject(id.RoleAdmin), AbilityView, ResourceEvent, nil)
	e.Evaluate(ctx, subject(id.RoleCandidate), AbilityDelete, ResourceEvent, nil)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "jobboard_policy_decisions_total", families[0].GetName())
	assert.Len(t, families[0].GetMetric(), 2)
}
