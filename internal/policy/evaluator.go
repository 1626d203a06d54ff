package policy

import (
	"context"
	"log/slog"
	"sync"

	"jobboard/internal/policy/metrics"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/requestcontext"
)

// Evaluator holds one policy per resource type and applies the admin bypass
// before consulting them. Policies are registered at construction and read
// concurrently afterwards.
type Evaluator struct {
	mu       sync.RWMutex
	policies map[ResourceType]Policy
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Evaluator)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// WithPolicy registers p for rt, replacing any built-in policy.
func WithPolicy(rt ResourceType, p Policy) Option {
	return func(e *Evaluator) {
		e.policies[rt] = p
	}
}

// NewEvaluator returns an evaluator with no policies registered. Every request
// that the admin bypass does not cover is denied until policies are added.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		policies: make(map[ResourceType]Policy),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefault returns an evaluator with the job-board policies registered.
func NewDefault(opts ...Option) *Evaluator {
	base := []Option{
		WithPolicy(ResourceUser, PolicyFunc(userPolicy)),
		WithPolicy(ResourceCompany, PolicyFunc(companyPolicy)),
		WithPolicy(ResourceJob, PolicyFunc(jobPolicy)),
		WithPolicy(ResourceApplication, PolicyFunc(applicationPolicy)),
		WithPolicy(ResourceEvent, PolicyFunc(eventPolicy)),
		WithPolicy(ResourceGate, PolicyFunc(gatePolicy)),
	}
	return NewEvaluator(append(base, opts...)...)
}

// Register installs p for rt.
func (e *Evaluator) Register(rt ResourceType, p Policy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policies[rt] = p
}

// Evaluate reports whether sub may perform ability on resource. It has no
// side effects beyond logging and metrics.
func (e *Evaluator) Evaluate(ctx context.Context, sub Subject, ability Ability, rt ResourceType, resource any) bool {
	allowed, reason := e.decide(sub, ability, rt, resource)
	e.metrics.IncrementDecision(string(rt), string(ability), allowed, reason)
	if !allowed {
		e.logger.DebugContext(ctx, "policy denied",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", sub.ID.String(),
			"role", sub.Role.String(),
			"ability", string(ability),
			"resource_type", string(rt),
			"reason", reason,
		)
	}
	return allowed
}

// Authorize is Evaluate returning a Forbidden error on deny.
func (e *Evaluator) Authorize(ctx context.Context, sub Subject, ability Ability, rt ResourceType, resource any) error {
	if e.Evaluate(ctx, sub, ability, rt, resource) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "not allowed to "+string(ability)+" "+string(rt))
}

const (
	reasonAdminBypass = "admin_bypass"
	reasonPolicy      = "policy"
	reasonNoPolicy    = "no_policy"
	reasonNoRole      = "no_role"
)

func (e *Evaluator) decide(sub Subject, ability Ability, rt ResourceType, resource any) (bool, string) {
	if !sub.Role.IsValid() {
		return false, reasonNoRole
	}
	if sub.is(roleAdmin) && !ability.IsProtected() {
		return true, reasonAdminBypass
	}

	e.mu.RLock()
	p, ok := e.policies[rt]
	e.mu.RUnlock()
	if !ok {
		return false, reasonNoPolicy
	}
	return p.Allows(sub, ability, resource), reasonPolicy
}
