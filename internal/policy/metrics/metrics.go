package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts policy decisions.
type Metrics struct {
	Decisions *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_policy_decisions_total",
			Help: "Policy decisions by resource type, ability and outcome",
		}, []string{"resource", "ability", "outcome", "reason"}),
	}
}

// IncrementDecision records one verdict. Safe on a nil receiver.
func (m *Metrics) IncrementDecision(resource, ability string, allowed bool, reason string) {
	if m == nil {
		return
	}
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.Decisions.WithLabelValues(resource, ability, outcome, reason).Inc()
}
