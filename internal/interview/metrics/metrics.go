package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the interview lifecycle.
type Metrics struct {
	// Created events by type
	EventsCreated *prometheus.CounterVec

	// Transition attempts by action and outcome (ok, validation, forbidden, invalid, error)
	Transitions *prometheus.CounterVec

	EventsDeleted prometheus.Counter
	RemindersSent prometheus.Counter

	OperationLatency *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_interview_events_created_total",
			Help: "Interview events created by type",
		}, []string{"type"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_interview_transitions_total",
			Help: "Interview event transitions by action and outcome",
		}, []string{"action", "outcome"}),
		EventsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_interview_events_deleted_total",
			Help: "Interview events deleted",
		}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_interview_reminders_sent_total",
			Help: "Reminder notifications queued for upcoming interview events",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobboard_interview_operation_duration_seconds",
			Help:    "Duration of interview lifecycle operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated(eventType string) {
	if m != nil {
		m.EventsCreated.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) IncrementTransition(action, outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(action, outcome).Inc()
	}
}

func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.EventsDeleted.Inc()
	}
}

func (m *Metrics) AddRemindersSent(n int) {
	if m != nil && n > 0 {
		m.RemindersSent.Add(float64(n))
	}
}

// ObserveOperation records the duration since start.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
