package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the notification dispatcher.
type Metrics struct {
	Enqueued     prometheus.Counter
	Dropped      *prometheus.CounterVec
	Deliveries   *prometheus.CounterVec
	BreakerState prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Enqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_notifications_enqueued_total",
			Help: "Notifications accepted into the dispatch queue",
		}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_notifications_dropped_total",
			Help: "Notifications dropped before delivery, by reason",
		}, []string{"reason"}), // queue_full, breaker_open
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_notifications_deliveries_total",
			Help: "Delivery attempts by sender and outcome",
		}, []string{"sender", "outcome"}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jobboard_notifications_breaker_open",
			Help: "1 while the sender circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncEnqueued() {
	if m != nil {
		m.Enqueued.Inc()
	}
}

func (m *Metrics) IncDropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncDelivery(sender string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.Deliveries.WithLabelValues(sender, outcome).Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}
