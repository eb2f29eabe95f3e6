package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records submission and lifecycle-transition outcomes.
type OrderMetrics struct {
	submitDuration *prometheus.HistogramVec
	submits        *prometheus.CounterVec
	transitions    *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_submit_duration_seconds",
		Help:    "Duration of order submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	submits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submits_total",
		Help: "Order submission attempts by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order lifecycle transitions by target status and outcome.",
	}, []string{"target", "outcome"})
	reg.MustRegister(submitDuration, submits, transitions)
	return &OrderMetrics{
		submitDuration: submitDuration,
		submits:        submits,
		transitions:    transitions,
	}
}

// ObserveSubmit records one submission attempt.
func (m *OrderMetrics) ObserveSubmit(outcome string, duration time.Duration) {
	if m == nil || m.submits == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.submits.WithLabelValues(label).Inc()
	m.submitDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncTransition records one lifecycle transition attempt.
func (m *OrderMetrics) IncTransition(target, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(target), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
