package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"eventrsvp/internal/domain"
)

// ReconcileMetrics counts reconciliation outcomes and their latency.
type ReconcileMetrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewReconcileMetrics registers the collectors on reg.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	m := &ReconcileMetrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsvp_reactions_total",
			Help: "Reactions processed, by terminal outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rsvp_reconcile_duration_seconds",
			Help:    "Time taken to reconcile one reaction.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.outcomes, m.duration)
	return m
}

var _ domain.ReconcileRecorder = (*ReconcileMetrics)(nil)

func (m *ReconcileMetrics) Record(outcome domain.ReconcileOutcome, seconds float64) {
	m.outcomes.WithLabelValues(string(outcome)).Inc()
	m.duration.WithLabelValues(string(outcome)).Observe(seconds)
}
