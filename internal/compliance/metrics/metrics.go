// Package metrics provides observability for the compliance module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the compliance engine's Prometheus instruments. Observe
// helpers are nil-safe so evaluation stays wirable without metrics.
type Metrics struct {
	// Violations emitted by type and severity.
	ViolationsEmitted *prometheus.CounterVec

	// Evaluations by region.
	Evaluations *prometheus.CounterVec

	// Full evaluation latency.
	EvaluateLatency prometheus.Histogram
}

// New creates and registers the compliance metrics.
func New() *Metrics {
	return &Metrics{
		ViolationsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "punchcard_compliance_violations_total",
			Help: "Compliance violations emitted by type and severity",
		}, []string{"type", "severity"}),

		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "punchcard_compliance_evaluations_total",
			Help: "Compliance evaluations by region",
		}, []string{"region"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "punchcard_compliance_evaluate_duration_seconds",
			Help:    "Duration of full compliance evaluations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementViolation counts an emitted violation.
func (m *Metrics) IncrementViolation(violationType, severity string) {
	if m != nil {
		m.ViolationsEmitted.WithLabelValues(violationType, severity).Inc()
	}
}

// IncrementEvaluation counts an evaluation run for a region.
func (m *Metrics) IncrementEvaluation(region string) {
	if m != nil {
		m.Evaluations.WithLabelValues(region).Inc()
	}
}

// ObserveEvaluateLatency records the duration of an evaluation.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
