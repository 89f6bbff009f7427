// Package metrics provides observability for the attendance module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the attendance recorder's Prometheus instruments. All
// observe helpers are nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	// Recorder outcomes by event kind and result (recorded, rejected
	// reason code).
	CheckOutcome *prometheus.CounterVec

	// Recorded events by evidence method and approval.
	EventsRecorded *prometheus.CounterVec

	// Full recorder call latency including directory resolution.
	RecordLatency prometheus.Histogram
}

// New creates and registers the attendance metrics.
func New() *Metrics {
	return &Metrics{
		CheckOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "punchcard_attendance_check_outcomes_total",
			Help: "Recorder outcomes by event kind and result code",
		}, []string{"kind", "result"}),

		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "punchcard_attendance_events_recorded_total",
			Help: "Recorded attendance events by method and approval",
		}, []string{"method", "approved"}),

		RecordLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "punchcard_attendance_record_duration_seconds",
			Help:    "Duration of recorder calls including geofence and beacon resolution",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// IncrementOutcome records a recorder result for an event kind.
func (m *Metrics) IncrementOutcome(kind, result string) {
	if m != nil {
		m.CheckOutcome.WithLabelValues(kind, result).Inc()
	}
}

// IncrementRecorded counts a persisted event.
func (m *Metrics) IncrementRecorded(method string, approved bool) {
	if m != nil {
		label := "false"
		if approved {
			label = "true"
		}
		m.EventsRecorded.WithLabelValues(method, label).Inc()
	}
}

// ObserveRecordLatency records the duration of a recorder call.
func (m *Metrics) ObserveRecordLatency(d time.Duration) {
	if m != nil {
		m.RecordLatency.Observe(d.Seconds())
	}
}
