package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the gate module. All methods are
// nil-safe so tests can pass a nil *Metrics without registering collectors.
type Metrics struct {
	// Decisions by route class and outcome
	Decisions *prometheus.CounterVec

	// Full evaluation latency including identity resolution
	EvaluateLatency prometheus.Histogram

	// Role lookups that errored (the fail-open path on non-admin routes)
	LookupFailures prometheus.Counter
}

// New creates a Metrics instance with all gate metrics registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careergate_gate_decisions_total",
			Help: "Total access decisions by route class and outcome",
		}, []string{"route_class", "outcome"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "careergate_gate_evaluate_duration_seconds",
			Help:    "Duration of access decision evaluation including role lookup",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),

		LookupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "careergate_gate_role_lookup_failures_total",
			Help: "Role lookups that failed and were handled fail-open at the page gate",
		}),
	}
}

// ObserveDecision records one decision and its evaluation latency.
func (m *Metrics) ObserveDecision(routeClass, outcome string, d time.Duration) {
	if m != nil {
		m.Decisions.WithLabelValues(routeClass, outcome).Inc()
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementLookupFailures records a fail-open role lookup failure.
func (m *Metrics) IncrementLookupFailures() {
	if m != nil {
		m.LookupFailures.Inc()
	}
}
