package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the admin API guard. Methods are
// nil-safe so tests can pass a nil *Metrics without registering collectors.
type Metrics struct {
	// Authorization checks by result: authorized, unauthorized, forbidden
	Authorizations *prometheus.CounterVec
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		Authorizations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careergate_admin_guard_authorizations_total",
			Help: "Total admin API authorization checks by result",
		}, []string{"result"}),
	}
}

// IncrementAuthorization records one authorization check result.
func (m *Metrics) IncrementAuthorization(result string) {
	if m != nil {
		m.Authorizations.WithLabelValues(result).Inc()
	}
}
