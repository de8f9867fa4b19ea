package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for pipeline advancement.
type Metrics struct {
	AutoAdvanced prometheus.Counter
	AutoRejected prometheus.Counter
}

// New creates and registers the advancement metrics.
func New() *Metrics {
	return &Metrics{
		AutoAdvanced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_applications_auto_advanced_total",
			Help: "Applications advanced past general competencies on a prior pass",
		}),
		AutoRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_applications_auto_rejected_total",
			Help: "Applications rejected on a prior general-competency failure",
		}),
	}
}

func (m *Metrics) IncrementAutoAdvanced() {
	m.AutoAdvanced.Inc()
}

func (m *Metrics) IncrementAutoRejected() {
	m.AutoRejected.Inc()
}
