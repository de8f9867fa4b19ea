package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for assessment ingestion.
type Metrics struct {
	ResultsRecorded *prometheus.CounterVec
}

// New creates and registers the assessment metrics.
func New() *Metrics {
	return &Metrics{
		ResultsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_assessment_results_total",
			Help: "General-competency results recorded, labelled by verdict",
		}, []string{"verdict"}),
	}
}

func (m *Metrics) IncrementResult(verdict string) {
	m.ResultsRecorded.WithLabelValues(verdict).Inc()
}
