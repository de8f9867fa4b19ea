package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for submission processing.
type Metrics struct {
	Processed           prometheus.Counter
	Failed              prometheus.Counter
	PersonsCreated      prometheus.Counter
	ApplicationsCreated prometheus.Counter
}

// New creates and registers the submission metrics.
func New() *Metrics {
	return &Metrics{
		Processed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_submissions_processed_total",
			Help: "Submissions that completed processing successfully",
		}),
		Failed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_submissions_failed_total",
			Help: "Submissions that failed processing",
		}),
		PersonsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_persons_created_total",
			Help: "Persons created during submission processing",
		}),
		ApplicationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_applications_created_total",
			Help: "Applications created during submission processing",
		}),
	}
}

func (m *Metrics) IncrementProcessed() { m.Processed.Inc() }

func (m *Metrics) IncrementFailed() { m.Failed.Inc() }

func (m *Metrics) IncrementPersonsCreated() { m.PersonsCreated.Inc() }

func (m *Metrics) IncrementApplicationsCreated() { m.ApplicationsCreated.Inc() }
