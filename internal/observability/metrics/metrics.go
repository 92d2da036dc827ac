// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	BatchesIngested   *prometheus.CounterVec
	EventsStaged      prometheus.Counter
	EventsCreated     prometheus.Counter
	EventsMalformed   prometheus.Counter
	EventsQuarantined prometheus.Counter
	EventsPublished   prometheus.Counter
	RunErrors         *prometheus.CounterVec
}

// New registers the pipeline metrics on reg and returns them. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BatchesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "batches_ingested_total",
			Help:      "Bronze batches written, by source",
		}, []string{"source"}),
		EventsStaged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "events_staged_total",
			Help:      "Records upserted into silver",
		}),
		EventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "events_created_total",
			Help:      "Records that created a new silver row",
		}),
		EventsMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "events_malformed_total",
			Help:      "Records skipped for missing or invalid identity fields",
		}),
		EventsQuarantined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "events_quarantined_total",
			Help:      "Records quarantined by audit runs",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "events_published_total",
			Help:      "Records promoted into gold",
		}),
		RunErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "run_errors_total",
			Help:      "Failed pipeline runs, by job",
		}, []string{"job"}),
	}

	reg.MustRegister(
		m.BatchesIngested,
		m.EventsStaged,
		m.EventsCreated,
		m.EventsMalformed,
		m.EventsQuarantined,
		m.EventsPublished,
		m.RunErrors,
	)
	return m
}
