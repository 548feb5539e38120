// Package metrics exposes Prometheus counters for the ingestion pipeline.
// Everything is registered on a private registry so tests can create
// independent instances without global collisions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's instrumentation. A single instance is created
// at startup and handed to the components that record into it.
type Metrics struct {
	registry *prometheus.Registry

	FetchAttempts      *prometheus.CounterVec // source, outcome
	RetryAttempts      *prometheus.CounterVec // source
	BreakerTransitions *prometheus.CounterVec // source, to_state
	RowsWritten        *prometheus.CounterVec // table
	GamesProcessed     *prometheus.CounterVec // outcome
	QuarantineEntries  prometheus.Counter
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_fetch_attempts_total",
			Help: "Fetch attempts by source and outcome (success, transient, permanent, breaker_open).",
		}, []string{"source", "outcome"}),
		RetryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_retry_attempts_total",
			Help: "Retry attempts beyond the first call, by source.",
		}, []string{"source"}),
		BreakerTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_breaker_transitions_total",
			Help: "Circuit breaker state transitions by source and target state.",
		}, []string{"source", "to_state"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rows_written_total",
			Help: "Rows upserted per table.",
		}, []string{"table"}),
		GamesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_games_processed_total",
			Help: "Games processed by outcome (success, soft_fail, hard_fail).",
		}, []string{"outcome"}),
		QuarantineEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_quarantine_entries_total",
			Help: "Quarantine log entries appended.",
		}),
	}

	reg.MustRegister(
		m.FetchAttempts,
		m.RetryAttempts,
		m.BreakerTransitions,
		m.RowsWritten,
		m.GamesProcessed,
		m.QuarantineEntries,
	)
	return m
}

// Registry returns the underlying registry, for exposing via an HTTP handler
// or gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
