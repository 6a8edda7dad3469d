// Package metrics provides the gateway's Prometheus instrumentation:
// per-domain command outcomes, conflict retries, projector dispatch
// latency, cascade depth, and revocation outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the coordinators report to.
type Metrics struct {
	CommandsTotal       *prometheus.CounterVec
	SequenceConflicts   *prometheus.CounterVec
	ProjectorLatency     *prometheus.HistogramVec
	ProjectorPoisoned   *prometheus.CounterVec
	CascadeDepth        prometheus.Histogram
	RevocationOutcomes  *prometheus.CounterVec
	RootLockWaitSeconds prometheus.Histogram
}

// New registers every collector against a dedicated registry so tests can
// build isolated Metrics instances without a global singleton.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "angzarr_commands_total",
			Help: "Commands handled by the aggregate coordinator, by domain and result.",
		}, []string{"domain", "result"}),
		SequenceConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "angzarr_sequence_conflicts_total",
			Help: "Optimistic concurrency conflicts detected on append, by domain and merge strategy.",
		}, []string{"domain", "merge_strategy"}),
		ProjectorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "angzarr_projector_dispatch_seconds",
			Help: "Time spent dispatching an EventBook to a projector.",
		}, []string{"projector"}),
		ProjectorPoisoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "angzarr_projector_poisoned_total",
			Help: "EventBooks moved to the poison queue after exhausting projector retries.",
		}, []string{"projector"}),
		CascadeDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "angzarr_cascade_depth",
			Help:    "Observed saga cascade depth at dispatch time.",
			Buckets: prometheus.LinearBuckets(0, 1, 12),
		}),
		RevocationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "angzarr_revocation_outcomes_total",
			Help: "Saga revocation outcomes, by flag (compensated, dlq, escalate, abort, system_fallback).",
		}, []string{"outcome"}),
		RootLockWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "angzarr_root_lock_wait_seconds",
			Help: "Time spent waiting to acquire a per-root serialization lock.",
		}),
	}
	reg.MustRegister(
		m.CommandsTotal,
		m.SequenceConflicts,
		m.ProjectorLatency,
		m.ProjectorPoisoned,
		m.CascadeDepth,
		m.RevocationOutcomes,
		m.RootLockWaitSeconds,
	)
	return m
}

// Handler returns the promhttp handler for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
