// Package observability provides Prometheus metrics and OpenTelemetry
// tracing setup for the PDP façade, kept separate from internal/service so
// the evaluation pipeline has no Prometheus or OpenTelemetry SDK dependency
// (internal/service uses only the OpenTelemetry trace API).
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics defined for the PDP façade; Service
// does not increment them.
type Metrics struct {
	DecisionsTotal    *prometheus.CounterVec
	EvaluationSeconds *prometheus.HistogramVec
	CacheHitsTotal    prometheus.Counter
	CacheMissesTotal  prometheus.Counter
	ReferencesResolved *prometheus.CounterVec
}

// NewMetrics creates and registers every metric against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		DecisionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "xacml_pdp",
				Name:      "decisions_total",
				Help:      "Total individual decisions returned, by decision value",
			},
			[]string{"decision"}, // Permit/Deny/NotApplicable/Indeterminate
		),
		EvaluationSeconds: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "xacml_pdp",
				Name:      "evaluation_seconds",
				Help:      "Time to evaluate one individual request against the root policy",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"decision"},
		),
		CacheHitsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "xacml_pdp",
				Name:      "decision_cache_hits_total",
				Help:      "Total individual requests served from the decision cache",
			},
		),
		CacheMissesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "xacml_pdp",
				Name:      "decision_cache_misses_total",
				Help:      "Total individual requests that required evaluation",
			},
		),
		ReferencesResolved: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "xacml_pdp",
				Name:      "policy_references_resolved_total",
				Help:      "Total PolicyIdReference/PolicySetIdReference resolutions, by outcome",
			},
			[]string{"outcome"}, // ok/cycle/depth-exceeded/not-found
		),
	}
}
