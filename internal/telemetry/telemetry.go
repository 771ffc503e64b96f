// Package telemetry exposes per-batch classification and cache counters
// for external monitoring.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors published by the engine and cache.
type Metrics struct {
	registry *prometheus.Registry

	AssessmentsTotal   *prometheus.CounterVec
	RuleFiresTotal     *prometheus.CounterVec
	BatchRecordsTotal  prometheus.Counter
	BatchFailuresTotal prometheus.Counter
	ReviewSignalsTotal *prometheus.CounterVec

	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	FetchesTotal       prometheus.Counter
	FetchFailuresTotal prometheus.Counter
	InvalidationsTotal prometheus.Counter
}

// New creates a Metrics set registered on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cetc_assessments_total",
			Help: "Assessments produced, partitioned by classification band.",
		}, []string{"band"}),
		RuleFiresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cetc_rule_fires_total",
			Help: "Scoring rule activations, partitioned by rule kind.",
		}, []string{"kind"}),
		BatchRecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cetc_batch_records_total",
			Help: "Records submitted for batch classification.",
		}),
		BatchFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cetc_batch_failures_total",
			Help: "Records that failed during batch classification.",
		}),
		ReviewSignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cetc_review_signals_total",
			Help: "Review-queue signals emitted, partitioned by reason.",
		}, []string{"reason"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cetc_enrichment_cache_hits_total",
			Help: "Enrichment lookups served from cache.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cetc_enrichment_cache_misses_total",
			Help: "Enrichment lookups that required a fetch.",
		}),
		FetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cetc_enrichment_fetches_total",
			Help: "External enrichment fetches issued.",
		}),
		FetchFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cetc_enrichment_fetch_failures_total",
			Help: "External enrichment fetches that failed.",
		}),
		InvalidationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cetc_enrichment_invalidations_total",
			Help: "Enrichment entries removed by explicit invalidation.",
		}),
	}

	registry.MustRegister(
		m.AssessmentsTotal,
		m.RuleFiresTotal,
		m.BatchRecordsTotal,
		m.BatchFailuresTotal,
		m.ReviewSignalsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.FetchesTotal,
		m.FetchFailuresTotal,
		m.InvalidationsTotal,
	)

	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
