// Package observability provides Prometheus collectors for upstream calls,
// adapter outcomes and searches.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"carwise/internal/core"
)

// Metrics implements upstream.Hooks and records adapter outcomes and search sizes.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	adapterOutcomes  *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	searchCandidates prometheus.Histogram
	searchResults    prometheus.Histogram
}

// NewMetrics registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carwise",
			Name:      "upstream_requests_total",
			Help:      "Upstream vehicle-data requests by source and HTTP status (0 = no response).",
		}, []string{"source", "status"}),
		upstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carwise",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream vehicle-data request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		adapterOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carwise",
			Name:      "adapter_outcomes_total",
			Help:      "Adapter call outcomes (ok, degraded, failed).",
		}, []string{"adapter", "outcome"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carwise",
			Name:      "cache_lookups_total",
			Help:      "Adapter cache lookups by result.",
		}, []string{"adapter", "result"}),
		searchCandidates: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carwise",
			Name:      "search_candidates",
			Help:      "Candidate pool size after normalization and dedupe.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		searchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carwise",
			Name:      "search_results",
			Help:      "Ranked results returned per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}),
	}
}

// ObserveRequest records one upstream round-trip.
func (m *Metrics) ObserveRequest(source string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(source, strconv.Itoa(status)).Inc()
	m.upstreamLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveOutcome records how an adapter call ended.
func (m *Metrics) ObserveOutcome(adapter string, outcome core.Outcome) {
	if m == nil {
		return
	}
	m.adapterOutcomes.WithLabelValues(adapter, outcome.String()).Inc()
}

// ObserveCache records a cache hit or miss for an adapter.
func (m *Metrics) ObserveCache(adapter string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(adapter, result).Inc()
}

// ObserveSearch records pool and result sizes for one search.
func (m *Metrics) ObserveSearch(candidates, results int) {
	if m == nil {
		return
	}
	m.searchCandidates.Observe(float64(candidates))
	m.searchResults.Observe(float64(results))
}
