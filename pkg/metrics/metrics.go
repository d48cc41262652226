package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PortfolioRequests counts portfolio lookups by outcome (ok, cached, invalid, error).
	PortfolioRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_requests_total",
			Help: "Total portfolio lookups by outcome.",
		},
		[]string{"outcome"},
	)

	// PortfolioDuration observes end-to-end aggregation latency.
	PortfolioDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_request_duration_seconds",
			Help:    "End-to-end portfolio aggregation latency.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// UpstreamDegraded counts upstream sources that timed out or errored and
	// were degraded to an empty sub-result.
	UpstreamDegraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_degraded_total",
			Help: "Upstream fetches degraded to empty results, by source.",
		},
		[]string{"source"},
	)

	// CacheHits counts response-cache hits.
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "response_cache_hits_total",
			Help: "Portfolio response cache hits.",
		},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		PortfolioRequests,
		PortfolioDuration,
		UpstreamDegraded,
		CacheHits,
	)
}
