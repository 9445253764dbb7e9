// Package metrics provides Prometheus metrics for the disease insight API:
// HTTP server series (request totals, latency, in-flight), model gateway
// series (per-provider request totals and latency) and cache series
// (hits, misses, live entries).
//
// All metrics are registered with the Prometheus default registry during
// package initialization and exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15, 45},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	InsightRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_requests_total",
			Help: "Completed analysis requests by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	InsightRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_request_duration_seconds",
			Help:    "Model call latency per attempt",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 45},
		},
		[]string{"provider"},
	)

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_cache_hits_total",
			Help: "Analysis requests served from the response cache",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_cache_misses_total",
			Help: "Analysis requests that had to call the model",
		},
	)

	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "insight_cache_entries",
			Help: "Live entries in the response cache",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen recently)",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(InsightRequestsTotal)
	prometheus.MustRegister(InsightRequestDuration)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(CacheEntries)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}
