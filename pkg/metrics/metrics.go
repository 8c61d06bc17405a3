package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// FetchAttemptsTotal counts browser attempts; status is success, insufficient or failure.
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_attempts_total",
			Help: "Total number of article fetch attempts.",
		},
		[]string{"method", "status", "error_type"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Duration of article fetch attempts, including browser start and settle wait.",
			Buckets: []float64{1, 2, 5, 10, 15, 30, 60, 120},
		},
		[]string{"method"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_cache_lookups_total",
			Help: "Article cache lookups by result.",
		},
		[]string{"result"}, // hit, miss, error
	)
)
