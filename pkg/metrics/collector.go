// Package metrics registers and records Prometheus instrumentation for the
// scrape pipeline, the calculator and the drift scheduler.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_requests_total",
			Help: "Total number of external source fetches labeled by source and outcome",
		},
		[]string{"source", "status"},
	)
	scrapeDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrape_duration_seconds",
			Help:    "Duration of external source fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_lookups_total",
			Help: "Market-data cache lookups split by hit and miss",
		},
		[]string{"result"},
	)
	budgetComputationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "budget_computations_total",
			Help: "Total number of full budget computations",
		},
	)
	driftRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drift_runs_total",
			Help: "Drift scheduler runs labeled by outcome (completed, skipped)",
		},
		[]string{"status"},
	)
	driftNotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drift_notifications_total",
			Help: "Total number of drift notifications created",
		},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of handled HTTP requests labeled by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of handled HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// RecordScrape increments the fetch counter and records duration for one
// external source call.
func RecordScrape(source, status string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	scrapeRequestsTotal.WithLabelValues(source, status).Inc()
	scrapeDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}

	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

// RecordBudgetComputation counts one full budget computation.
func RecordBudgetComputation() {
	budgetComputationsTotal.Inc()
}

// RecordDriftRun counts one scheduler tick outcome.
func RecordDriftRun(status string) {
	if status == "" {
		status = "unknown"
	}

	driftRunsTotal.WithLabelValues(status).Inc()
}

// RecordDriftNotification counts one created notification.
func RecordDriftNotification() {
	driftNotificationsTotal.Inc()
}

// RecordHTTPRequest counts one handled request and records its duration.
func RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}

	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(route).Observe(duration.Seconds())
}
