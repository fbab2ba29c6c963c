// Package observability owns the Prometheus collectors exported on /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "extracurricular",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, labeled by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "extracurricular",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"route", "method"})

	rosterChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "extracurricular",
		Subsystem: "roster",
		Name:      "changes_total",
		Help:      "Committed roster mutations, labeled by action.",
	}, []string{"action"})

	publishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "extracurricular",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Roster events that could not be written to Kafka.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, rosterChanges, publishFailures)
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordRosterChange counts a committed signup or unregister.
func RecordRosterChange(action string) {
	rosterChanges.WithLabelValues(action).Inc()
}

// RecordPublishFailure counts a roster event that failed to publish.
func RecordPublishFailure() {
	publishFailures.Inc()
}
