// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
	OutcomeAborted = "aborted"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdl_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialdl_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	StrategyAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdl_strategy_attempts_total",
			Help: "Resolution strategy attempts by outcome",
		},
		[]string{"platform", "strategy", "outcome"},
	)

	StrategyAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialdl_strategy_attempt_duration_seconds",
			Help:    "Duration of individual strategy attempts",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 20, 30, 60},
		},
		[]string{"platform", "strategy"},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdl_resolutions_total",
			Help: "Completed resolution chains by outcome",
		},
		[]string{"platform", "outcome"},
	)

	DirectStreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdl_direct_streams_total",
			Help: "Direct streaming requests by outcome",
		},
		[]string{"platform", "outcome"},
	)

	DirectStreamBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socialdl_direct_stream_bytes_total",
			Help: "Bytes relayed by direct streaming",
		},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordStrategyAttempt records one strategy attempt
func RecordStrategyAttempt(platform, strategy, outcome string, duration float64) {
	StrategyAttemptsTotal.WithLabelValues(platform, strategy, outcome).Inc()
	StrategyAttemptDuration.WithLabelValues(platform, strategy).Observe(duration)
}

// RecordResolution records a finished chain
func RecordResolution(platform, outcome string) {
	ResolutionsTotal.WithLabelValues(platform, outcome).Inc()
}

// RecordDirectStream records a direct streaming request and its relayed bytes
func RecordDirectStream(platform, outcome string, bytes int64) {
	DirectStreamsTotal.WithLabelValues(platform, outcome).Inc()
	if bytes > 0 {
		DirectStreamBytes.Add(float64(bytes))
	}
}
