// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mail_triage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "path", "status"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mail_triage_llm_call_duration_seconds",
			Help:    "Completion API call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"kind", "outcome"},
	)

	GmailCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mail_triage_gmail_call_duration_seconds",
			Help:    "Gmail API call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation", "outcome"},
	)

	// TriageFallbacks counts emails whose urgency or summary came from a
	// fallback value instead of the model.
	TriageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_triage_fallbacks_total",
			Help: "Total number of fallback values used during triage",
		},
		[]string{"kind"}, // kind: urgency, summary
	)

	EmailsPrioritized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_triage_emails_prioritized_total",
			Help: "Total number of prioritized emails by urgency",
		},
		[]string{"urgency"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

func RecordLLMCall(kind, outcome string, d time.Duration) {
	LLMCallDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

func RecordGmailCall(operation, outcome string, d time.Duration) {
	GmailCallDuration.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

func IncrementFallback(kind string) {
	TriageFallbacks.WithLabelValues(kind).Inc()
}

func IncrementPrioritized(urgency string) {
	EmailsPrioritized.WithLabelValues(urgency).Inc()
}

// Outcome maps an error to a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
