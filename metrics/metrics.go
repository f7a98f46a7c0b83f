// Package metrics exports the Prometheus collectors of the MyMedic API:
//   - http_request_total, http_request_duration_seconds, http_request_in_flight
//   - mymedic_interaction_checks_total by highest severity found
//   - mymedic_interaction_pairs and mymedic_catalog_medications, set at load
//   - mymedic_assistant_requests_total by outcome, mymedic_assistant_sessions
//   - rate_limiter_buckets_total
//
// All collectors are registered with the default registry at init.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Assistant request outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

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
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15, 60},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	InteractionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mymedic_interaction_checks_total",
			Help: "Interaction checks by highest severity found",
		},
		[]string{"severity"},
	)

	InteractionPairs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mymedic_interaction_pairs",
			Help: "Unordered medication pairs in the interaction index",
		},
	)

	CatalogMedications = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mymedic_catalog_medications",
			Help: "Medications in the catalog",
		},
	)

	AssistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mymedic_assistant_requests_total",
			Help: "Assistant exchanges by outcome",
		},
		[]string{"outcome"},
	)

	AssistantSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mymedic_assistant_sessions",
			Help: "Assistant conversations held in memory",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen in last ~5 minutes)",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestTotals,
		HTTPRequestDuration,
		HTTPRequestInFlight,
		InteractionChecksTotal,
		InteractionPairs,
		CatalogMedications,
		AssistantRequestsTotal,
		AssistantSessions,
		RateLimiterBucketsTotal,
	)
}
