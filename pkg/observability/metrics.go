package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the authentication pipeline
type Metrics struct {
	registry *prometheus.Registry

	// Authentication outcomes by channel (redirect, success, fail, error)
	AuthOutcomesTotal *prometheus.CounterVec

	// OpenAM provider calls
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	// Application sessions
	SessionOpsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics. A nil registry
// gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		AuthOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openam_auth_outcomes_total",
				Help: "Total number of authentication outcomes by channel",
			},
			[]string{"outcome"},
		),
		ProviderRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openam_provider_requests_total",
				Help: "Total number of calls to the OpenAM server",
			},
			[]string{"op", "status"},
		),
		ProviderRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "openam_provider_request_duration_seconds",
				Help:    "OpenAM call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		SessionOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openam_session_ops_total",
				Help: "Total number of application session store operations",
			},
			[]string{"op", "status"},
		),
	}

	registry.MustRegister(
		m.AuthOutcomesTotal,
		m.ProviderRequestsTotal,
		m.ProviderRequestDuration,
		m.SessionOpsTotal,
	)

	return m
}

// ObserveOutcome records one authentication outcome.
func (m *Metrics) ObserveOutcome(outcome string) {
	m.AuthOutcomesTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
