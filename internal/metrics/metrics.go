// Package metrics holds the Prometheus instrumentation for the webhook
// surface. A dedicated registry is used so tests and embedders never collide
// with the global default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values for the request counter.
const (
	OutcomeAccepted     = "accepted"
	OutcomeMalformed    = "malformed"
	OutcomeUnauthorized = "unauthorized"
	OutcomeUnavailable  = "unavailable"
)

// Metrics bundles the webhook counters with their registry.
type Metrics struct {
	registry *prometheus.Registry

	// Requests counts handled webhook requests by outcome.
	Requests *prometheus.CounterVec

	// UpdatesEnqueued counts updates accepted into the queue.
	UpdatesEnqueued prometheus.Counter
}

// New creates a Metrics bundle backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webhook",
			Name:      "requests_total",
			Help:      "Webhook requests handled, by outcome.",
		}, []string{"outcome"}),
		UpdatesEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "webhook",
			Name:      "updates_enqueued_total",
			Help:      "Updates accepted into the listener queue.",
		}),
	}

	registry.MustRegister(m.Requests, m.UpdatesEnqueued)
	return m
}

// ObserveRequest records one handled request. Nil-safe so callers without
// metrics configured can pass a nil bundle.
func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAccepted {
		m.UpdatesEnqueued.Inc()
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
