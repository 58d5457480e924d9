// Package metrics exposes Prometheus instrumentation for the chat
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics holds the collectors for the send-message pipeline.
type Metrics struct {
	registry *prometheus.Registry

	MessagesSent       prometheus.Counter
	GenerationFailures prometheus.Counter
	GenerationLatency  prometheus.Histogram
	SessionsCreated    prometheus.Counter
}

// New creates the collectors on a private registry so tests can build
// as many instances as they need.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Number of user messages accepted by the send pipeline.",
		}),
		GenerationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_generation_failures_total",
			Help: "Number of response generations that ended in an error turn.",
		}),
		GenerationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_generation_duration_seconds",
			Help:    "Latency of response generation calls.",
			Buckets: prometheus.DefBuckets,
		}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_sessions_created_total",
			Help: "Number of chat sessions created.",
		}),
	}

	registry.MustRegister(
		m.MessagesSent,
		m.GenerationFailures,
		m.GenerationLatency,
		m.SessionsCreated,
	)

	return m
}

// Handler returns the /metrics endpoint for this instance's registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
