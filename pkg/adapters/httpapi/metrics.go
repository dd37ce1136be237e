package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the gateway's instrumentation. Each server gets its own
// registry so several instances can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	runsStarted    prometheus.Counter
	runsCompleted  prometheus.Counter
	runsFailed     prometheus.Counter
	inputsAccepted prometheus.Counter
	inputsRejected prometheus.Counter
	activeSessions prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{registry: prometheus.NewRegistry()}

	m.runsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "espalier",
		Name:      "runs_started_total",
		Help:      "Simulation runs started through the API.",
	})
	m.runsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "espalier",
		Name:      "runs_completed_total",
		Help:      "Simulation runs that reached the completed status.",
	})
	m.runsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "espalier",
		Name:      "runs_failed_total",
		Help:      "Simulation runs that ended in the error status.",
	})
	m.inputsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "espalier",
		Name:      "inputs_accepted_total",
		Help:      "User inputs accepted by a waiting run.",
	})
	m.inputsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "espalier",
		Name:      "inputs_rejected_total",
		Help:      "User inputs rejected for state or constraint reasons.",
	})
	m.activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "espalier",
		Name:      "active_sessions",
		Help:      "Sessions currently held by this instance.",
	})

	m.registry.MustRegister(
		m.runsStarted,
		m.runsCompleted,
		m.runsFailed,
		m.inputsAccepted,
		m.inputsRejected,
		m.activeSessions,
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
