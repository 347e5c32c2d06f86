package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "hospital_records"

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authEvents      *prometheus.CounterVec
	accessDenied    *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry, so several servers can live in one
// process (tests) without clashing on the default registerer.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status",
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		authEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "auth_events_total",
			Help:      "Identity operations by outcome",
		}, []string{"operation", "outcome"}),
		accessDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "access_denied_total",
			Help:      "Requests refused by the role gate, by role",
		}, []string{"role"}),
	}
}

func (m *Metrics) observeRequest(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) authEvent(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.authEvents.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) denied(role string) {
	if role == "" {
		role = "unknown"
	}
	m.accessDenied.WithLabelValues(role).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
