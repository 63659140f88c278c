// Package observability provides Prometheus metrics for the runtime.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the runtime's Prometheus collectors on a private registry,
// so tests can build independent instances without collector name clashes.
type Metrics struct {
	registry *prometheus.Registry

	GraphDeploys  prometheus.Counter
	Simulations   *prometheus.CounterVec
	PlanDuration  prometheus.Histogram
	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewMetrics creates and registers the runtime collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		GraphDeploys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runtime_graph_deploys_total",
			Help: "Number of graph collections installed as runtime state",
		}),
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runtime_simulations_total",
			Help: "Number of simulated request dispatches by outcome",
		}, []string{"outcome"}),
		PlanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "runtime_plan_duration_seconds",
			Help:    "Time spent computing the execution order",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests by method and status",
		}, []string{"method", "status"}),
		HTTPDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.GraphDeploys,
		m.Simulations,
		m.PlanDuration,
		m.HTTPRequests,
		m.HTTPDurations,
	)

	return m
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
