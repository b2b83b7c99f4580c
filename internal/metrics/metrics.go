// Package metrics registers and exposes Prometheus instrumentation for the
// HTTP surface, the ingestion pipeline, and view tracking.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all the application metrics.
type Metrics struct {
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	IngestTotal    *prometheus.CounterVec
	IngestDuration *prometheus.HistogramVec

	ViewEventTotal prometheus.Counter
}

var (
	globalMetrics *Metrics
	metricsMutex  sync.Mutex
)

// New creates the Metrics instance, registering collectors with the default
// registry once. Subsequent calls return the same instance.
func New() *Metrics {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if globalMetrics != nil {
		return globalMetrics
	}

	m := &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),

		IngestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_total",
			Help: "Total number of ingestion pipeline runs",
		}, []string{"status"}),

		IngestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Ingestion pipeline duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"status"}),

		ViewEventTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "view_events_total",
			Help: "Total number of recorded view events",
		}),
	}

	registerOrGet(m.HTTPRequestTotal)
	registerOrGet(m.HTTPRequestDuration)
	registerOrGet(m.IngestTotal)
	registerOrGet(m.IngestDuration)
	registerOrGet(m.ViewEventTotal)

	globalMetrics = m
	return m
}

// registerOrGet registers a collector, returning the existing one when it
// was already registered.
func registerOrGet(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return c
}
