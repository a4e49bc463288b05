package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the index service
type Registry struct {
	registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Index Metrics
	IndexKeysTotal     prometheus.Gauge
	IndexDepth         prometheus.Gauge
	IndexLayoutBytes   prometheus.Gauge
	IndexBuildsTotal   *prometheus.CounterVec
	IndexBuildDuration prometheus.Histogram

	// Query Metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all metrics registered on a fresh
// Prometheus registry
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initIndexMetrics()
	r.initQueryMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
