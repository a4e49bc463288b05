package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordBuild records an index build attempt
func (r *Registry) RecordBuild(status string, duration time.Duration) {
	r.IndexBuildsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		r.IndexBuildDuration.Observe(duration.Seconds())
	}
}

// SetIndexShape publishes the shape of the currently loaded index
func (r *Registry) SetIndexShape(keys, depth, layoutBytes int) {
	r.IndexKeysTotal.Set(float64(keys))
	r.IndexDepth.Set(float64(depth))
	r.IndexLayoutBytes.Set(float64(layoutBytes))
}

// RecordQuery records one query execution
func (r *Registry) RecordQuery(operation string, duration time.Duration) {
	r.QueriesTotal.WithLabelValues(operation).Inc()
	r.QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
