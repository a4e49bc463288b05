package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initIndexMetrics() {
	r.IndexKeysTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fastindex_index_keys_total",
			Help: "Number of keys held by the loaded index",
		},
	)

	r.IndexDepth = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fastindex_index_tree_depth",
			Help: "Depth of the padded search tree",
		},
	)

	r.IndexLayoutBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fastindex_index_layout_bytes",
			Help: "Bytes backing the blocked tree image",
		},
	)

	r.IndexBuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastindex_index_builds_total",
			Help: "Index build attempts by outcome",
		},
		[]string{"status"},
	)

	r.IndexBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fastindex_index_build_duration_seconds",
			Help:    "Time spent building the blocked layout",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)
}

func (r *Registry) initQueryMetrics() {
	r.QueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastindex_queries_total",
			Help: "Queries served by operation",
		},
		[]string{"operation"},
	)

	r.QueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fastindex_query_duration_seconds",
			Help:    "Query latency in seconds by operation",
			Buckets: prometheus.ExponentialBuckets(0.0000001, 10, 8),
		},
		[]string{"operation"},
	)
}
