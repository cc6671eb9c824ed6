// Package metrics exposes Prometheus collectors for the ingest, query and
// alignment paths, registered on /metrics alongside the data endpoints.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestDuration records wall-clock time spent ingesting one file,
	// labeled by size class (small/large).
	IngestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wavecache_ingest_duration_seconds",
		Help:    "Time spent ingesting one uploaded CSV file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"size_class"})

	// ActiveDatasets tracks the current number of datasets in the registry.
	ActiveDatasets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavecache_active_datasets",
		Help: "Number of datasets currently held by the registry.",
	})

	// QueryDuration records slice/query latency, labeled by endpoint.
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wavecache_query_duration_seconds",
		Help:    "Latency of a channel slice query, by endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// AlignDuration records the time spent computing an alignment, labeled
	// by surface (hierarchical/dataset).
	AlignDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wavecache_align_duration_seconds",
		Help:    "Latency of an alignment computation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"surface"})
)
