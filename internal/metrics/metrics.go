// Package metrics registers the Prometheus collectors exposed at
// GET /metrics, trimmed from the teacher's application-wide Metrics
// struct to the counters this module's operations actually drive:
// R-tree traversal, page storage, and the node-key cache.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the module registers.
type Metrics struct {
	InsertsTotal   prometheus.CounterVec
	InsertDuration prometheus.HistogramVec
	SearchesTotal  prometheus.CounterVec
	SearchDuration prometheus.HistogramVec
	SplitsTotal    prometheus.Counter
	TreeDepth      prometheus.Gauge

	PageReadsTotal     prometheus.CounterVec
	PageWritesTotal    prometheus.CounterVec
	PageOpDuration     prometheus.HistogramVec
	PageStoreConns     prometheus.Gauge

	NodeCacheHitsTotal   prometheus.Counter
	NodeCacheMissesTotal prometheus.Counter

	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers every collector, idempotently.
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			InsertsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{Name: "fp_inserts_total", Help: "Total number of records inserted into the index"},
				[]string{"status"},
			),
			InsertDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "fp_insert_duration_seconds",
					Help:    "Insert latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"status"},
			),
			SearchesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{Name: "fp_searches_total", Help: "Total number of index searches"},
				[]string{"strategy"},
			),
			SearchDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "fp_search_duration_seconds",
					Help:    "Search latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"strategy"},
			),
			SplitsTotal: promauto.NewCounter(
				prometheus.CounterOpts{Name: "fp_picksplit_total", Help: "Total number of page splits performed by picksplit"},
			),
			TreeDepth: promauto.NewGauge(
				prometheus.GaugeOpts{Name: "fp_tree_depth", Help: "Current depth of the R-tree"},
			),

			PageReadsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{Name: "fp_page_reads_total", Help: "Total number of page store reads"},
				[]string{"status"},
			),
			PageWritesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{Name: "fp_page_writes_total", Help: "Total number of page store writes"},
				[]string{"status"},
			),
			PageOpDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "fp_page_op_duration_seconds",
					Help:    "Page store operation latency in seconds",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
				},
				[]string{"operation"},
			),
			PageStoreConns: promauto.NewGauge(
				prometheus.GaugeOpts{Name: "fp_page_store_connections_open", Help: "Number of open page store connections"},
			),

			NodeCacheHitsTotal: promauto.NewCounter(
				prometheus.CounterOpts{Name: "fp_nodecache_hits_total", Help: "Total number of node-key cache hits"},
			),
			NodeCacheMissesTotal: promauto.NewCounter(
				prometheus.CounterOpts{Name: "fp_nodecache_misses_total", Help: "Total number of node-key cache misses"},
			),

			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{Name: "fp_errors_total", Help: "Total number of errors by type"},
				[]string{"error_type", "operation"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance, initializing it if needed.
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
