package heightmap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_batches_fetched_total",
		Help: "The total number of batches fetched successfully",
	})
	batchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_batches_failed_total",
		Help: "The total number of batches that failed to fetch",
	})
	pointsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_points_fetched_total",
		Help: "The total number of points with a fetched elevation",
	})
	pointCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_point_cache_hits_total",
		Help: "The total number of hits on the point cache",
	})
	pointCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_point_cache_misses_total",
		Help: "The total number of misses on the point cache",
	})
	pointCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_point_cache_evictions_total",
		Help: "The total number of evictions from the point cache",
	})
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "heightmap_request_duration_seconds",
		Help:    "The duration of elevation service requests",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

// WriteMetricsTextfile writes all metrics registered with the default registry
// to filename in the Prometheus text format, for the node_exporter textfile
// collector.
func WriteMetricsTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, prometheus.DefaultGatherer)
}
