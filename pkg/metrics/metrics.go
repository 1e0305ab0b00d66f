// Package metrics exports inventory results in the Prometheus text format for
// the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thannaske/s3inventory/pkg/inventory"
)

const namespace = "s3inventory"

// Recorder collects the gauges and counters of one inventory run.
type Recorder struct {
	registry *prometheus.Registry

	bucketSize    *prometheus.GaugeVec
	regionSize    *prometheus.GaugeVec
	regionBuckets *prometheus.GaugeVec
	totalSize     prometheus.Gauge
	queryFailures *prometheus.CounterVec
	runDuration   prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		bucketSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bucket_size_bytes",
			Help:      "Bucket size summed over all storage types.",
		}, []string{"bucket", "region"}),
		regionSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "region_size_bytes",
			Help:      "Total size of all buckets in a region.",
		}, []string{"region"}),
		regionBuckets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "region_buckets",
			Help:      "Number of buckets in a region.",
		}, []string{"region"}),
		totalSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_size_bytes",
			Help:      "Total size of all buckets.",
		}),
		queryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metric_query_failures_total",
			Help:      "CloudWatch queries that failed and were counted as zero.",
		}, []string{"region", "storage_class"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last inventory run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last inventory run finished.",
		}),
	}

	r.registry.MustRegister(
		r.bucketSize,
		r.regionSize,
		r.regionBuckets,
		r.totalSize,
		r.queryFailures,
		r.runDuration,
		r.lastRun,
	)
	return r
}

// QueryFailed implements inventory.Observer.
func (r *Recorder) QueryFailed(region, storageClass string) {
	r.queryFailures.WithLabelValues(region, storageClass).Inc()
}

// Observe records the results of a finished run.
func (r *Recorder) Observe(rollup inventory.Rollup, duration time.Duration, finished time.Time) {
	r.bucketSize.Reset()
	for _, b := range rollup.Buckets {
		r.bucketSize.WithLabelValues(b.Name, b.Region).Set(b.SizeBytes)
	}

	r.regionSize.Reset()
	r.regionBuckets.Reset()
	for _, rr := range rollup.Regions {
		r.regionSize.WithLabelValues(rr.Region).Set(rr.TotalSizeBytes)
		r.regionBuckets.WithLabelValues(rr.Region).Set(float64(rr.BucketCount))
	}

	r.totalSize.Set(rollup.TotalBytes)
	r.runDuration.Set(duration.Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path, replacing it atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
