package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BestEffortFailures counts secondary steps (image cleanup, cache
	// invalidation) that failed without failing their request.
	BestEffortFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cecilia_best_effort_failures_total",
		Help: "Total number of best-effort steps that failed",
	}, []string{"operation"})

	// PostWrites counts successful post mutations by kind.
	PostWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cecilia_post_writes_total",
		Help: "Total number of post create, update and delete operations",
	}, []string{"operation"})

	// StorageLatency records object store call latency by operation.
	StorageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cecilia_storage_latency_seconds",
		Help:    "Object store call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "operation"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cecilia_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// CacheLookups counts cached document reads by result (hit or miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cecilia_cache_lookups_total",
		Help: "Total number of cache reads by result",
	}, []string{"result"})
)

// TrackStorage returns a function that records latency when called (e.g. defer).
func TrackStorage(driver, operation string) func() {
	start := time.Now()
	return func() {
		StorageLatency.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
	}
}
