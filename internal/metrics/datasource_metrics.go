package metrics

import "github.com/prometheus/client_golang/prometheus"

// Datasource counter vectors
var (
	DatasourceFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datasource_fetches_total",
		Help:      "Total number of table fetches by source and status",
	}, []string{"source", "status"})

	DatasourceCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datasource_cache_hits_total",
		Help:      "Total number of table fetches served from cache",
	}, []string{"source"})

	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP client circuit breaker trips",
	})
)

// Datasource histogram vectors
var (
	DatasourceFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "datasource_fetch_duration_seconds",
		Help:      "Duration of table fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// RecordFetch records a table fetch outcome.
func RecordFetch(source string, success bool, durationSeconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	DatasourceFetchesTotal.WithLabelValues(source, status).Inc()
	DatasourceFetchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordCacheHit records a fetch served from cache.
func RecordCacheHit(source string) {
	DatasourceCacheHitsTotal.WithLabelValues(source).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}
