// Package metrics provides centralized Prometheus metrics registry for the forecast service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arr_forecast"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ForecastRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_runs_total",
		Help:      "Total number of forecast runs by algorithm and status",
	}, []string{"algorithm", "status"})
	ForecastFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_fallbacks_total",
		Help:      "Total number of algorithm fallbacks",
	}, []string{"requested", "used"})
	MonteCarloSimulationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monte_carlo_simulations_total",
		Help:      "Total number of simulated Monte Carlo paths",
	})
)

// Gauge metrics
var (
	ForecastLastConfidence = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "forecast_last_confidence",
		Help:      "Confidence of the most recent forecast for each source",
	}, []string{"source"})
)

// Histogram metrics
var (
	ForecastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "forecast_duration_seconds",
		Help:      "Duration of forecast runs in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
	ForecastConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "forecast_confidence",
		Help:      "Confidence scores of completed forecasts",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register forecast metrics
		registry.MustRegister(ForecastRunsTotal)
		registry.MustRegister(ForecastFallbacksTotal)
		registry.MustRegister(MonteCarloSimulationsTotal)
		registry.MustRegister(ForecastLastConfidence)
		registry.MustRegister(ForecastDuration)
		registry.MustRegister(ForecastConfidence)

		// Register datasource metrics
		registry.MustRegister(DatasourceFetchesTotal)
		registry.MustRegister(DatasourceFetchDuration)
		registry.MustRegister(DatasourceCacheHitsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordForecast records a completed forecast run.
func RecordForecast(source, algorithm string, confidence, durationSeconds float64) {
	ForecastRunsTotal.WithLabelValues(algorithm, "success").Inc()
	ForecastDuration.Observe(durationSeconds)
	ForecastConfidence.Observe(confidence)
	if source != "" {
		ForecastLastConfidence.WithLabelValues(source).Set(confidence)
	}
}

// RecordForecastFailure records a forecast run that returned an error.
func RecordForecastFailure(algorithm string) {
	ForecastRunsTotal.WithLabelValues(algorithm, "error").Inc()
}

// RecordFallback records the selector substituting one algorithm for another.
func RecordFallback(requested, used string) {
	ForecastFallbacksTotal.WithLabelValues(requested, used).Inc()
}

// RecordMonteCarlo records simulated paths.
func RecordMonteCarlo(simulations int) {
	MonteCarloSimulationsTotal.Add(float64(simulations))
}
