package forecast

import (
	"math"

	"github.com/yourusername/arr-forecast/internal/extract"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/montecarlo"
)

// Generate validates the configuration, fits the configured algorithm and, when
// requested, runs the Monte Carlo stage over its predictions. src may be nil, in
// which case the simulation is seeded from the Monte Carlo config.
func Generate(historical []models.TimePoint, cfg models.ForecastConfig, src montecarlo.RandomSource) (*models.ForecastResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkLength(historical, MinHistoricalPoints); err != nil {
		return nil, err
	}

	alg, err := Select(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	fit, err := alg.Fit(historical, cfg.ForecastPeriods)
	if err != nil {
		return nil, err
	}

	result := &models.ForecastResult{
		Algorithm:          fit.Algorithm,
		RequestedAlgorithm: cfg.Algorithm,
		Historical:         append([]models.TimePoint(nil), historical...),
		Predictions:        fit.Predictions,
		Metrics:            fit.Metrics,
		Confidence:         Confidence(fit.Metrics),
		Insights:           fit.Insights,
	}
	for _, w := range fit.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}

	if cfg.MonteCarlo != nil {
		mc := montecarlo.Simulate(historical, fit.Predictions, *cfg.MonteCarlo, src)
		result.MonteCarlo = &mc
	}

	return result, nil
}

// FromTable extracts the historical series from a table and forecasts it
func FromTable(table models.Table, cfg models.ForecastConfig, src montecarlo.RandomSource) (*models.ForecastResult, error) {
	historical, err := extract.Extract(table, cfg)
	if err != nil {
		return nil, err
	}
	return Generate(historical, cfg, src)
}

// Confidence blends fit strength and error rate into a score in [0, 100]
func Confidence(m models.FitMetrics) float64 {
	r2 := math.Min(1, math.Max(0, m.R2))
	errorScore := math.Max(0, 100-m.MAPE)
	return (r2*100 + errorScore) / 2
}
