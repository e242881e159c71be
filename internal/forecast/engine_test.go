package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/montecarlo"
)

func TestGenerateLinear(t *testing.T) {
	historical := quarters(100, 110, 120, 130)
	cfg := models.ForecastConfig{ForecastPeriods: 2, Algorithm: models.AlgorithmLinear}

	result, err := Generate(historical, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, models.AlgorithmLinear, result.Algorithm)
	assert.False(t, result.FellBack())
	assert.Equal(t, historical, result.Historical)
	assert.Equal(t, []float64{140, 150}, predictedValues(result.Predictions))
	assert.InDelta(t, 100.0, result.Confidence, 1e-9)
	assert.Nil(t, result.MonteCarlo)
	assert.Empty(t, result.Warnings)
}

func TestGenerateInsufficientData(t *testing.T) {
	cfg := models.ForecastConfig{ForecastPeriods: 2, Algorithm: models.AlgorithmLinear}

	result, err := Generate(quarters(100, 110), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, result)

	var dataErr *models.InsufficientDataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, 3, dataErr.Required)
	assert.Equal(t, 2, dataErr.Actual)
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	historical := quarters(100, 110, 120, 130)

	tests := []struct {
		name string
		cfg  models.ForecastConfig
	}{
		{"zero horizon", models.ForecastConfig{ForecastPeriods: 0, Algorithm: models.AlgorithmLinear}},
		{"unknown algorithm", models.ForecastConfig{ForecastPeriods: 2, Algorithm: "arima"}},
		{"zero simulations", models.ForecastConfig{
			ForecastPeriods: 2,
			Algorithm:       models.AlgorithmLinear,
			MonteCarlo:      &models.MonteCarloConfig{Simulations: 0},
		}},
		{"horizon above ceiling", models.ForecastConfig{ForecastPeriods: models.MaxForecastPeriods + 1, Algorithm: models.AlgorithmLinear}},
		{"simulations above ceiling", models.ForecastConfig{
			ForecastPeriods: 2,
			Algorithm:       models.AlgorithmLinear,
			MonteCarlo:      &models.MonteCarloConfig{Simulations: models.MaxSimulations + 1},
		}},
		{"simulation grid too large", models.ForecastConfig{
			ForecastPeriods: models.MaxForecastPeriods,
			Algorithm:       models.AlgorithmLinear,
			MonteCarlo:      &models.MonteCarloConfig{Simulations: models.MaxSimulations},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Generate(historical, tt.cfg, nil)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, models.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestGenerateSeasonalFallback(t *testing.T) {
	historical := quarters(100, 120, 115, 140, 150)
	cfg := models.ForecastConfig{ForecastPeriods: 3, Algorithm: models.AlgorithmSeasonal}

	seasonal, err := Generate(historical, cfg, nil)
	require.NoError(t, err)
	cfg.Algorithm = models.AlgorithmLinear
	linear, err := Generate(historical, cfg, nil)
	require.NoError(t, err)

	assert.True(t, seasonal.FellBack())
	assert.Equal(t, models.AlgorithmSeasonal, seasonal.RequestedAlgorithm)
	assert.Equal(t, linear.Predictions, seasonal.Predictions)
}

func TestGenerateWithMonteCarlo(t *testing.T) {
	historical := quarters(100, 110, 125, 130, 140)
	cfg := models.ForecastConfig{
		ForecastPeriods: 4,
		Algorithm:       models.AlgorithmExponential,
		MonteCarlo:      &models.MonteCarloConfig{Simulations: 200, VolatilityFactor: 1, DriftFactor: 1},
	}

	first, err := Generate(historical, cfg, montecarlo.NewSource(7))
	require.NoError(t, err)
	second, err := Generate(historical, cfg, montecarlo.NewSource(7))
	require.NoError(t, err)

	require.NotNil(t, first.MonteCarlo)
	assert.Equal(t, 200, first.MonteCarlo.Simulations)
	assert.Len(t, first.MonteCarlo.Percentiles.P50, 4)
	assert.Equal(t, first.Predictions[0].Period, first.MonteCarlo.Percentiles.P50[0].Period)
	assert.Equal(t, first.MonteCarlo, second.MonteCarlo)
}

func TestGenerateCarriesDegenerateFitWarnings(t *testing.T) {
	cfg := models.ForecastConfig{ForecastPeriods: 1, Algorithm: models.AlgorithmLinear}

	result, err := Generate(series(nil, 0, 10, 20, 30), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"linear: 1 zero-valued actual(s) excluded from MAPE"}, result.Warnings)
}

func TestFromTable(t *testing.T) {
	table := models.Table{
		Header: []string{"Fiscal_Quarter", "ARR_USD"},
		Rows: [][]string{
			{"Q3 2024", "$1,200"},
			{"Q1 2024", "$1,000"},
			{"Q2 2024", "$1,100"},
			{"Q4 2024", "$1,300"},
		},
	}
	cfg := models.ForecastConfig{TargetColumn: "arr", TimeColumn: "quarter", ForecastPeriods: 2, Algorithm: models.AlgorithmLinear}

	result, err := FromTable(table, cfg, nil)
	require.NoError(t, err)
	require.Len(t, result.Predictions, 2)
	assert.Equal(t, "Q1 2025", result.Predictions[0].Period)
	assert.InDelta(t, 1400.0, result.Predictions[0].Value, 1e-9)
	assert.Equal(t, "Q2 2025", result.Predictions[1].Period)
	assert.True(t, result.Predictions[0].HasDate())
}

func TestFromTableMonthlyLabels(t *testing.T) {
	table := models.Table{
		Header: []string{"Month", "ARR"},
		Rows:   [][]string{{"Oct 2024", "100"}, {"Nov 2024", "110"}, {"Dec 2024", "120"}},
	}
	cfg := models.ForecastConfig{ForecastPeriods: 3, Algorithm: models.AlgorithmLinear}

	result, err := FromTable(table, cfg, nil)
	require.NoError(t, err)
	require.Len(t, result.Predictions, 3)
	labels := []string{result.Predictions[0].Period, result.Predictions[1].Period, result.Predictions[2].Period}
	assert.Equal(t, []string{"Jan 2025", "Feb 2025", "Mar 2025"}, labels)
	require.True(t, result.Predictions[0].HasDate())
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), *result.Predictions[0].Date)
}

func TestFromTableColumnNotFound(t *testing.T) {
	table := models.Table{Header: []string{"Name"}, Rows: [][]string{{"x"}}}
	cfg := models.ForecastConfig{ForecastPeriods: 2, Algorithm: models.AlgorithmLinear}

	_, err := FromTable(table, cfg, nil)
	assert.True(t, errors.Is(err, models.ErrColumnNotFound))
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 100.0, Confidence(models.FitMetrics{R2: 1, MAPE: 0}))
	assert.Equal(t, 0.0, Confidence(models.FitMetrics{R2: -2, MAPE: 250}))
	assert.InDelta(t, 85.0, Confidence(models.FitMetrics{R2: 0.8, MAPE: 10}), 1e-9)
}
