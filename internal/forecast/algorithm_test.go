package forecast

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/arr-forecast/internal/models"
)

func series(labels []string, values ...float64) []models.TimePoint {
	points := make([]models.TimePoint, len(values))
	for i, v := range values {
		label := fmt.Sprintf("%d", i+1)
		if labels != nil {
			label = labels[i]
		}
		points[i] = models.TimePoint{Period: label, Value: v}
	}
	return points
}

func quarters(values ...float64) []models.TimePoint {
	labels := make([]string, len(values))
	for i := range values {
		labels[i] = fmt.Sprintf("Q%d", i%4+1)
	}
	return series(labels, values...)
}

func predictedValues(points []models.TimePoint) []float64 {
	return models.Values(points)
}

func TestLinearRecoversExactLine(t *testing.T) {
	values := make([]float64, 10)
	for i := range values {
		values[i] = 5*float64(i) + 100
	}

	reg := fitOLS(values)
	assert.InDelta(t, 5.0, reg.Slope, 1e-6)
	assert.InDelta(t, 100.0, reg.Intercept, 1e-6)

	fit, err := Linear{}.Fit(series(nil, values...), 3)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, fit.Metrics.Trend, 1e-6)
	assert.InDelta(t, 1.0, fit.Metrics.R2, 1e-6)
	assert.InDelta(t, 0.0, fit.Metrics.MAPE, 1e-6)
	assert.InDelta(t, 150.0, fit.Predictions[0].Value, 1e-6)
	assert.Equal(t, "11", fit.Predictions[0].Period)
}

func TestLinearQuarterlyScenario(t *testing.T) {
	fit, err := Linear{}.Fit(quarters(100, 110, 120, 130), 2)
	require.NoError(t, err)

	require.Len(t, fit.Predictions, 2)
	assert.Equal(t, "Q1", fit.Predictions[0].Period)
	assert.InDelta(t, 140.0, fit.Predictions[0].Value, 1e-9)
	assert.Equal(t, "Q2", fit.Predictions[1].Period)
	assert.InDelta(t, 150.0, fit.Predictions[1].Value, 1e-9)
	assert.InDelta(t, 10.0, fit.Metrics.Trend, 1e-9)
	assert.InDelta(t, 1.0, fit.Metrics.R2, 1e-9)
	assert.Zero(t, fit.Metrics.Seasonality)
}

func TestLinearClampsNegativePredictions(t *testing.T) {
	fit, err := Linear{}.Fit(series(nil, 30, 20, 10), 5)
	require.NoError(t, err)
	for _, p := range fit.Predictions {
		assert.GreaterOrEqual(t, p.Value, 0.0)
	}
	assert.InDelta(t, -10.0, fit.Metrics.Trend, 1e-9)
}

func TestMovingAverageScenario(t *testing.T) {
	alg := MovingAverage{}
	assert.Equal(t, 2, alg.Window(4))
	assert.Equal(t, 1, alg.Window(3))
	assert.Equal(t, 4, alg.Window(20))

	fit, err := alg.Fit(quarters(100, 110, 120, 130), 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{125, 125}, predictedValues(fit.Predictions))
	assert.Zero(t, fit.Metrics.Trend)
	assert.Zero(t, fit.Metrics.Seasonality)
	// fitted 105 vs 120 and 115 vs 130
	assert.InDelta(t, (15.0/120+15.0/130)/2*100, fit.Metrics.MAPE, 1e-9)
}

func TestExponentialSmoothing(t *testing.T) {
	fit, err := NewExponential().Fit(series(nil, 10, 20, 30), 3)
	require.NoError(t, err)

	// s = 10, 13, 18.1
	for _, p := range fit.Predictions {
		assert.InDelta(t, 18.1, p.Value, 1e-9)
	}
	assert.InDelta(t, 4.05, fit.Metrics.Trend, 1e-9)
	assert.Equal(t, []string{"4", "5", "6"}, []string{fit.Predictions[0].Period, fit.Predictions[1].Period, fit.Predictions[2].Period})
}

func TestExponentialConstantSeries(t *testing.T) {
	fit, err := NewExponential().Fit(series(nil, 50, 50, 50, 50), 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, fit.Metrics.R2)
	assert.Zero(t, fit.Metrics.MAPE)
	assert.Zero(t, fit.Metrics.Trend)
}

func TestSeasonalPureCycle(t *testing.T) {
	fit, err := NewSeasonal().Fit(quarters(100, 200, 100, 200, 100, 200, 100, 200), 4)
	require.NoError(t, err)

	assert.Equal(t, models.AlgorithmSeasonal, fit.Algorithm)
	assert.InDeltaSlice(t, []float64{100, 200, 100, 200}, predictedValues(fit.Predictions), 1e-6)
	assert.InDelta(t, 1.0, fit.Metrics.R2, 1e-9)
	assert.InDelta(t, 0.0, fit.Metrics.MAPE, 1e-9)
	assert.InDelta(t, 2.0/3.0, fit.Metrics.Seasonality, 1e-9)
}

func TestSeasonalReportsTrueInSampleError(t *testing.T) {
	fit, err := NewSeasonal().Fit(quarters(100, 130, 90, 160, 120, 150, 95, 190, 130), 2)
	require.NoError(t, err)
	assert.Equal(t, models.AlgorithmSeasonal, fit.Algorithm)
	assert.Greater(t, fit.Metrics.MAPE, 0.0)
	assert.Less(t, fit.Metrics.R2, 1.0)
}

func TestSeasonalFallsBackToLinear(t *testing.T) {
	historical := quarters(100, 120, 115, 140, 150)

	seasonal, err := NewSeasonal().Fit(historical, 3)
	require.NoError(t, err)
	linear, err := Linear{}.Fit(historical, 3)
	require.NoError(t, err)

	assert.Equal(t, models.AlgorithmLinear, seasonal.Algorithm)
	assert.Equal(t, linear.Predictions, seasonal.Predictions)
	assert.Equal(t, linear.Metrics, seasonal.Metrics)
	assert.Contains(t, seasonal.Insights[len(seasonal.Insights)-1], "used linear instead")
}

func TestAlgorithmsHonorHorizon(t *testing.T) {
	historical := quarters(100, 120, 115, 140, 150, 170, 160, 190, 210)

	for _, name := range models.Algorithms() {
		for _, horizon := range []int{1, 4, 9} {
			t.Run(fmt.Sprintf("%s/%d", name, horizon), func(t *testing.T) {
				alg, err := Select(name)
				require.NoError(t, err)
				fit, err := alg.Fit(historical, horizon)
				require.NoError(t, err)
				assert.Len(t, fit.Predictions, horizon)
				assert.GreaterOrEqual(t, len(fit.Insights), 3)
				assert.LessOrEqual(t, len(fit.Insights), 6)
				for _, p := range fit.Predictions {
					assert.GreaterOrEqual(t, p.Value, 0.0)
				}
			})
		}
	}
}

func TestAlgorithmsRejectShortSeries(t *testing.T) {
	for _, name := range models.Algorithms() {
		alg, err := Select(name)
		require.NoError(t, err)
		_, err = alg.Fit(series(nil, 1, 2), 2)
		assert.True(t, errors.Is(err, models.ErrInsufficientData), name)
	}
}

func TestZeroActualExcludedFromMAPE(t *testing.T) {
	fit, err := Linear{}.Fit(series(nil, 0, 10, 20, 30), 1)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, fit.Metrics.MAPE, 1e-9)
	require.Len(t, fit.Warnings, 1)
	assert.Equal(t, models.AlgorithmLinear, fit.Warnings[0].Algorithm)
	assert.Equal(t, 1, fit.Warnings[0].ZeroActuals)
}

func TestMAPEAllZeroActuals(t *testing.T) {
	got, zeros := mape([]float64{0, 0}, []float64{1, 2})
	assert.Zero(t, got)
	assert.Equal(t, 2, zeros)
}

func TestRSquaredCanBeNegative(t *testing.T) {
	r2 := rSquared([]float64{1, 2, 3}, []float64{3, 2, 1})
	assert.Less(t, r2, 0.0)
	assert.Equal(t, 0.0, rSquared([]float64{5, 5}, []float64{4, 6}))
}

func TestSelectUnknownAlgorithm(t *testing.T) {
	_, err := Select("arima")
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
}
