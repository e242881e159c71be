// Package forecast fits forecasting models to a historical series and assembles results.
package forecast

import (
	"math"

	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/period"
)

// MinHistoricalPoints is the smallest series any algorithm accepts
const MinHistoricalPoints = 3

// Fit is the output of one algorithm run
type Fit struct {
	Algorithm   models.Algorithm
	Predictions []models.TimePoint
	Metrics     models.FitMetrics
	Insights    []string
	Warnings    []models.DegenerateFitWarning
}

// Algorithm defines the interface for forecasting strategies
type Algorithm interface {
	Name() models.Algorithm
	Fit(historical []models.TimePoint, horizon int) (Fit, error)
}

func checkLength(historical []models.TimePoint, required int) error {
	if len(historical) < required {
		return &models.InsufficientDataError{Required: required, Actual: len(historical)}
	}
	return nil
}

// futurePoints labels the forecast values by extrapolating the last historical period.
// Values are clamped to be non-negative.
func futurePoints(historical []models.TimePoint, values []float64) []models.TimePoint {
	history := make([]string, len(historical))
	for i, p := range historical {
		history[i] = p.Period
	}
	labels := period.Extrapolate(history, len(values))
	points := make([]models.TimePoint, len(values))
	for i, v := range values {
		points[i] = models.TimePoint{Period: labels[i], Value: math.Max(0, v)}
		if date, ok := period.Resolve(labels[i]); ok {
			d := date
			points[i].Date = &d
		}
	}
	return points
}

func repeat(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// score computes R² and MAPE of an in-sample fit, reporting any zero actuals excluded from MAPE
func score(alg models.Algorithm, actual, fitted []float64) (models.FitMetrics, []models.DegenerateFitWarning) {
	m := models.FitMetrics{R2: rSquared(actual, fitted)}
	var zeros int
	m.MAPE, zeros = mape(actual, fitted)
	if zeros > 0 {
		return m, []models.DegenerateFitWarning{{Algorithm: alg, ZeroActuals: zeros}}
	}
	return m, nil
}
