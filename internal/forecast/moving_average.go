package forecast

import (
	"fmt"

	"github.com/yourusername/arr-forecast/internal/models"
)

// MaxWindow caps the moving average window
const MaxWindow = 4

// MovingAverage forecasts the mean of the trailing window as a flat line
type MovingAverage struct{}

// Name returns algorithm name
func (MovingAverage) Name() models.Algorithm {
	return models.AlgorithmMovingAverage
}

// Window returns the window size used for a series of length n
func (MovingAverage) Window(n int) int {
	w := n / 2
	if w > MaxWindow {
		w = MaxWindow
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Fit averages the trailing window and repeats it over the horizon
func (m MovingAverage) Fit(historical []models.TimePoint, horizon int) (Fit, error) {
	if err := checkLength(historical, MinHistoricalPoints); err != nil {
		return Fit{}, err
	}

	values := models.Values(historical)
	w := m.Window(len(values))
	last := average(values[len(values)-w:])

	// One-step-ahead fit: each point from w onward is predicted by the w before it.
	actual := values[w:]
	fitted := make([]float64, len(actual))
	for i := range actual {
		fitted[i] = average(values[i : i+w])
	}

	metrics, warnings := score(m.Name(), actual, fitted)

	insights := []string{
		fmt.Sprintf("Flat forecast at the %d-period moving average of %.2f", w, last),
		fitInsight(metrics.R2),
		errorInsight(metrics.MAPE),
		"Moving average reports no trend or seasonality",
	}

	return Fit{
		Algorithm:   m.Name(),
		Predictions: futurePoints(historical, repeat(last, horizon)),
		Metrics:     metrics,
		Insights:    insights,
		Warnings:    warnings,
	}, nil
}
