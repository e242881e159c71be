package forecast

import (
	"fmt"

	"github.com/yourusername/arr-forecast/internal/models"
)

// DefaultSmoothingFactor is the alpha used by Exponential when none is set
const DefaultSmoothingFactor = 0.3

// Exponential applies simple exponential smoothing and forecasts a flat line
type Exponential struct {
	Alpha float64
}

// NewExponential creates exponential smoothing with the default factor
func NewExponential() Exponential {
	return Exponential{Alpha: DefaultSmoothingFactor}
}

// Name returns algorithm name
func (Exponential) Name() models.Algorithm {
	return models.AlgorithmExponential
}

// Fit smooths the series and repeats the final smoothed level
func (e Exponential) Fit(historical []models.TimePoint, horizon int) (Fit, error) {
	if err := checkLength(historical, MinHistoricalPoints); err != nil {
		return Fit{}, err
	}
	alpha := e.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothingFactor
	}

	values := models.Values(historical)
	smoothed := make([]float64, len(values))
	smoothed[0] = values[0]
	for i := 1; i < len(values); i++ {
		smoothed[i] = alpha*values[i] + (1-alpha)*smoothed[i-1]
	}
	last := smoothed[len(smoothed)-1]

	metrics, warnings := score(e.Name(), values, smoothed)
	metrics.Trend = (last - smoothed[0]) / float64(len(smoothed)-1)

	insights := baseInsights(values, metrics)
	insights = append(insights,
		fmt.Sprintf("Smoothing factor %.2f weights recent periods most heavily", alpha),
		fmt.Sprintf("Flat forecast at the final smoothed level of %.2f", last),
	)

	return Fit{
		Algorithm:   e.Name(),
		Predictions: futurePoints(historical, repeat(last, horizon)),
		Metrics:     metrics,
		Insights:    insights,
		Warnings:    warnings,
	}, nil
}
