package forecast

import (
	"fmt"

	"github.com/yourusername/arr-forecast/internal/models"
)

// Linear fits an ordinary least squares line over index position
type Linear struct{}

// Name returns algorithm name
func (Linear) Name() models.Algorithm {
	return models.AlgorithmLinear
}

// Fit regresses the series against its index and extrapolates the line
func (l Linear) Fit(historical []models.TimePoint, horizon int) (Fit, error) {
	if err := checkLength(historical, MinHistoricalPoints); err != nil {
		return Fit{}, err
	}

	values := models.Values(historical)
	reg := fitOLS(values)

	fitted := make([]float64, len(values))
	for i := range values {
		fitted[i] = reg.At(float64(i))
	}
	forecast := make([]float64, horizon)
	for k := range forecast {
		forecast[k] = reg.At(float64(len(values) + k))
	}

	metrics, warnings := score(l.Name(), values, fitted)
	metrics.Trend = reg.Slope

	insights := baseInsights(values, metrics)
	insights = append(insights, fmt.Sprintf("Linear model: intercept %.2f, slope %.2f", reg.Intercept, reg.Slope))

	return Fit{
		Algorithm:   l.Name(),
		Predictions: futurePoints(historical, forecast),
		Metrics:     metrics,
		Insights:    insights,
		Warnings:    warnings,
	}, nil
}
