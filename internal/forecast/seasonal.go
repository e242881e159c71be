package forecast

import (
	"fmt"
	"math"

	"github.com/yourusername/arr-forecast/internal/models"
)

const (
	// SeasonLength is the number of periods in one seasonal cycle
	SeasonLength = 4
	// MinSeasonalPoints is the history required before seasonal indices are estimated
	MinSeasonalPoints = 2 * SeasonLength
)

// Seasonal fits a linear trend to the deseasonalized series and reapplies
// per-phase seasonal indices. Short series are delegated to Fallback.
type Seasonal struct {
	Fallback Algorithm
}

// NewSeasonal creates a seasonal algorithm that falls back to Linear
func NewSeasonal() Seasonal {
	return Seasonal{Fallback: Linear{}}
}

// Name returns algorithm name
func (Seasonal) Name() models.Algorithm {
	return models.AlgorithmSeasonal
}

// Fit estimates seasonal indices and extrapolates the reseasonalized trend
func (s Seasonal) Fit(historical []models.TimePoint, horizon int) (Fit, error) {
	if err := checkLength(historical, MinHistoricalPoints); err != nil {
		return Fit{}, err
	}
	if len(historical) < MinSeasonalPoints {
		return s.fallback(historical, horizon)
	}

	values := models.Values(historical)
	indices := seasonalIndices(values)

	deseasonalized := make([]float64, len(values))
	for i, v := range values {
		deseasonalized[i] = v / indices[i%SeasonLength]
	}
	reg := fitOLS(deseasonalized)

	fitted := make([]float64, len(values))
	for i := range values {
		fitted[i] = reg.At(float64(i)) * indices[i%SeasonLength]
	}
	forecast := make([]float64, horizon)
	for k := range forecast {
		x := len(values) + k
		forecast[k] = reg.At(float64(x)) * indices[x%SeasonLength]
	}

	metrics, warnings := score(s.Name(), values, fitted)
	metrics.Trend = reg.Slope
	metrics.Seasonality = seasonalStrength(indices)

	insights := baseInsights(values, metrics)
	insights = append(insights,
		seasonalityInsight(metrics.Seasonality),
		fmt.Sprintf("Seasonal indices by phase: %.2f, %.2f, %.2f, %.2f", indices[0], indices[1], indices[2], indices[3]),
	)

	return Fit{
		Algorithm:   s.Name(),
		Predictions: futurePoints(historical, forecast),
		Metrics:     metrics,
		Insights:    insights,
		Warnings:    warnings,
	}, nil
}

func (s Seasonal) fallback(historical []models.TimePoint, horizon int) (Fit, error) {
	fb := s.Fallback
	if fb == nil {
		fb = Linear{}
	}
	fit, err := fb.Fit(historical, horizon)
	if err != nil {
		return Fit{}, err
	}
	notice := fmt.Sprintf("Seasonal model needs at least %d periods (have %d); used %s instead",
		MinSeasonalPoints, len(historical), fit.Algorithm)
	if len(fit.Insights) >= 6 {
		fit.Insights = fit.Insights[:5]
	}
	fit.Insights = append(fit.Insights, notice)
	return fit, nil
}

// seasonalIndices returns the mean ratio of value to overall mean for each phase.
// Phases with no usable ratio, or a zero-mean series, get a neutral index of 1.
func seasonalIndices(values []float64) []float64 {
	indices := make([]float64, SeasonLength)
	mean := average(values)
	sums := make([]float64, SeasonLength)
	counts := make([]int, SeasonLength)
	if mean != 0 {
		for i, v := range values {
			sums[i%SeasonLength] += v / mean
			counts[i%SeasonLength]++
		}
	}
	for phase := range indices {
		indices[phase] = 1
		if counts[phase] > 0 && sums[phase] > 0 {
			indices[phase] = sums[phase] / float64(counts[phase])
		}
	}
	return indices
}

func seasonalStrength(indices []float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, idx := range indices {
		lo = math.Min(lo, idx)
		hi = math.Max(hi, idx)
	}
	mid := (hi + lo) / 2
	if mid == 0 {
		return 0
	}
	return (hi - lo) / mid
}
