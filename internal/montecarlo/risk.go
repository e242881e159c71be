package montecarlo

import (
	"math"
	"sort"

	"github.com/yourusername/arr-forecast/internal/models"
)

// VaRPercentile is the lower tail read off the final return distribution
const VaRPercentile = 0.05

// sortedPercentile reads index floor(n*p) from an ascending slice, clamped to its bounds
func sortedPercentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// riskMetrics derives VaR, expected shortfall and loss probability from the final-period
// returns, and the worst peak-to-trough decline observed in any path
func riskMetrics(paths [][]float64, start float64) models.RiskMetrics {
	if len(paths) == 0 {
		return models.RiskMetrics{}
	}

	returns := make([]float64, len(paths))
	maxDrawdown := 0.0
	for s, path := range paths {
		if len(path) == 0 {
			continue
		}
		if start > 0 {
			returns[s] = (path[len(path)-1] - start) / start
		}
		maxDrawdown = math.Max(maxDrawdown, pathDrawdown(start, path))
	}
	sort.Float64s(returns)

	valueAtRisk := sortedPercentile(returns, VaRPercentile)
	return models.RiskMetrics{
		ValueAtRisk95:     valueAtRisk,
		ExpectedShortfall: meanAtOrBelow(returns, valueAtRisk),
		MaxDrawdown:       maxDrawdown,
		ProbabilityOfLoss: probabilityBelow(returns, 0),
	}
}

// pathDrawdown is the largest relative decline from a running peak, seeded with start
func pathDrawdown(start float64, path []float64) float64 {
	peak := start
	worst := 0.0
	for _, v := range path {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			worst = math.Max(worst, (peak-v)/peak)
		}
	}
	return worst
}

func meanAtOrBelow(values []float64, threshold float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if v <= threshold {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func probabilityBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v < threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}
