package montecarlo

import (
	"math"
	"sort"

	"github.com/yourusername/arr-forecast/internal/models"
)

// Fallback parameters used when the history is too short to estimate them
const (
	DefaultVolatility = 0.10
	DefaultDrift      = 0.05
)

// timeStep is the GBM step length, one forecast period
const timeStep = 1.0

// HistoricalStats estimates per-period volatility and drift from the series.
// Volatility is the sample standard deviation of log returns over strictly positive
// consecutive pairs; drift is ln(last/first) spread over the elapsed periods.
func HistoricalStats(historical []models.TimePoint) (volatility, drift float64) {
	volatility, drift = DefaultVolatility, DefaultDrift
	if len(historical) < 2 {
		return volatility, drift
	}

	returns := make([]float64, 0, len(historical)-1)
	for i := 1; i < len(historical); i++ {
		prev, cur := historical[i-1].Value, historical[i].Value
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) >= 2 {
		volatility = sampleStdDev(returns)
	}

	first, last := historical[0].Value, historical[len(historical)-1].Value
	if first > 0 && last > 0 {
		drift = math.Log(last/first) / float64(len(historical)-1)
	}
	return volatility, drift
}

// Simulate runs cfg.Simulations GBM paths from the last historical value across the
// horizon defined by predictions. Predictions contribute only their labels and count.
// Paths are drawn sequentially from src, so a seeded source reproduces the result.
func Simulate(historical, predictions []models.TimePoint, cfg models.MonteCarloConfig, src RandomSource) models.MonteCarloResult {
	result := models.MonteCarloResult{Simulations: cfg.Simulations}
	if cfg.Simulations <= 0 || len(predictions) == 0 {
		return result
	}
	if src == nil {
		src = NewSource(cfg.Seed)
	}

	start := 0.0
	if len(historical) > 0 {
		start = historical[len(historical)-1].Value
	}
	histVol, histDrift := HistoricalStats(historical)
	volatility := histVol * cfg.VolatilityFactor
	drift := histDrift * cfg.DriftFactor

	horizon := len(predictions)
	paths := make([][]float64, cfg.Simulations)
	for s := range paths {
		paths[s] = simulatePath(start, horizon, volatility, drift, src)
	}

	result.Percentiles = percentileBands(paths, predictions)
	result.RiskMetrics = riskMetrics(paths, start)
	result.Scenarios = models.Scenarios{
		Optimistic:  result.Percentiles.P90,
		Realistic:   result.Percentiles.P50,
		Pessimistic: result.Percentiles.P10,
	}
	return result
}

func simulatePath(start float64, horizon int, volatility, drift float64, src RandomSource) []float64 {
	path := make([]float64, horizon)
	value := start
	for t := range path {
		z := standardNormal(src)
		value *= math.Exp(drift*timeStep + volatility*z*math.Sqrt(timeStep))
		value = math.Max(0, value)
		path[t] = value
	}
	return path
}

func percentileBands(paths [][]float64, predictions []models.TimePoint) models.Percentiles {
	horizon := len(predictions)
	bands := models.Percentiles{
		P10: make([]models.TimePoint, horizon),
		P25: make([]models.TimePoint, horizon),
		P50: make([]models.TimePoint, horizon),
		P75: make([]models.TimePoint, horizon),
		P90: make([]models.TimePoint, horizon),
	}

	column := make([]float64, len(paths))
	for t := 0; t < horizon; t++ {
		for s, path := range paths {
			column[s] = path[t]
		}
		sort.Float64s(column)

		point := func(p float64) models.TimePoint {
			return models.TimePoint{
				Period: predictions[t].Period,
				Value:  sortedPercentile(column, p),
				Date:   predictions[t].Date,
			}
		}
		bands.P10[t] = point(0.10)
		bands.P25[t] = point(0.25)
		bands.P50[t] = point(0.50)
		bands.P75[t] = point(0.75)
		bands.P90[t] = point(0.90)
	}
	return bands
}

func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
