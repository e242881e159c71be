package forecast

import (
	"fmt"
	"math"

	"github.com/yourusername/arr-forecast/internal/models"
)

// trendInsight describes the direction of the per-period trend relative to the series level
func trendInsight(trend, level float64) string {
	relative := 0.0
	if level != 0 {
		relative = trend / level * 100
	}
	switch {
	case math.Abs(relative) < 0.5:
		return fmt.Sprintf("Trend is flat (%.2f per period)", trend)
	case trend > 0:
		return fmt.Sprintf("Upward trend of %.2f per period (%.1f%% of average level)", trend, relative)
	default:
		return fmt.Sprintf("Downward trend of %.2f per period (%.1f%% of average level)", math.Abs(trend), math.Abs(relative))
	}
}

func fitInsight(r2 float64) string {
	switch {
	case r2 >= 0.9:
		return fmt.Sprintf("Strong fit: the model explains %.1f%% of variance (R² %.3f)", r2*100, r2)
	case r2 >= 0.7:
		return fmt.Sprintf("Good fit (R² %.3f)", r2)
	case r2 >= 0.4:
		return fmt.Sprintf("Moderate fit (R² %.3f); treat predictions with caution", r2)
	default:
		return fmt.Sprintf("Weak fit (R² %.3f); the series is poorly explained by this model", r2)
	}
}

func errorInsight(mape float64) string {
	switch {
	case mape < 5:
		return fmt.Sprintf("Low in-sample error rate of %.1f%% (MAPE)", mape)
	case mape < 15:
		return fmt.Sprintf("Moderate in-sample error rate of %.1f%% (MAPE)", mape)
	default:
		return fmt.Sprintf("High in-sample error rate of %.1f%% (MAPE)", mape)
	}
}

// baseInsights returns the trend, fit and error insights common to every algorithm
func baseInsights(actual []float64, metrics models.FitMetrics) []string {
	return []string{
		trendInsight(metrics.Trend, average(actual)),
		fitInsight(metrics.R2),
		errorInsight(metrics.MAPE),
	}
}

func seasonalityInsight(strength float64) string {
	switch {
	case strength >= 0.3:
		return fmt.Sprintf("Strong seasonal pattern (amplitude %.1f%% of level)", strength*100)
	case strength >= 0.1:
		return fmt.Sprintf("Moderate seasonal pattern (amplitude %.1f%% of level)", strength*100)
	default:
		return fmt.Sprintf("Weak seasonal pattern (amplitude %.1f%% of level)", strength*100)
	}
}
