package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/arr-forecast/internal/models"
)

// ForecastLogger provides dedicated logging for forecast runs.
type ForecastLogger struct {
	*logrus.Entry
}

// NewForecastLogger creates a new forecast logger.
func NewForecastLogger(baseLogger *logrus.Logger) *ForecastLogger {
	return &ForecastLogger{
		Entry: baseLogger.WithField("component", "forecast"),
	}
}

// LogExtraction logs the outcome of turning a table into a series.
func (fl *ForecastLogger) LogExtraction(source string, rows, points int) {
	fl.WithFields(logrus.Fields{
		"source":         source,
		"rows":           rows,
		"points":         points,
		"rows_discarded": rows - points,
	}).Debug("Historical series extracted")
}

// LogForecastCompleted logs a finished forecast.
func (fl *ForecastLogger) LogForecastCompleted(source string, result *models.ForecastResult, durationMs float64) {
	fl.WithFields(logrus.Fields{
		"source":           source,
		"algorithm":        result.Algorithm,
		"historical_count": len(result.Historical),
		"forecast_periods": len(result.Predictions),
		"r2":               result.Metrics.R2,
		"mape":             result.Metrics.MAPE,
		"confidence":       result.Confidence,
		"monte_carlo":      result.MonteCarlo != nil,
		"duration_ms":      durationMs,
	}).Info("Forecast completed")
}

// LogAlgorithmFallback logs the selector choosing a different algorithm than requested.
func (fl *ForecastLogger) LogAlgorithmFallback(requested, used models.Algorithm, points int) {
	fl.WithFields(logrus.Fields{
		"requested_algorithm": requested,
		"used_algorithm":      used,
		"historical_count":    points,
	}).Info("Algorithm fell back due to insufficient history")
}

// LogDegenerateFit logs warnings raised while scoring the fit.
func (fl *ForecastLogger) LogDegenerateFit(algorithm models.Algorithm, warnings []string) {
	fl.WithFields(logrus.Fields{
		"algorithm": algorithm,
		"warnings":  warnings,
	}).Warn("Degenerate fit metrics")
}

// LogMonteCarlo logs the risk summary of a simulation.
func (fl *ForecastLogger) LogMonteCarlo(result *models.MonteCarloResult) {
	fl.WithFields(logrus.Fields{
		"simulations":         result.Simulations,
		"var_95":              result.RiskMetrics.ValueAtRisk95,
		"expected_shortfall":  result.RiskMetrics.ExpectedShortfall,
		"max_drawdown":        result.RiskMetrics.MaxDrawdown,
		"probability_of_loss": result.RiskMetrics.ProbabilityOfLoss,
	}).Info("Monte Carlo simulation completed")
}

// LogForecastFailed logs a forecast that returned an error.
func (fl *ForecastLogger) LogForecastFailed(source string, algorithm models.Algorithm, err error) {
	fl.WithFields(logrus.Fields{
		"source":    source,
		"algorithm": algorithm,
	}).WithError(err).Error("Forecast failed")
}
