package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/arr-forecast/internal/models"
)

// AccurateWindowMAPE is the holdout error, in percent, under which a window counts as accurate
const AccurateWindowMAPE = 10.0

// BacktestConfig configures a rolling-origin evaluation
type BacktestConfig struct {
	// Horizon is the number of periods predicted from each origin
	Horizon int
	// MinTrain is the size of the first training window; values below MinHistoricalPoints are raised
	MinTrain int
	// Step moves the origin forward; defaults to 1
	Step int
}

// BacktestWindow is one fit on historical[:Origin] scored against the periods that followed it
type BacktestWindow struct {
	Origin       int       `json:"origin"`
	Periods      []string  `json:"periods"`
	Actual       []float64 `json:"actual"`
	Predicted    []float64 `json:"predicted"`
	InSampleMAPE float64   `json:"inSampleMape"`
	MAPE         float64   `json:"mape"`
	MAE          float64   `json:"mae"`
}

// BacktestResult aggregates the holdout error of one algorithm
type BacktestResult struct {
	Algorithm        models.Algorithm `json:"algorithm"`
	Windows          []BacktestWindow `json:"windows"`
	MAPE             float64          `json:"mape"`
	MAE              float64          `json:"mae"`
	ConsistencyScore float64          `json:"consistencyScore"`
	OverfitScore     float64          `json:"overfitScore"`
}

// Backtest walks the origin forward through the series, refitting alg on each prefix
// and scoring its predictions against the periods that were held out.
func Backtest(historical []models.TimePoint, alg models.Algorithm, cfg BacktestConfig) (*BacktestResult, error) {
	if cfg.Horizon <= 0 {
		return nil, fmt.Errorf("%w: backtest horizon must be positive", models.ErrInvalidConfig)
	}
	if cfg.MinTrain < MinHistoricalPoints {
		cfg.MinTrain = MinHistoricalPoints
	}
	if cfg.Step <= 0 {
		cfg.Step = 1
	}
	// At least one period must be held out after the first training window.
	if err := checkLength(historical, cfg.MinTrain+1); err != nil {
		return nil, err
	}

	algorithm, err := Select(alg)
	if err != nil {
		return nil, err
	}

	result := &BacktestResult{Algorithm: alg}
	for origin := cfg.MinTrain; origin < len(historical); origin += cfg.Step {
		end := origin + cfg.Horizon
		if end > len(historical) {
			end = len(historical)
		}
		holdout := historical[origin:end]

		fit, err := algorithm.Fit(historical[:origin], len(holdout))
		if err != nil {
			return nil, fmt.Errorf("window at %d: %w", origin, err)
		}

		actual := models.Values(holdout)
		predicted := models.Values(fit.Predictions)
		holdoutMAPE, _ := mape(actual, predicted)

		periods := make([]string, len(holdout))
		for i, p := range holdout {
			periods[i] = p.Period
		}
		result.Windows = append(result.Windows, BacktestWindow{
			Origin:       origin,
			Periods:      periods,
			Actual:       actual,
			Predicted:    predicted,
			InSampleMAPE: fit.Metrics.MAPE,
			MAPE:         holdoutMAPE,
			MAE:          meanAbsoluteError(actual, predicted),
		})
	}

	aggregateBacktest(result)
	return result, nil
}

// CompareAlgorithms backtests every algorithm and orders them by holdout MAPE, best first
func CompareAlgorithms(historical []models.TimePoint, cfg BacktestConfig) ([]*BacktestResult, error) {
	results := make([]*BacktestResult, 0, len(models.Algorithms()))
	for _, alg := range models.Algorithms() {
		result, err := Backtest(historical, alg, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MAPE < results[j].MAPE
	})
	return results, nil
}

func aggregateBacktest(result *BacktestResult) {
	if len(result.Windows) == 0 {
		return
	}

	accurate := 0
	inSample := 0.0
	for _, w := range result.Windows {
		result.MAPE += w.MAPE
		result.MAE += w.MAE
		inSample += w.InSampleMAPE
		if w.MAPE <= AccurateWindowMAPE {
			accurate++
		}
	}
	n := float64(len(result.Windows))
	result.MAPE /= n
	result.MAE /= n
	inSample /= n
	result.ConsistencyScore = float64(accurate) / n

	// Positive when the model does worse on unseen periods than on the ones it was fit to.
	if result.MAPE > 0 {
		result.OverfitScore = (result.MAPE - inSample) / result.MAPE
	}
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}
