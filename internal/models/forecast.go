package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Algorithm names a forecasting strategy
type Algorithm string

// Supported forecasting algorithms
const (
	AlgorithmLinear        Algorithm = "linear"
	AlgorithmExponential   Algorithm = "exponential"
	AlgorithmSeasonal      Algorithm = "seasonal"
	AlgorithmMovingAverage Algorithm = "moving_average"
)

// Algorithms lists every supported algorithm
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmLinear, AlgorithmExponential, AlgorithmSeasonal, AlgorithmMovingAverage}
}

// ParseAlgorithm converts a user supplied name into an Algorithm
func ParseAlgorithm(name string) (Algorithm, error) {
	normalized := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	for _, alg := range Algorithms() {
		if alg == normalized {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, name)
}

// Hard ceilings on request sizes. Simulation memory grows with simulations × forecast periods.
const (
	MaxForecastPeriods  = 1000
	MaxSimulations      = 100000
	MaxSimulationPoints = 10000000
)

// MonteCarloConfig configures the optional risk simulation stage
type MonteCarloConfig struct {
	Simulations      int     `json:"simulations" validate:"gt=0,lte=100000"`
	VolatilityFactor float64 `json:"volatilityFactor" validate:"gte=0"`
	DriftFactor      float64 `json:"driftFactor"`
	Seed             int64   `json:"seed,omitempty"`
}

// ForecastConfig describes which columns to use and which algorithm to run
type ForecastConfig struct {
	TargetColumn    string            `json:"targetColumn"`
	TimeColumn      string            `json:"timeColumn"`
	ForecastPeriods int               `json:"forecastPeriods" validate:"gt=0,lte=1000"`
	Algorithm       Algorithm         `json:"algorithm" validate:"required,oneof=linear exponential seasonal moving_average"`
	MonteCarlo      *MonteCarloConfig `json:"monteCarlo,omitempty" validate:"omitempty"`
}

var configValidator = validator.New()

// Validate checks the configuration against its constraints
func (c ForecastConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MonteCarlo != nil && c.MonteCarlo.Simulations*c.ForecastPeriods > MaxSimulationPoints {
		return fmt.Errorf("%w: simulations × forecast periods exceeds %d", ErrInvalidConfig, MaxSimulationPoints)
	}
	return nil
}

// FitMetrics captures fit quality for one forecast run
type FitMetrics struct {
	R2          float64 `json:"r2"`
	MAPE        float64 `json:"mape"`
	Trend       float64 `json:"trend"`
	Seasonality float64 `json:"seasonality"`
}

// ForecastResult is the sole output artifact of a forecast invocation
type ForecastResult struct {
	Algorithm          Algorithm         `json:"algorithm"`
	RequestedAlgorithm Algorithm         `json:"requestedAlgorithm"`
	Historical         []TimePoint       `json:"historical"`
	Predictions        []TimePoint       `json:"predictions"`
	Metrics            FitMetrics        `json:"metrics"`
	Confidence         float64           `json:"confidence"`
	Insights           []string          `json:"insights"`
	Warnings           []string          `json:"warnings,omitempty"`
	MonteCarlo         *MonteCarloResult `json:"monteCarlo,omitempty"`
}

// FellBack reports whether the selector used a different algorithm than requested
func (r *ForecastResult) FellBack() bool {
	return r.Algorithm != r.RequestedAlgorithm
}
