package forecast

import (
	"fmt"

	"github.com/yourusername/arr-forecast/internal/models"
)

// Select returns the algorithm implementation for a configured name.
// Seasonal carries its own fallback to Linear for short series.
func Select(alg models.Algorithm) (Algorithm, error) {
	switch alg {
	case models.AlgorithmLinear:
		return Linear{}, nil
	case models.AlgorithmExponential:
		return NewExponential(), nil
	case models.AlgorithmSeasonal:
		return NewSeasonal(), nil
	case models.AlgorithmMovingAverage:
		return MovingAverage{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", models.ErrInvalidConfig, alg)
	}
}
