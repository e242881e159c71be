package service

import (
	"fmt"

	"github.com/yourusername/arr-forecast/internal/config"
	"github.com/yourusername/arr-forecast/internal/models"
)

// Overrides carries per-request values that replace configured defaults.
// Zero values keep the default.
type Overrides struct {
	Algorithm       string
	ForecastPeriods int
	TargetColumn    string
	TimeColumn      string
	// MonteCarlo forces the simulation on or off; nil follows monte_carlo.enabled
	MonteCarlo  *bool
	Simulations int
	Seed        int64
}

// ConfigFromSettings merges the configured forecast defaults with overrides
func ConfigFromSettings(settings config.Config, o Overrides) (models.ForecastConfig, error) {
	name := settings.Forecast.Algorithm
	if o.Algorithm != "" {
		name = o.Algorithm
	}
	alg, err := models.ParseAlgorithm(name)
	if err != nil {
		return models.ForecastConfig{}, err
	}

	cfg := models.ForecastConfig{
		Algorithm:       alg,
		ForecastPeriods: settings.Forecast.ForecastPeriods,
		TargetColumn:    settings.Forecast.TargetColumn,
		TimeColumn:      settings.Forecast.TimeColumn,
	}
	if o.ForecastPeriods > 0 {
		cfg.ForecastPeriods = o.ForecastPeriods
	}
	if o.TargetColumn != "" {
		cfg.TargetColumn = o.TargetColumn
	}
	if o.TimeColumn != "" {
		cfg.TimeColumn = o.TimeColumn
	}

	enabled := settings.MonteCarlo.Enabled
	if o.MonteCarlo != nil {
		enabled = *o.MonteCarlo
	}
	if enabled {
		mc := &models.MonteCarloConfig{
			Simulations:      settings.MonteCarlo.Simulations,
			VolatilityFactor: settings.MonteCarlo.VolatilityFactor,
			DriftFactor:      settings.MonteCarlo.DriftFactor,
			Seed:             settings.MonteCarlo.Seed,
		}
		if o.Simulations > 0 {
			mc.Simulations = o.Simulations
		}
		if o.Seed != 0 {
			mc.Seed = o.Seed
		}
		cfg.MonteCarlo = mc
	}
	if err := CheckLimits(settings, cfg); err != nil {
		return models.ForecastConfig{}, err
	}
	return cfg, nil
}

// CheckLimits rejects horizons and simulation counts above the configured maximums
func CheckLimits(settings config.Config, cfg models.ForecastConfig) error {
	if limit := settings.Forecast.MaxPeriods; limit > 0 && cfg.ForecastPeriods > limit {
		return fmt.Errorf("%w: forecast periods %d exceeds the limit of %d", models.ErrInvalidConfig, cfg.ForecastPeriods, limit)
	}
	if limit := settings.MonteCarlo.MaxSimulations; limit > 0 && cfg.MonteCarlo != nil && cfg.MonteCarlo.Simulations > limit {
		return fmt.Errorf("%w: simulations %d exceeds the limit of %d", models.ErrInvalidConfig, cfg.MonteCarlo.Simulations, limit)
	}
	return nil
}

// ScheduleOverrides converts a schedule entry into request overrides
func ScheduleOverrides(s config.ScheduleConfig) Overrides {
	o := Overrides{
		Algorithm:       s.Algorithm,
		ForecastPeriods: s.ForecastPeriods,
		TargetColumn:    s.TargetColumn,
		TimeColumn:      s.TimeColumn,
	}
	if s.MonteCarlo != nil {
		enabled := *s.MonteCarlo
		o.MonteCarlo = &enabled
	}
	return o
}
