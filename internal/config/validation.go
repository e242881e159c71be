package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/yourusername/arr-forecast/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("algorithm", validateAlgorithm)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateAlgorithm(fl validator.FieldLevel) bool {
	_, err := models.ParseAlgorithm(fl.Field().String())
	return err == nil
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Database.Enabled && cfg.Database.Port == 0 {
		return fmt.Errorf("database port is required when persistence is enabled")
	}

	// Validate production environment requirements
	if cfg.IsProduction() && cfg.Database.Enabled && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Forecast.MaxPeriods > 0 && cfg.Forecast.ForecastPeriods > cfg.Forecast.MaxPeriods {
		return fmt.Errorf("forecast.forecast_periods %d exceeds forecast.max_periods %d", cfg.Forecast.ForecastPeriods, cfg.Forecast.MaxPeriods)
	}
	if cfg.MonteCarlo.MaxSimulations > 0 && cfg.MonteCarlo.Simulations > cfg.MonteCarlo.MaxSimulations {
		return fmt.Errorf("monte_carlo.simulations %d exceeds monte_carlo.max_simulations %d", cfg.MonteCarlo.Simulations, cfg.MonteCarlo.MaxSimulations)
	}

	seen := make(map[string]bool, len(cfg.Sources))
	for _, src := range cfg.Sources {
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
		if src.Type == "http" && src.URL == "" {
			return fmt.Errorf("source %q: http sources require a url", src.Name)
		}
	}

	for _, sched := range cfg.Schedules {
		if !seen[sched.Source] {
			return fmt.Errorf("schedule %q references unknown source %q", sched.Name, sched.Source)
		}
		if _, err := cronParser.Parse(sched.Cron); err != nil {
			return fmt.Errorf("schedule %q has invalid cron expression %q: %w", sched.Name, sched.Cron, err)
		}
		if sched.MonteCarlo != nil && *sched.MonteCarlo && cfg.MonteCarlo.Simulations <= 0 {
			return fmt.Errorf("schedule %q enables monte carlo but monte_carlo.simulations is not set", sched.Name)
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte", "gtefield":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "algorithm":
			fmt.Fprintf(&b, "- Field '%s' must be one of: linear, exponential, seasonal, moving_average\n", field)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
