package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. ARR_FORECAST_SERVER_PORT
	EnvPrefix = "ARR_FORECAST"
	// DefaultPath is used when no config path is supplied
	DefaultPath = "config/config.yaml"
	// PathEnvVar names the environment variable holding an alternative config path
	PathEnvVar = EnvPrefix + "_CONFIG_PATH"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(EnvPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// readExpanded reads a YAML file, expanding ${VAR} placeholders before parsing
func readExpanded(v *viper.Viper, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	v := newViper()
	if err := readExpanded(v, configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables are used instead.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	v := newViper()
	setDefaults(v)

	if err := readExpanded(v, configPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arr-forecast")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "arr_forecast")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("forecast.algorithm", "linear")
	v.SetDefault("forecast.forecast_periods", 4)
	v.SetDefault("forecast.target_column", "arr")
	v.SetDefault("forecast.time_column", "quarter")
	v.SetDefault("forecast.max_periods", 60)

	v.SetDefault("monte_carlo.enabled", false)
	v.SetDefault("monte_carlo.simulations", 1000)
	v.SetDefault("monte_carlo.volatility_factor", 1.0)
	v.SetDefault("monte_carlo.drift_factor", 1.0)
	v.SetDefault("monte_carlo.seed", 0)
	v.SetDefault("monte_carlo.max_simulations", 50000)

	v.SetDefault("http_client.timeout_seconds", 30)
	v.SetDefault("http_client.max_retries", 3)
	v.SetDefault("http_client.retry_wait_min_ms", 500)
	v.SetDefault("http_client.retry_wait_max_ms", 5000)
	v.SetDefault("http_client.rate_limit", 5.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// ResolvePath picks the explicit path, then ARR_FORECAST_CONFIG_PATH, then DefaultPath
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if envPath := os.Getenv(PathEnvVar); envPath != "" {
		return envPath
	}
	return DefaultPath
}
