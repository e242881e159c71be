// Package config provides configuration management for the ARR forecast service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Forecast   ForecastConfig   `mapstructure:"forecast" validate:"required"`
	MonteCarlo MonteCarloConfig `mapstructure:"monte_carlo"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client" validate:"required"`
	Sources    []SourceConfig   `mapstructure:"sources" validate:"dive"`
	Schedules  []ScheduleConfig `mapstructure:"schedules" validate:"dive"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API listener
type ServerConfig struct {
	Port                int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration.
// Persistence is optional; when disabled the remaining fields are not validated.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// ForecastConfig holds defaults applied to forecast requests that omit them
type ForecastConfig struct {
	Algorithm       string `mapstructure:"algorithm" validate:"required,algorithm"`
	ForecastPeriods int    `mapstructure:"forecast_periods" validate:"required,gt=0"`
	TargetColumn    string `mapstructure:"target_column"`
	TimeColumn      string `mapstructure:"time_column"`
	// MaxPeriods caps requested horizons; 0 leaves only the built-in ceiling
	MaxPeriods      int    `mapstructure:"max_periods" validate:"gte=0"`
}

// MonteCarloConfig holds the default risk simulation settings
type MonteCarloConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	Simulations      int     `mapstructure:"simulations" validate:"required_if=Enabled true,gte=0"`
	VolatilityFactor float64 `mapstructure:"volatility_factor" validate:"gte=0"`
	DriftFactor      float64 `mapstructure:"drift_factor"`
	Seed             int64   `mapstructure:"seed"`
	MaxSimulations   int     `mapstructure:"max_simulations" validate:"gte=0"`
}

// HTTPClientConfig configures outbound spreadsheet fetches
type HTTPClientConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RetryWaitMinMS int     `mapstructure:"retry_wait_min_ms" validate:"gte=0"`
	RetryWaitMaxMS int     `mapstructure:"retry_wait_max_ms" validate:"gtefield=RetryWaitMinMS"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gt=0"`
}

// SourceConfig describes one tabular data source
type SourceConfig struct {
	Name            string `mapstructure:"name" validate:"required"`
	Type            string `mapstructure:"type" validate:"required,oneof=http file"`
	URL             string `mapstructure:"url" validate:"omitempty,url"`
	Path            string `mapstructure:"path" validate:"required_if=Type file"`
	Format          string `mapstructure:"format" validate:"omitempty,oneof=csv sheets_json"`
	APIKey          string `mapstructure:"api_key"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	Enabled         bool   `mapstructure:"enabled"`
}

// ScheduleConfig describes a recurring forecast over a configured source
type ScheduleConfig struct {
	Name            string `mapstructure:"name" validate:"required"`
	Source          string `mapstructure:"source" validate:"required"`
	Cron            string `mapstructure:"cron" validate:"required"`
	Algorithm       string `mapstructure:"algorithm" validate:"omitempty,algorithm"`
	ForecastPeriods int    `mapstructure:"forecast_periods" validate:"gte=0"`
	TargetColumn    string `mapstructure:"target_column"`
	TimeColumn      string `mapstructure:"time_column"`
	// MonteCarlo switches the simulation on or off for this schedule; unset follows monte_carlo.enabled
	MonteCarlo      *bool  `mapstructure:"monte_carlo"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// SecretsConfig points at an optional AWS Secrets Manager secret
type SecretsConfig struct {
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Source returns the named source configuration
func (c *Config) Source(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// ReadTimeout returns the server read timeout
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// Timeout returns the per-request timeout
func (h HTTPClientConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// RetryWaitMin returns the minimum backoff between retries
func (h HTTPClientConfig) RetryWaitMin() time.Duration {
	return time.Duration(h.RetryWaitMinMS) * time.Millisecond
}

// RetryWaitMax returns the maximum backoff between retries
func (h HTTPClientConfig) RetryWaitMax() time.Duration {
	return time.Duration(h.RetryWaitMaxMS) * time.Millisecond
}

// CacheTTL returns how long fetched tables are cached
func (s SourceConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}
