// Package main provides the forecast command line: one-off runs, the API server and run history.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/arr-forecast/internal/config"
	"github.com/yourusername/arr-forecast/internal/database"
	"github.com/yourusername/arr-forecast/internal/datasource"
	"github.com/yourusername/arr-forecast/internal/logger"
	"github.com/yourusername/arr-forecast/internal/repository"
	"github.com/yourusername/arr-forecast/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "forecast",
	Short:         "ARR forecasting and Monte Carlo risk engine",
	Long:          `Fits trend models to historical ARR tables, projects future periods and simulates the risk around them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default $"+config.PathEnvVar+" or "+config.DefaultPath+")")
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, GitCommit)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newBacktestCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	loaded, err := config.LoadWithDefaults(config.ResolvePath(configFile))
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, loaded); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// openRepositories connects to PostgreSQL when persistence is enabled.
// It returns a nil DB and nil repositories otherwise.
func openRepositories(ctx context.Context) (*database.DB, *repository.Repositories, error) {
	if !cfg.Database.Enabled {
		return nil, nil, nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	appLog.WithFields(logrus.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	}).Info("Database connection established")
	return db, repos, nil
}

func newForecastService(repos *repository.Repositories) *service.ForecastService {
	var opts []service.Option
	if repos != nil {
		opts = append(opts, service.WithRepository(repos.ForecastRun))
	}
	return service.NewForecastService(appLog, opts...)
}

func newSourceFactory() (*datasource.Factory, *datasource.RateLimitedHTTPClient) {
	client := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfigFrom(cfg.HTTPClient), appLog)
	return datasource.NewFactory(client, appLog), client
}
