package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/arr-forecast/internal/api"
	"github.com/yourusername/arr-forecast/internal/metrics"
	"github.com/yourusername/arr-forecast/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast API and run scheduled forecasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.InitRegistry()

	db, repos, err := openRepositories(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	svc := newForecastService(repos)

	factory, client := newSourceFactory()
	defer client.Close()
	sources, err := factory.NewSources(cfg.Sources)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(svc, appLog)
	jobs, err := scheduler.JobsFromConfig(*cfg, sources, svc.HasRepository())
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if err := sched.ScheduleForecast(job); err != nil {
			return err
		}
	}
	if len(jobs) > 0 {
		if err := sched.Start(); err != nil {
			return err
		}
		appLog.WithField("next_run", sched.NextRun()).Info("Scheduled forecasts enabled")
	}

	apiCfg := api.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Settings:    *cfg,
		Service:     svc,
		Logger:      appLog,
	}
	if db != nil {
		apiCfg.DB = db
	}
	server := api.NewServer(apiCfg)
	if err := server.Start(ctx); err != nil {
		return err
	}
	server.SetReady(true)
	appLog.WithField("port", cfg.Server.Port).Info("ARR forecast service running")

	<-ctx.Done()
	appLog.Info("Shutdown signal received")

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Warn("Scheduler did not stop cleanly")
	}
	if err := server.Shutdown(); err != nil {
		appLog.WithError(err).Warn("API server did not stop cleanly")
	}
	appLog.Info("Shutdown complete")
	return nil
}
