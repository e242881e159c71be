// Package scheduler runs recurring forecasts over configured data sources.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/arr-forecast/internal/config"
	"github.com/yourusername/arr-forecast/internal/datasource"
	"github.com/yourusername/arr-forecast/internal/logger"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/service"
)

// DefaultJobTimeout bounds one scheduled fetch-and-forecast
const DefaultJobTimeout = 5 * time.Minute

// ForecastRunner is implemented by service.ForecastService
type ForecastRunner interface {
	ForecastFromSource(ctx context.Context, src datasource.TableSource, cfg models.ForecastConfig, persist bool) (*service.Outcome, error)
}

// ForecastJob is one recurring forecast
type ForecastJob struct {
	Name    string
	Cron    string
	Source  datasource.TableSource
	Config  models.ForecastConfig
	Persist bool
	Timeout time.Duration
}

type scheduledJob struct {
	id  cron.EntryID
	job ForecastJob
}

// Scheduler manages scheduled forecast jobs
type Scheduler struct {
	cron            *cron.Cron
	runner          ForecastRunner
	logger          *logrus.Entry
	audit           *logger.AuditLogger
	mu              sync.RWMutex
	isRunning       bool
	jobs            map[string]scheduledJob
	order           []string
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(runner ForecastRunner, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		runner:          runner,
		logger:          log.WithField("component", "scheduler"),
		audit:           logger.NewAuditLogger(log),
		jobs:            make(map[string]scheduledJob),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleForecast registers a recurring forecast
func (s *Scheduler) ScheduleForecast(job ForecastJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if job.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if job.Source == nil {
		return fmt.Errorf("job %s: source is required", job.Name)
	}
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already scheduled", job.Name)
	}
	if job.Timeout <= 0 {
		job.Timeout = DefaultJobTimeout
	}

	entryID, err := s.cron.AddFunc(job.Cron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
		defer cancel()
		_, _ = s.execute(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", job.Name, err)
	}

	s.jobs[job.Name] = scheduledJob{id: entryID, job: job}
	s.order = append(s.order, job.Name)
	s.logger.WithFields(logrus.Fields{
		"job":    job.Name,
		"cron":   job.Cron,
		"source": job.Source.Name(),
	}).Info("Scheduled forecast job")

	return nil
}

// RunNow executes a scheduled job immediately, outside its cron cadence
func (s *Scheduler) RunNow(ctx context.Context, name string) (*service.Outcome, error) {
	s.mu.RLock()
	scheduled, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("job %s: %w", name, models.ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, scheduled.job.Timeout)
	defer cancel()
	return s.execute(ctx, scheduled.job)
}

func (s *Scheduler) execute(ctx context.Context, job ForecastJob) (*service.Outcome, error) {
	start := time.Now()
	outcome, err := s.runner.ForecastFromSource(ctx, job.Source, job.Config, job.Persist)
	durationMs := float64(time.Since(start).Microseconds()) / 1000

	s.audit.LogScheduledRun(job.Name, job.Source.Name(), err == nil, durationMs)
	if err != nil {
		s.logger.WithError(err).WithField("job", job.Name).Error("Scheduled forecast failed")
		return nil, err
	}
	return outcome, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs, up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest upcoming run across all jobs, or the zero time when stopped
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, name := range s.order {
		entry := s.cron.Entry(s.jobs[name].id)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// Entries returns the cron entries in registration order
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.order))
	for _, name := range s.order {
		if entry := s.cron.Entry(s.jobs[name].id); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Jobs returns the registered job names in registration order
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}
	scheduled, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %s: %w", name, models.ErrNotFound)
	}

	s.cron.Remove(scheduled.id)
	delete(s.jobs, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.logger.WithField("job", name).Info("Removed job")

	return nil
}

// JobsFromConfig builds one job per configured schedule. Schedules whose source is
// not in sources (disabled or unknown) are skipped.
func JobsFromConfig(cfg config.Config, sources map[string]datasource.TableSource, persist bool) ([]ForecastJob, error) {
	jobs := make([]ForecastJob, 0, len(cfg.Schedules))
	for _, sc := range cfg.Schedules {
		src, ok := sources[sc.Source]
		if !ok {
			continue
		}
		forecastCfg, err := service.ConfigFromSettings(cfg, service.ScheduleOverrides(sc))
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sc.Name, err)
		}
		jobs = append(jobs, ForecastJob{
			Name:    sc.Name,
			Cron:    sc.Cron,
			Source:  src,
			Config:  forecastCfg,
			Persist: persist,
		})
	}
	return jobs, nil
}
