package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/arr-forecast/internal/datasource"
	"github.com/yourusername/arr-forecast/internal/extract"
	"github.com/yourusername/arr-forecast/internal/forecast"
	"github.com/yourusername/arr-forecast/internal/logger"
	"github.com/yourusername/arr-forecast/internal/metrics"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/montecarlo"
	"github.com/yourusername/arr-forecast/internal/repository"
)

// DirectSource labels forecasts over tables supplied by the caller
const DirectSource = "direct"

// ErrPersistenceUnavailable is returned by history operations when no repository is configured
var ErrPersistenceUnavailable = errors.New("forecast persistence is not configured")

// RandomSourceFactory builds the random source for one Monte Carlo run
type RandomSourceFactory func(seed int64) montecarlo.RandomSource

// Outcome is a finished forecast together with its stored record, if any
type Outcome struct {
	Result *models.ForecastResult
	Run    *models.ForecastRun
}

// ForecastService runs forecasts end to end: extraction, fitting, simulation and storage
type ForecastService struct {
	runs        repository.ForecastRunRepository
	newSource   RandomSourceFactory
	forecastLog *logger.ForecastLogger
	auditLog    *logger.AuditLogger
}

// Option configures a ForecastService
type Option func(*ForecastService)

// WithRepository enables forecast history
func WithRepository(runs repository.ForecastRunRepository) Option {
	return func(s *ForecastService) {
		s.runs = runs
	}
}

// WithRandomSource replaces the default seeded math/rand source factory
func WithRandomSource(factory RandomSourceFactory) Option {
	return func(s *ForecastService) {
		if factory != nil {
			s.newSource = factory
		}
	}
}

// NewForecastService creates a new forecast service
func NewForecastService(log *logrus.Logger, opts ...Option) *ForecastService {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	s := &ForecastService{
		newSource:   montecarlo.NewSource,
		forecastLog: logger.NewForecastLogger(log),
		auditLog:    logger.NewAuditLogger(log),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasRepository reports whether forecast history is available
func (s *ForecastService) HasRepository() bool {
	return s.runs != nil
}

// Forecast runs a forecast over a caller supplied table without storing it
func (s *ForecastService) Forecast(ctx context.Context, table models.Table, cfg models.ForecastConfig) (*models.ForecastResult, error) {
	return s.run(ctx, DirectSource, table, cfg)
}

// ForecastAndStore runs a forecast and records it in the history
func (s *ForecastService) ForecastAndStore(ctx context.Context, source string, table models.Table, cfg models.ForecastConfig) (*Outcome, error) {
	if s.runs == nil {
		return nil, ErrPersistenceUnavailable
	}
	if source == "" {
		source = DirectSource
	}

	result, err := s.run(ctx, source, table, cfg)
	if err != nil {
		return nil, err
	}

	run, err := models.NewForecastRun(source, cfg, result)
	if err != nil {
		return nil, err
	}
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store forecast run: %w", err)
	}
	s.auditLog.LogRunStored(run.ID.String(), source, string(run.Algorithm), run.CreatedAt)

	return &Outcome{Result: result, Run: run}, nil
}

// ForecastFromSource fetches the table from src and forecasts it, storing the run when persist is set
func (s *ForecastService) ForecastFromSource(ctx context.Context, src datasource.TableSource, cfg models.ForecastConfig, persist bool) (*Outcome, error) {
	if src == nil {
		return nil, fmt.Errorf("table source is required")
	}

	table, err := src.FetchTable(ctx)
	if err != nil {
		s.forecastLog.LogForecastFailed(src.Name(), cfg.Algorithm, err)
		return nil, err
	}

	if persist {
		return s.ForecastAndStore(ctx, src.Name(), table, cfg)
	}
	result, err := s.run(ctx, src.Name(), table, cfg)
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: result}, nil
}

// Recent returns the latest stored runs, newest first
func (s *ForecastService) Recent(ctx context.Context, limit int) ([]*models.ForecastRun, error) {
	if s.runs == nil {
		return nil, ErrPersistenceUnavailable
	}
	return s.runs.GetLatest(ctx, limit)
}

// RecentForSource returns the latest stored runs of one source
func (s *ForecastService) RecentForSource(ctx context.Context, source string, limit int) ([]*models.ForecastRun, error) {
	if s.runs == nil {
		return nil, ErrPersistenceUnavailable
	}
	return s.runs.GetBySource(ctx, source, limit)
}

// Get returns one stored run
func (s *ForecastService) Get(ctx context.Context, id uuid.UUID) (*models.ForecastRun, error) {
	if s.runs == nil {
		return nil, ErrPersistenceUnavailable
	}
	return s.runs.GetByID(ctx, id)
}

func (s *ForecastService) run(ctx context.Context, source string, table models.Table, cfg models.ForecastConfig) (*models.ForecastResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		s.fail(source, cfg.Algorithm, err)
		return nil, err
	}
	historical, err := extract.Extract(table, cfg)
	if err != nil {
		s.fail(source, cfg.Algorithm, err)
		return nil, err
	}
	s.forecastLog.LogExtraction(source, len(table.Rows), len(historical))

	var src montecarlo.RandomSource
	if cfg.MonteCarlo != nil {
		src = s.newSource(cfg.MonteCarlo.Seed)
	}

	result, err := forecast.Generate(historical, cfg, src)
	if err != nil {
		s.fail(source, cfg.Algorithm, err)
		return nil, err
	}

	elapsed := time.Since(start)
	if result.FellBack() {
		s.forecastLog.LogAlgorithmFallback(result.RequestedAlgorithm, result.Algorithm, len(historical))
		metrics.RecordFallback(string(result.RequestedAlgorithm), string(result.Algorithm))
	}
	if len(result.Warnings) > 0 {
		s.forecastLog.LogDegenerateFit(result.Algorithm, result.Warnings)
	}
	if result.MonteCarlo != nil {
		s.forecastLog.LogMonteCarlo(result.MonteCarlo)
		metrics.RecordMonteCarlo(result.MonteCarlo.Simulations)
	}
	metrics.RecordForecast(source, string(result.Algorithm), result.Confidence, elapsed.Seconds())
	s.forecastLog.LogForecastCompleted(source, result, float64(elapsed.Microseconds())/1000)

	return result, nil
}

func (s *ForecastService) fail(source string, alg models.Algorithm, err error) {
	metrics.RecordForecastFailure(string(alg))
	s.forecastLog.LogForecastFailed(source, alg, err)
}
