package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/arr-forecast/internal/database"
	"github.com/yourusername/arr-forecast/internal/models"
)

const (
	// DefaultListLimit is used when a caller asks for a non-positive number of runs
	DefaultListLimit = 20
	// MaxListLimit caps list queries
	MaxListLimit = 500

	forecastRunColumns = `id, source, algorithm, requested_algorithm, forecast_periods,
		confidence, r2, mape, monte_carlo, config, result, created_at`

	errScanForecastRun = "failed to scan forecast run: %w"
)

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresForecastRunRepository implements ForecastRunRepository for PostgreSQL
type PostgresForecastRunRepository struct {
	db *database.DB
}

// NewPostgresForecastRunRepository creates a new forecast run repository
func NewPostgresForecastRunRepository(db *database.DB) ForecastRunRepository {
	return &PostgresForecastRunRepository{db: db}
}

// Save inserts a forecast run
func (r *PostgresForecastRunRepository) Save(ctx context.Context, run *models.ForecastRun) error {
	if run == nil {
		return fmt.Errorf("forecast run is required")
	}
	query := `
		INSERT INTO forecast_runs (` + forecastRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Source, string(run.Algorithm), string(run.RequestedAlgorithm), run.ForecastPeriods,
		run.Confidence, run.R2, run.MAPE, run.MonteCarlo, run.Config, run.Result, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save forecast run: %w", err)
	}
	return nil
}

// GetByID retrieves a forecast run by ID
func (r *PostgresForecastRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ForecastRun, error) {
	query := `SELECT ` + forecastRunColumns + ` FROM forecast_runs WHERE id = $1`

	run, err := scanForecastRun(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast run: %w", err)
	}
	return run, nil
}

// GetLatest retrieves the most recent forecast runs across all sources
func (r *PostgresForecastRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.ForecastRun, error) {
	query := `SELECT ` + forecastRunColumns + ` FROM forecast_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.GetPool().Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest forecast runs: %w", err)
	}
	return collectForecastRuns(rows)
}

// GetBySource retrieves the most recent forecast runs for one source
func (r *PostgresForecastRunRepository) GetBySource(ctx context.Context, source string, limit int) ([]*models.ForecastRun, error) {
	query := `SELECT ` + forecastRunColumns + ` FROM forecast_runs WHERE source = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.GetPool().Query(ctx, query, source, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast runs by source: %w", err)
	}
	return collectForecastRuns(rows)
}

func collectForecastRuns(rows pgx.Rows) ([]*models.ForecastRun, error) {
	defer rows.Close()

	runs := []*models.ForecastRun{}
	for rows.Next() {
		run, err := scanForecastRun(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanForecastRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanForecastRun(row rowScanner) (*models.ForecastRun, error) {
	run := &models.ForecastRun{}
	var algorithm, requested string
	if err := row.Scan(
		&run.ID, &run.Source, &algorithm, &requested, &run.ForecastPeriods,
		&run.Confidence, &run.R2, &run.MAPE, &run.MonteCarlo, &run.Config, &run.Result, &run.CreatedAt,
	); err != nil {
		return nil, err
	}
	run.Algorithm = models.Algorithm(algorithm)
	run.RequestedAlgorithm = models.Algorithm(requested)
	return run, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
