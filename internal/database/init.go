package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/arr-forecast/internal/config"
)

// schemaStatements create the forecast history table. They are idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS forecast_runs (
		id                  UUID PRIMARY KEY,
		source              TEXT NOT NULL,
		algorithm           TEXT NOT NULL,
		requested_algorithm TEXT NOT NULL,
		forecast_periods    INTEGER NOT NULL,
		confidence          DOUBLE PRECISION NOT NULL,
		r2                  DOUBLE PRECISION NOT NULL,
		mape                DOUBLE PRECISION NOT NULL,
		monte_carlo         BOOLEAN NOT NULL DEFAULT FALSE,
		config              JSONB NOT NULL,
		result              JSONB NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_forecast_runs_source_created
		ON forecast_runs (source, created_at DESC)`,
}

// Initialize creates a database connection pool and makes sure the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the forecast_runs table and its index when missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
