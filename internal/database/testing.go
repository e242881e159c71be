package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/arr-forecast/internal/config"
)

// TestDSNEnvVar names the variable that points integration tests at a database.
const TestDSNEnvVar = "ARR_FORECAST_TEST_DATABASE"

// SetupTestDB connects to the database named by ARR_FORECAST_TEST_DATABASE and applies the
// schema. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestDSNEnvVar)
	if path == "" {
		t.Skipf("%s not set; skipping database integration test", TestDSNEnvVar)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}

// TeardownTestDB removes rows written by the test and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.GetPool().Exec(ctx, "TRUNCATE forecast_runs"); err != nil {
		t.Logf("warning: failed to truncate forecast_runs: %v", err)
	}
	db.Close()
}
