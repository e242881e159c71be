package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/arr-forecast/internal/config"
)

func TestConnString(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "localhost", Port: 5432, User: "arr", Password: "pw", Name: "arr_forecast"}
	assert.Equal(t, "host=localhost port=5432 user=arr password=pw dbname=arr_forecast sslmode=disable", connString(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, connString(cfg), "sslmode=require")
}

func TestSchemaStatementsAreIdempotent(t *testing.T) {
	for _, stmt := range schemaStatements {
		assert.Contains(t, stmt, "IF NOT EXISTS")
	}
}

func TestEnsureSchema(t *testing.T) {
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)

	// A second application must be a no-op.
	require.NoError(t, db.EnsureSchema(context.Background()))
	require.NoError(t, db.HealthCheck(context.Background()))
}
