package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/arr-forecast/internal/database"
	"github.com/yourusername/arr-forecast/internal/models"
)

// fakeRow feeds fixed column values into Scan destinations
type fakeRow struct {
	values []any
	err    error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	if len(dest) != len(f.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = f.values[i].(uuid.UUID)
		case *string:
			*p = f.values[i].(string)
		case *int:
			*p = f.values[i].(int)
		case *float64:
			*p = f.values[i].(float64)
		case *bool:
			*p = f.values[i].(bool)
		case *json.RawMessage:
			*p = f.values[i].(json.RawMessage)
		case *time.Time:
			*p = f.values[i].(time.Time)
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func sampleRun(t *testing.T, source string) *models.ForecastRun {
	t.Helper()
	result := &models.ForecastResult{
		Algorithm:          models.AlgorithmLinear,
		RequestedAlgorithm: models.AlgorithmSeasonal,
		Predictions:        []models.TimePoint{{Period: "Q1 2025", Value: 1400}},
		Metrics:            models.FitMetrics{R2: 0.9, MAPE: 4},
		Confidence:         93,
	}
	run, err := models.NewForecastRun(source, models.ForecastConfig{Algorithm: models.AlgorithmSeasonal, ForecastPeriods: 1}, result)
	require.NoError(t, err)
	return run
}

func TestScanForecastRun(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	row := fakeRow{values: []any{
		id, "finance_sheet", "linear", "seasonal", 4,
		81.5, 0.7, 7.0, true, json.RawMessage(`{}`), json.RawMessage(`{"algorithm":"linear"}`), created,
	}}

	run, err := scanForecastRun(row)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, models.AlgorithmLinear, run.Algorithm)
	assert.Equal(t, models.AlgorithmSeasonal, run.RequestedAlgorithm)
	assert.True(t, run.MonteCarlo)
	assert.Equal(t, created, run.CreatedAt)

	decoded, err := run.DecodeResult()
	require.NoError(t, err)
	assert.Equal(t, models.AlgorithmLinear, decoded.Algorithm)
}

func TestScanForecastRunPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := scanForecastRun(fakeRow{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, clampLimit(0))
	assert.Equal(t, DefaultListLimit, clampLimit(-3))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, MaxListLimit, clampLimit(MaxListLimit+1))
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestForecastRunRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := sampleRun(t, "finance_sheet")
	second := sampleRun(t, "local_arr")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repos.ForecastRun.Save(ctx, first))
	require.NoError(t, repos.ForecastRun.Save(ctx, second))

	got, err := repos.ForecastRun.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "finance_sheet", got.Source)
	assert.Equal(t, models.AlgorithmSeasonal, got.RequestedAlgorithm)

	latest, err := repos.ForecastRun.GetLatest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, second.ID, latest[0].ID)

	bySource, err := repos.ForecastRun.GetBySource(ctx, "local_arr", 10)
	require.NoError(t, err)
	require.Len(t, bySource, 1)

	_, err = repos.ForecastRun.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
