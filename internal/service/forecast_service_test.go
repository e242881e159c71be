package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/arr-forecast/internal/config"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/montecarlo"
)

// MockForecastRunRepository mocks the forecast history
type MockForecastRunRepository struct {
	mock.Mock
}

func (m *MockForecastRunRepository) Save(ctx context.Context, run *models.ForecastRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockForecastRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ForecastRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ForecastRun), args.Error(1)
}

func (m *MockForecastRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.ForecastRun, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.ForecastRun), args.Error(1)
}

func (m *MockForecastRunRepository) GetBySource(ctx context.Context, source string, limit int) ([]*models.ForecastRun, error) {
	args := m.Called(ctx, source, limit)
	return args.Get(0).([]*models.ForecastRun), args.Error(1)
}

// stubSource serves a fixed table
type stubSource struct {
	table models.Table
	err   error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) FetchTable(ctx context.Context) (models.Table, error) {
	return s.table, s.err
}

func arrTable() models.Table {
	return models.Table{
		Header: []string{"Quarter", "ARR"},
		Rows: [][]string{
			{"Q1 2024", "1000"},
			{"Q2 2024", "1100"},
			{"Q3 2024", "1200"},
			{"Q4 2024", "1300"},
		},
	}
}

func linearConfig() models.ForecastConfig {
	return models.ForecastConfig{ForecastPeriods: 2, Algorithm: models.AlgorithmLinear}
}

func TestForecast(t *testing.T) {
	svc := NewForecastService(nil)

	result, err := svc.Forecast(context.Background(), arrTable(), linearConfig())
	require.NoError(t, err)
	require.Len(t, result.Predictions, 2)
	assert.InDelta(t, 1400.0, result.Predictions[0].Value, 1e-9)
	assert.False(t, svc.HasRepository())
}

func TestForecastPropagatesTypedErrors(t *testing.T) {
	svc := NewForecastService(nil)

	short := models.Table{Header: []string{"Quarter", "ARR"}, Rows: [][]string{{"Q1 2024", "1"}, {"Q2 2024", "2"}}}
	_, err := svc.Forecast(context.Background(), short, linearConfig())
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	_, err = svc.Forecast(context.Background(), models.Table{Header: []string{"Name"}}, linearConfig())
	assert.ErrorIs(t, err, models.ErrColumnNotFound)
}

func TestForecastHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewForecastService(nil).Forecast(ctx, arrTable(), linearConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForecastUsesRandomSourceFactory(t *testing.T) {
	var seeds []int64
	factory := func(seed int64) montecarlo.RandomSource {
		seeds = append(seeds, seed)
		return montecarlo.NewSource(seed)
	}
	svc := NewForecastService(nil, WithRandomSource(factory))

	cfg := linearConfig()
	cfg.MonteCarlo = &models.MonteCarloConfig{Simulations: 50, VolatilityFactor: 1, DriftFactor: 1, Seed: 11}

	first, err := svc.Forecast(context.Background(), arrTable(), cfg)
	require.NoError(t, err)
	second, err := svc.Forecast(context.Background(), arrTable(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []int64{11, 11}, seeds)
	require.NotNil(t, first.MonteCarlo)
	assert.Equal(t, first.MonteCarlo.Percentiles, second.MonteCarlo.Percentiles)
}

func TestForecastAndStore(t *testing.T) {
	repo := new(MockForecastRunRepository)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(run *models.ForecastRun) bool {
		return run.Source == "finance_sheet" && run.Algorithm == models.AlgorithmLinear && run.ForecastPeriods == 2
	})).Return(nil)

	svc := NewForecastService(nil, WithRepository(repo))
	outcome, err := svc.ForecastAndStore(context.Background(), "finance_sheet", arrTable(), linearConfig())
	require.NoError(t, err)
	require.NotNil(t, outcome.Run)
	assert.NotEqual(t, uuid.Nil, outcome.Run.ID)

	stored, err := outcome.Run.DecodeResult()
	require.NoError(t, err)
	assert.Equal(t, outcome.Result.Predictions, stored.Predictions)
	repo.AssertExpectations(t)
}

func TestForecastAndStoreSaveError(t *testing.T) {
	repo := new(MockForecastRunRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := NewForecastService(nil, WithRepository(repo)).ForecastAndStore(context.Background(), "", arrTable(), linearConfig())
	assert.ErrorContains(t, err, "connection refused")
}

func TestForecastAndStoreDoesNotSaveFailures(t *testing.T) {
	repo := new(MockForecastRunRepository)
	svc := NewForecastService(nil, WithRepository(repo))

	_, err := svc.ForecastAndStore(context.Background(), "x", models.Table{Header: []string{"Name"}}, linearConfig())
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestForecastFromSource(t *testing.T) {
	repo := new(MockForecastRunRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	svc := NewForecastService(nil, WithRepository(repo))

	outcome, err := svc.ForecastFromSource(context.Background(), stubSource{table: arrTable()}, linearConfig(), false)
	require.NoError(t, err)
	assert.Nil(t, outcome.Run)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	outcome, err = svc.ForecastFromSource(context.Background(), stubSource{table: arrTable()}, linearConfig(), true)
	require.NoError(t, err)
	require.NotNil(t, outcome.Run)
	assert.Equal(t, "stub", outcome.Run.Source)

	fetchErr := errors.New("sheet unavailable")
	_, err = svc.ForecastFromSource(context.Background(), stubSource{err: fetchErr}, linearConfig(), false)
	assert.ErrorIs(t, err, fetchErr)
}

func TestHistoryWithoutRepository(t *testing.T) {
	svc := NewForecastService(nil)

	_, err := svc.Recent(context.Background(), 5)
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
	_, err = svc.ForecastAndStore(context.Background(), "x", arrTable(), linearConfig())
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
}

func TestHistoryDelegatesToRepository(t *testing.T) {
	id := uuid.New()
	run := &models.ForecastRun{ID: id, Source: "finance_sheet"}
	repo := new(MockForecastRunRepository)
	repo.On("GetLatest", mock.Anything, 5).Return([]*models.ForecastRun{run}, nil)
	repo.On("GetBySource", mock.Anything, "finance_sheet", 3).Return([]*models.ForecastRun{run}, nil)
	repo.On("GetByID", mock.Anything, id).Return(run, nil)
	repo.On("GetByID", mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)

	svc := NewForecastService(nil, WithRepository(repo))

	runs, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	runs, err = svc.RecentForSource(context.Background(), "finance_sheet", 3)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "finance_sheet", got.Source)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConfigFromSettings(t *testing.T) {
	settings := config.Config{
		Forecast:   config.ForecastConfig{Algorithm: "seasonal", ForecastPeriods: 4, TargetColumn: "arr", TimeColumn: "quarter"},
		MonteCarlo: config.MonteCarloConfig{Enabled: true, Simulations: 1000, VolatilityFactor: 1, DriftFactor: 1, Seed: 42},
	}

	cfg, err := ConfigFromSettings(settings, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, models.AlgorithmSeasonal, cfg.Algorithm)
	assert.Equal(t, 4, cfg.ForecastPeriods)
	require.NotNil(t, cfg.MonteCarlo)
	assert.Equal(t, int64(42), cfg.MonteCarlo.Seed)

	off := false
	cfg, err = ConfigFromSettings(settings, Overrides{Algorithm: "Moving_Average", ForecastPeriods: 2, TargetColumn: "revenue", MonteCarlo: &off})
	require.NoError(t, err)
	assert.Equal(t, models.AlgorithmMovingAverage, cfg.Algorithm)
	assert.Equal(t, 2, cfg.ForecastPeriods)
	assert.Equal(t, "revenue", cfg.TargetColumn)
	assert.Equal(t, "quarter", cfg.TimeColumn)
	assert.Nil(t, cfg.MonteCarlo)

	_, err = ConfigFromSettings(settings, Overrides{Algorithm: "arima"})
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestScheduleOverrides(t *testing.T) {
	on, off := true, false
	o := ScheduleOverrides(config.ScheduleConfig{Algorithm: "linear", ForecastPeriods: 6, MonteCarlo: &on})
	assert.Equal(t, "linear", o.Algorithm)
	assert.Equal(t, 6, o.ForecastPeriods)
	require.NotNil(t, o.MonteCarlo)
	assert.True(t, *o.MonteCarlo)

	assert.Nil(t, ScheduleOverrides(config.ScheduleConfig{}).MonteCarlo)

	settings := config.Config{
		Forecast:   config.ForecastConfig{Algorithm: "linear", ForecastPeriods: 4},
		MonteCarlo: config.MonteCarloConfig{Enabled: true, Simulations: 1000, VolatilityFactor: 1, DriftFactor: 1},
	}
	cfg, err := ConfigFromSettings(settings, ScheduleOverrides(config.ScheduleConfig{MonteCarlo: &off}))
	require.NoError(t, err)
	assert.Nil(t, cfg.MonteCarlo, "a schedule can switch off a globally enabled simulation")
}

func TestConfigFromSettingsLimits(t *testing.T) {
	settings := config.Config{
		Forecast:   config.ForecastConfig{Algorithm: "linear", ForecastPeriods: 4, MaxPeriods: 12},
		MonteCarlo: config.MonteCarloConfig{Simulations: 1000, VolatilityFactor: 1, DriftFactor: 1, MaxSimulations: 5000},
	}
	on := true

	_, err := ConfigFromSettings(settings, Overrides{ForecastPeriods: 13})
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	_, err = ConfigFromSettings(settings, Overrides{MonteCarlo: &on, Simulations: 5001})
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	cfg, err := ConfigFromSettings(settings, Overrides{ForecastPeriods: 12, MonteCarlo: &on, Simulations: 5000})
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.ForecastPeriods)
	assert.Equal(t, 5000, cfg.MonteCarlo.Simulations)
}
