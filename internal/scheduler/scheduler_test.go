package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/arr-forecast/internal/config"
	"github.com/yourusername/arr-forecast/internal/datasource"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/service"
)

type recordingRunner struct {
	mu      sync.Mutex
	calls   []string
	persist []bool
	err     error
}

func (r *recordingRunner) ForecastFromSource(ctx context.Context, src datasource.TableSource, cfg models.ForecastConfig, persist bool) (*service.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, src.Name())
	r.persist = append(r.persist, persist)
	if r.err != nil {
		return nil, r.err
	}
	return &service.Outcome{Result: &models.ForecastResult{Algorithm: cfg.Algorithm}}, nil
}

type namedSource string

func (n namedSource) Name() string { return string(n) }

func (n namedSource) FetchTable(ctx context.Context) (models.Table, error) {
	return models.Table{}, nil
}

func weeklyJob(name string) ForecastJob {
	return ForecastJob{
		Name:    name,
		Cron:    "0 6 * * 1",
		Source:  namedSource("finance_sheet"),
		Config:  models.ForecastConfig{Algorithm: models.AlgorithmLinear, ForecastPeriods: 4},
		Persist: true,
	}
}

func TestScheduleForecastValidation(t *testing.T) {
	s := NewScheduler(&recordingRunner{}, nil)

	require.NoError(t, s.ScheduleForecast(weeklyJob("weekly")))
	assert.Error(t, s.ScheduleForecast(weeklyJob("weekly")), "duplicate names are rejected")

	bad := weeklyJob("bad")
	bad.Cron = "every tuesday"
	assert.Error(t, s.ScheduleForecast(bad))

	noSource := weeklyJob("nosource")
	noSource.Source = nil
	assert.Error(t, s.ScheduleForecast(noSource))

	assert.Equal(t, []string{"weekly"}, s.Jobs())
}

func TestRunNow(t *testing.T) {
	runner := &recordingRunner{}
	s := NewScheduler(runner, nil)
	require.NoError(t, s.ScheduleForecast(weeklyJob("weekly")))

	outcome, err := s.RunNow(context.Background(), "weekly")
	require.NoError(t, err)
	assert.Equal(t, models.AlgorithmLinear, outcome.Result.Algorithm)
	assert.Equal(t, []string{"finance_sheet"}, runner.calls)
	assert.Equal(t, []bool{true}, runner.persist)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRunNowPropagatesErrors(t *testing.T) {
	runner := &recordingRunner{err: errors.New("sheet unavailable")}
	s := NewScheduler(runner, nil)
	require.NoError(t, s.ScheduleForecast(weeklyJob("weekly")))

	_, err := s.RunNow(context.Background(), "weekly")
	assert.ErrorContains(t, err, "sheet unavailable")
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&recordingRunner{}, nil)
	assert.Error(t, s.Start(), "no jobs scheduled")
	assert.True(t, s.NextRun().IsZero())

	require.NoError(t, s.ScheduleForecast(weeklyJob("weekly")))
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleForecast(weeklyJob("another")))
	assert.Error(t, s.RemoveJob("weekly"))

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.False(t, s.NextRun().IsZero())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestRemoveJob(t *testing.T) {
	s := NewScheduler(&recordingRunner{}, nil)
	require.NoError(t, s.ScheduleForecast(weeklyJob("a")))
	require.NoError(t, s.ScheduleForecast(weeklyJob("b")))

	require.NoError(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.Jobs())
	assert.Len(t, s.Entries(), 1)
	assert.ErrorIs(t, s.RemoveJob("a"), models.ErrNotFound)
}

func TestJobsFromConfig(t *testing.T) {
	on := true
	cfg := config.Config{
		Forecast:   config.ForecastConfig{Algorithm: "seasonal", ForecastPeriods: 4},
		MonteCarlo: config.MonteCarloConfig{Simulations: 500, VolatilityFactor: 1, DriftFactor: 1},
		Schedules: []config.ScheduleConfig{
			{Name: "weekly_arr", Source: "finance_sheet", Cron: "0 6 * * 1", ForecastPeriods: 8, MonteCarlo: &on},
			{Name: "disabled", Source: "off", Cron: "@daily"},
		},
	}
	sources := map[string]datasource.TableSource{"finance_sheet": namedSource("finance_sheet")}

	jobs, err := JobsFromConfig(cfg, sources, true)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "weekly_arr", jobs[0].Name)
	assert.Equal(t, models.AlgorithmSeasonal, jobs[0].Config.Algorithm)
	assert.Equal(t, 8, jobs[0].Config.ForecastPeriods)
	require.NotNil(t, jobs[0].Config.MonteCarlo)
	assert.Equal(t, 500, jobs[0].Config.MonteCarlo.Simulations)
	assert.True(t, jobs[0].Persist)

	cfg.Schedules[0].Algorithm = "arima"
	_, err = JobsFromConfig(cfg, sources, false)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}
