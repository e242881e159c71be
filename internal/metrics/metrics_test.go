package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordForecast(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(ForecastRunsTotal.WithLabelValues("linear", "success"))

	RecordForecast("finance_sheet", "linear", 87.5, 0.002)

	assert.Equal(t, before+1, testutil.ToFloat64(ForecastRunsTotal.WithLabelValues("linear", "success")))
	assert.Equal(t, 87.5, testutil.ToFloat64(ForecastLastConfidence.WithLabelValues("finance_sheet")))
}

func TestRecordForecastFailure(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(ForecastRunsTotal.WithLabelValues("seasonal", "error"))

	RecordForecastFailure("seasonal")

	assert.Equal(t, before+1, testutil.ToFloat64(ForecastRunsTotal.WithLabelValues("seasonal", "error")))
}

func TestRecordFallbackAndMonteCarlo(t *testing.T) {
	InitRegistry()
	fallbacks := testutil.ToFloat64(ForecastFallbacksTotal.WithLabelValues("seasonal", "linear"))
	paths := testutil.ToFloat64(MonteCarloSimulationsTotal)

	RecordFallback("seasonal", "linear")
	RecordMonteCarlo(500)

	assert.Equal(t, fallbacks+1, testutil.ToFloat64(ForecastFallbacksTotal.WithLabelValues("seasonal", "linear")))
	assert.Equal(t, paths+500, testutil.ToFloat64(MonteCarloSimulationsTotal))
}

func TestRecordFetch(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(DatasourceFetchesTotal.WithLabelValues("sheet", "error"))

	RecordFetch("sheet", false, 0.1)
	RecordCacheHit("sheet")
	RecordCircuitBreakerTrip()

	assert.Equal(t, before+1, testutil.ToFloat64(DatasourceFetchesTotal.WithLabelValues("sheet", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(DatasourceCacheHitsTotal.WithLabelValues("sheet")), 1.0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordForecast("handler_test", "exponential", 50, 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "arr_forecast_forecast_runs_total"))
	assert.True(t, strings.Contains(body, `source="handler_test"`))
}
