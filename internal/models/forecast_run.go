package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ForecastRun represents a persisted forecast invocation
type ForecastRun struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	Source             string          `db:"source" json:"source"`
	Algorithm          Algorithm       `db:"algorithm" json:"algorithm"`
	RequestedAlgorithm Algorithm       `db:"requested_algorithm" json:"requestedAlgorithm"`
	ForecastPeriods    int             `db:"forecast_periods" json:"forecastPeriods"`
	Confidence         float64         `db:"confidence" json:"confidence"`
	R2                 float64         `db:"r2" json:"r2"`
	MAPE               float64         `db:"mape" json:"mape"`
	MonteCarlo         bool            `db:"monte_carlo" json:"monteCarlo"`
	Config             json.RawMessage `db:"config" json:"config"`
	Result             json.RawMessage `db:"result" json:"result"`
	CreatedAt          time.Time       `db:"created_at" json:"createdAt"`
}

// NewForecastRun builds a persistable record from a finished forecast
func NewForecastRun(source string, cfg ForecastConfig, result *ForecastResult) (*ForecastRun, error) {
	if result == nil {
		return nil, fmt.Errorf("forecast result is required")
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode forecast config: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode forecast result: %w", err)
	}

	return &ForecastRun{
		ID:                 uuid.New(),
		Source:             source,
		Algorithm:          result.Algorithm,
		RequestedAlgorithm: result.RequestedAlgorithm,
		ForecastPeriods:    len(result.Predictions),
		Confidence:         result.Confidence,
		R2:                 result.Metrics.R2,
		MAPE:               result.Metrics.MAPE,
		MonteCarlo:         result.MonteCarlo != nil,
		Config:             configJSON,
		Result:             resultJSON,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

// DecodeResult unmarshals the stored forecast result
func (r *ForecastRun) DecodeResult() (*ForecastResult, error) {
	var result ForecastResult
	if err := json.Unmarshal(r.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode forecast result: %w", err)
	}
	return &result, nil
}
