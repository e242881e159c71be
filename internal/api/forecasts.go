package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/service"
)

// maxRequestBytes bounds uploaded tables
const maxRequestBytes = 10 << 20

// ForecastRequest is the body of POST /api/v1/forecasts
type ForecastRequest struct {
	Header  []string        `json:"header"`
	Rows    [][]interface{} `json:"rows"`
	Source  string          `json:"source,omitempty"`
	Persist bool            `json:"persist,omitempty"`
	Config  RequestConfig   `json:"config"`
}

// RequestConfig overrides the configured forecast defaults for one request
type RequestConfig struct {
	Algorithm       string                   `json:"algorithm,omitempty"`
	ForecastPeriods int                      `json:"forecastPeriods,omitempty"`
	TargetColumn    string                   `json:"targetColumn,omitempty"`
	TimeColumn      string                   `json:"timeColumn,omitempty"`
	MonteCarlo      *models.MonteCarloConfig `json:"monteCarlo,omitempty"`
}

// ForecastResponse is a forecast result plus the stored run id when persisted
type ForecastResponse struct {
	RunID *uuid.UUID `json:"runId,omitempty"`
	*models.ForecastResult
}

// Table converts the request rows into a table, rendering numbers verbatim
func (r ForecastRequest) Table() models.Table {
	table := models.Table{Header: r.Header, Rows: make([][]string, len(r.Rows))}
	for i, row := range r.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellString(cell)
		}
		table.Rows[i] = cells
	}
	return table
}

func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (s *Server) forecastConfig(rc RequestConfig) (models.ForecastConfig, error) {
	cfg, err := service.ConfigFromSettings(s.settings, service.Overrides{
		Algorithm:       rc.Algorithm,
		ForecastPeriods: rc.ForecastPeriods,
		TargetColumn:    rc.TargetColumn,
		TimeColumn:      rc.TimeColumn,
	})
	if err != nil {
		return models.ForecastConfig{}, err
	}
	if rc.MonteCarlo != nil {
		cfg.MonteCarlo = rc.MonteCarlo
	}
	if err := cfg.Validate(); err != nil {
		return models.ForecastConfig{}, err
	}
	if err := service.CheckLimits(s.settings, cfg); err != nil {
		return models.ForecastConfig{}, err
	}
	return cfg, nil
}

func decodeForecastRequest(w http.ResponseWriter, r *http.Request) (ForecastRequest, error) {
	var req ForecastRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return req, fmt.Errorf("failed to read request body: %w", err)
	}

	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	if len(req.Header) == 0 {
		return req, errors.New("header is required")
	}
	return req, nil
}

func (s *Server) handleCreateForecast(w http.ResponseWriter, r *http.Request) {
	req, err := decodeForecastRequest(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	cfg, err := s.forecastConfig(req.Config)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.Persist {
		outcome, err := s.forecasts.ForecastAndStore(r.Context(), req.Source, req.Table(), cfg)
		if err != nil {
			s.writeError(w, err)
			return
		}
		id := outcome.Run.ID
		writeJSON(w, http.StatusCreated, ForecastResponse{RunID: &id, ForecastResult: outcome.Result})
		return
	}

	result, err := s.forecasts.Forecast(r.Context(), req.Table(), cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ForecastResponse{ForecastResult: result})
}

func (s *Server) handleListForecasts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	var (
		runs []*models.ForecastRun
		err  error
	)
	if source := r.URL.Query().Get("source"); source != "" {
		runs, err = s.forecasts.RecentForSource(r.Context(), source, limit)
	} else {
		runs, err = s.forecasts.Recent(r.Context(), limit)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid forecast id %q", r.PathValue("id")))
		return
	}

	run, err := s.forecasts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
