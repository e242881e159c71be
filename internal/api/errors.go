package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/service"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps engine and service errors onto HTTP status codes
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_config"
	case errors.Is(err, models.ErrColumnNotFound):
		return http.StatusUnprocessableEntity, "column_not_found"
	case errors.Is(err, models.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable, "persistence_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}
