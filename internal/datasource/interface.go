// Package datasource fetches spreadsheet-shaped tables from remote and local sources.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/arr-forecast/internal/models"
)

// TableSource defines the interface for fetching a header-plus-rows table
type TableSource interface {
	// FetchTable retrieves the current contents of the table
	FetchTable(ctx context.Context) (models.Table, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
	ErrCodeUnknown              = "unknown"
)

// Sentinel errors
var (
	ErrSourceDisabled    = errors.New("data source disabled")
	ErrCircuitOpen       = errors.New("circuit breaker open")
	ErrEmptyTable        = errors.New("table has no header row")
	ErrUnknownSourceType = errors.New("unknown data source type")
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the DataSourceError code from err, or ErrCodeUnknown
func ErrorCode(err error) string {
	var dsErr DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code
	}
	return ErrCodeUnknown
}
