package models

import (
	"errors"
	"fmt"
	"strings"
)

// Custom errors
var (
	ErrColumnNotFound   = errors.New("column not found")
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidConfig    = errors.New("invalid forecast config")
	ErrNotFound         = errors.New("record not found")
)

// ColumnNotFoundError is returned when no header matches a column hint or its synonyms
type ColumnNotFoundError struct {
	Role       string
	Candidates []string
	Header     []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("%s column not found: tried [%s] against header [%s]",
		e.Role, strings.Join(e.Candidates, ", "), strings.Join(e.Header, ", "))
}

// Is matches ErrColumnNotFound
func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// InsufficientDataError is returned when a series is too short to fit
type InsufficientDataError struct {
	Required int
	Actual   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d historical points, have %d", e.Required, e.Actual)
}

// Is matches ErrInsufficientData
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// DegenerateFitWarning flags zero actual values excluded from the MAPE aggregate.
// It is informational and never returned as an error from a forecast.
type DegenerateFitWarning struct {
	Algorithm   Algorithm
	ZeroActuals int
}

func (w DegenerateFitWarning) String() string {
	return fmt.Sprintf("%s: %d zero-valued actual(s) excluded from MAPE", w.Algorithm, w.ZeroActuals)
}
