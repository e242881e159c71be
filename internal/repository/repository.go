package repository

import (
	"fmt"

	"github.com/yourusername/arr-forecast/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	ForecastRun ForecastRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		ForecastRun: NewPostgresForecastRunRepository(db),
	}, nil
}
