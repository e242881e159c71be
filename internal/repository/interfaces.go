package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/arr-forecast/internal/models"
)

// ForecastRunRepository defines the interface for forecast history access
type ForecastRunRepository interface {
	Save(ctx context.Context, run *models.ForecastRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ForecastRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.ForecastRun, error)
	GetBySource(ctx context.Context, source string, limit int) ([]*models.ForecastRun, error)
}
