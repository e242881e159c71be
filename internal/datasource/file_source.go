package datasource

import (
	"context"
	"errors"
	"os"

	"github.com/yourusername/arr-forecast/internal/models"
)

// FileSource reads a table from a local CSV file
type FileSource struct {
	name string
	path string
}

// NewFileSource creates a new local file source
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

// Name returns the data source name
func (s *FileSource) Name() string {
	return s.name
}

// FetchTable opens and parses the file
func (s *FileSource) FetchTable(ctx context.Context) (models.Table, error) {
	if err := ctx.Err(); err != nil {
		return models.Table{}, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Table{}, NewDataSourceError(s.name, ErrCodeNotFound, "file not found: "+s.path, err)
		}
		return models.Table{}, NewDataSourceError(s.name, ErrCodeUnknown, "failed to open file", err)
	}
	defer file.Close()

	table, err := ParseCSV(file)
	if err != nil {
		return models.Table{}, NewDataSourceError(s.name, ErrCodeInvalidData, "failed to parse csv", err)
	}
	return table, nil
}
