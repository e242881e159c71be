package datasource

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/arr-forecast/internal/config"
	"github.com/yourusername/arr-forecast/internal/metrics"
	"github.com/yourusername/arr-forecast/internal/models"
)

// SourceType represents the type of data source
type SourceType string

const (
	// HTTPSourceType fetches a spreadsheet over HTTP
	HTTPSourceType SourceType = "http"
	// FileSourceType reads a local CSV file
	FileSourceType SourceType = "file"
)

// Factory creates TableSource implementations based on configuration
type Factory struct {
	logger     *logrus.Entry
	httpClient *RateLimitedHTTPClient
}

// NewFactory creates a new data source factory
func NewFactory(httpClient *RateLimitedHTTPClient, logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Factory{
		logger:     logger.WithField("component", "datasource"),
		httpClient: httpClient,
	}
}

// NewSource creates a TableSource for one configured source.
// Every source is instrumented; sources with a cache TTL are also cached.
func (f *Factory) NewSource(cfg config.SourceConfig) (TableSource, error) {
	var source TableSource

	switch SourceType(cfg.Type) {
	case HTTPSourceType:
		if f.httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for source %s", cfg.Name)
		}
		if cfg.URL == "" {
			return nil, fmt.Errorf("source %s: url is required", cfg.Name)
		}
		source = NewHTTPSheetSource(f.httpClient, cfg.Name, cfg.URL, cfg.Format, cfg.APIKey)
	case FileSourceType:
		if cfg.Path == "" {
			return nil, fmt.Errorf("source %s: path is required", cfg.Name)
		}
		source = NewFileSource(cfg.Name, cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSourceType, cfg.Type)
	}

	source = &instrumentedSource{source: source}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		source = NewCachedSource(source, ttl)
	}
	return source, nil
}

// NewSources creates all enabled data sources from configuration, keyed by name
func (f *Factory) NewSources(sources []config.SourceConfig) (map[string]TableSource, error) {
	out := make(map[string]TableSource, len(sources))

	for _, srcCfg := range sources {
		if !srcCfg.Enabled {
			f.logger.WithField("source", srcCfg.Name).Debug("Skipping disabled data source")
			continue
		}

		source, err := f.NewSource(srcCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source %s: %w", srcCfg.Name, err)
		}

		out[srcCfg.Name] = source
		f.logger.WithFields(logrus.Fields{
			"source": srcCfg.Name,
			"type":   srcCfg.Type,
		}).Info("Created data source")
	}

	return out, nil
}

// instrumentedSource records fetch outcomes and latency
type instrumentedSource struct {
	source TableSource
}

func (s *instrumentedSource) Name() string {
	return s.source.Name()
}

func (s *instrumentedSource) FetchTable(ctx context.Context) (models.Table, error) {
	start := time.Now()
	table, err := s.source.FetchTable(ctx)
	metrics.RecordFetch(s.source.Name(), err == nil, time.Since(start).Seconds())
	return table, err
}
