package datasource

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/yourusername/arr-forecast/internal/metrics"
	"github.com/yourusername/arr-forecast/internal/models"
)

const tableCacheKey = "table"

// CachedSource memoizes another source's table for a fixed TTL
type CachedSource struct {
	source TableSource
	cache  *cache.Cache
}

// NewCachedSource wraps source with a TTL cache
func NewCachedSource(source TableSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Name returns the wrapped source name
func (s *CachedSource) Name() string {
	return s.source.Name()
}

// FetchTable returns the cached table or fetches and caches a fresh one.
// Failed fetches are not cached.
func (s *CachedSource) FetchTable(ctx context.Context) (models.Table, error) {
	if cached, found := s.cache.Get(tableCacheKey); found {
		metrics.RecordCacheHit(s.Name())
		return cached.(models.Table), nil
	}

	table, err := s.source.FetchTable(ctx)
	if err != nil {
		return models.Table{}, err
	}
	s.cache.SetDefault(tableCacheKey, table)
	return table, nil
}

// Invalidate drops the cached table
func (s *CachedSource) Invalidate() {
	s.cache.Delete(tableCacheKey)
}
