package dataprocessing

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"realtydash/internal/infrastructure"
)

// LoadFunc produces a cleaned dataset for a path
type LoadFunc func(ctx context.Context, path string) (*PipelineResult, error)

// CacheKey identifies a cached dataset. Version changes whenever the
// cleaning rules change so stale results are never served.
type CacheKey struct {
	Path    string
	Version string
}

// DatasetCache is a read-through cache of cleaned datasets. Each key is
// computed at most once at a time; failed loads are not cached.
type DatasetCache struct {
	load    LoadFunc
	version string
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	mu      sync.RWMutex
	entries map[CacheKey]*PipelineResult
	group   singleflight.Group
}

// NewDatasetCache creates a cache in front of load
func NewDatasetCache(load LoadFunc, version string, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DatasetCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetCache{
		load:    load,
		version: version,
		logger:  logger.With(slog.String("component", "dataset_cache")),
		metrics: metrics,
		entries: make(map[CacheKey]*PipelineResult),
	}
}

// NewPipelineCache creates a cache that fills itself by running p
func NewPipelineCache(p *Pipeline, version string, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DatasetCache {
	return NewDatasetCache(p.Run, version, logger, metrics)
}

// Get returns the cleaned dataset for path, loading it on first use
func (c *DatasetCache) Get(ctx context.Context, path string) (*PipelineResult, error) {
	key := CacheKey{Path: path, Version: c.version}

	c.mu.RLock()
	res, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		infrastructure.RecordCacheLookup(ctx, c.metrics, true)
		return res, nil
	}

	infrastructure.RecordCacheLookup(ctx, c.metrics, false)
	v, err, shared := c.group.Do(key.Path+"\x00"+key.Version, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		res, err := c.load(ctx, path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = res
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "dataset load shared", slog.String("path", path))
	}
	return v.(*PipelineResult), nil
}

// Len returns the number of cached datasets
func (c *DatasetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
