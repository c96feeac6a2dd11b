package common

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// DefaultModelCacheSize holds every (medium, endpoint) pair twice over, so a
// reference-data refresh does not evict the models of the other medium.
const DefaultModelCacheSize = 8

// ModelCache is a bounded LRU of fitted models.  Concurrent misses on the same
// key share one load.  Safe for concurrent use.
type ModelCache[V any] struct {
	name    string
	lru     *lru.Cache[string, V]
	group   singleflight.Group
	metrics EngineMetrics
	logger  logging.Logger
}

// NewModelCache creates a cache holding at most size entries.
func NewModelCache[V any](name string, size int, metrics EngineMetrics, logger logging.Logger) (*ModelCache[V], error) {
	if size <= 0 {
		size = DefaultModelCacheSize
	}
	if metrics == nil {
		metrics = NewNoopEngineMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c, err := lru.New[string, V](size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "creating model cache")
	}
	return &ModelCache[V]{name: name, lru: c, metrics: metrics, logger: logger.Named("model_cache")}, nil
}

// GetOrLoad returns the cached value for key, calling load on a miss.  Load
// errors are returned to every waiter and nothing is cached.
func (c *ModelCache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		c.metrics.RecordCacheAccess(ctx, true, c.name)
		c.logger.Debug("model cache hit", logging.String("key", key))
		return v, nil
	}
	c.metrics.RecordCacheAccess(ctx, false, c.name)

	res, err, shared := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.lru.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	c.logger.Debug("model cache fill", logging.String("key", key), logging.Bool("shared", shared))
	return res.(V), nil
}

// Len returns the number of cached entries.
func (c *ModelCache[V]) Len() int { return c.lru.Len() }

// Purge removes every entry.
func (c *ModelCache[V]) Purge() { c.lru.Purge() }

// RemovePrefix removes every entry whose key starts with prefix and returns
// the number removed.
func (c *ModelCache[V]) RemovePrefix(prefix string) int {
	n := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			if c.lru.Remove(k) {
				n++
			}
		}
	}
	return n
}

//Personal.AI order the ending
