package ecotox

import (
	"context"
	"fmt"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/internal/intelligence/common"
	"github.com/turtacn/ecowarn/internal/intelligence/gbt"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// ModelProvider hands out a fitted classifier for a reference table.
type ModelProvider interface {
	Model(ctx context.Context, table *reference.Table, cfg ModelConfig) (gbt.Model, error)
}

// RetrainingProvider trains a fresh classifier on every call.
type RetrainingProvider struct {
	trainer *Trainer
}

// NewRetrainingProvider wraps trainer.  A nil trainer means the package
// default.
func NewRetrainingProvider(trainer *Trainer) *RetrainingProvider {
	if trainer == nil {
		trainer = defaultTrainer
	}
	return &RetrainingProvider{trainer: trainer}
}

// Model implements ModelProvider.
func (p *RetrainingProvider) Model(ctx context.Context, table *reference.Table, cfg ModelConfig) (gbt.Model, error) {
	return p.trainer.Train(ctx, table, cfg)
}

// CachedProvider memoises fitted models keyed by medium, endpoint and the
// content fingerprint of the table, so an edited table always retrains.
// Training is deterministic for a fixed table and seed, so cached and fresh
// models predict identically.
type CachedProvider struct {
	next   ModelProvider
	cache  *common.ModelCache[gbt.Model]
	logger logging.Logger
}

// NewCachedProvider wraps next with an LRU of at most size models.
func NewCachedProvider(next ModelProvider, size int, metrics common.EngineMetrics, logger logging.Logger) (*CachedProvider, error) {
	if next == nil {
		return nil, errors.InvalidParam("cached provider needs an underlying provider")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c, err := common.NewModelCache[gbt.Model]("models", size, metrics, logger)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{next: next, cache: c, logger: logger.Named("model_provider")}, nil
}

// ModelKey returns the cache key of a table under cfg.
func ModelKey(medium exposure.Medium, endpoint exposure.Endpoint, fingerprint string) string {
	return fmt.Sprintf("%s|%s|%s", medium, endpoint, fingerprint)
}

// Model implements ModelProvider.  Tables that cannot be fingerprinted are
// trained without caching.
func (p *CachedProvider) Model(ctx context.Context, table *reference.Table, cfg ModelConfig) (gbt.Model, error) {
	if table == nil {
		return p.next.Model(ctx, table, cfg)
	}
	fp, err := table.Fingerprint()
	if err != nil {
		p.logger.Debug("table fingerprint unavailable, training uncached",
			logging.String("table", table.Key()), logging.Err(err))
		return p.next.Model(ctx, table, cfg)
	}
	key := ModelKey(cfg.Medium, cfg.Endpoint, fp)
	return p.cache.GetOrLoad(ctx, key, func(ctx context.Context) (gbt.Model, error) {
		return p.next.Model(ctx, table, cfg)
	})
}

// Invalidate drops every cached model for (medium, endpoint).
func (p *CachedProvider) Invalidate(medium exposure.Medium, endpoint exposure.Endpoint) int {
	n := p.cache.RemovePrefix(fmt.Sprintf("%s|%s|", medium, endpoint))
	if n > 0 {
		p.logger.Info("cached models invalidated",
			logging.String("medium", medium.String()),
			logging.String("endpoint", endpoint.String()),
			logging.Int("count", n))
	}
	return n
}

// Purge drops every cached model.
func (p *CachedProvider) Purge() { p.cache.Purge() }

// Len returns the number of cached models.
func (p *CachedProvider) Len() int { return p.cache.Len() }

//Personal.AI order the ending
