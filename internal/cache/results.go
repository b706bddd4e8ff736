package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"fincalc/internal/calculators"
	"fincalc/internal/log"
)

// Stats are the result cache counters exposed on /metrics.
type Stats struct {
	Hits     int64
	Misses   int64
	Shared   int64
	Failures int64
}

// ResultCache memoizes calculator output by kind and canonical input.
// Identical calculations running at the same time are computed once.
type ResultCache struct {
	store  Store
	group  singleflight.Group
	logger *log.Logger

	hits     atomic.Int64
	misses   atomic.Int64
	shared   atomic.Int64
	failures atomic.Int64
}

// NewResultCache wraps a store.
func NewResultCache(store Store, logger *log.Logger) *ResultCache {
	return &ResultCache{store: store, logger: logger.WithComponent(log.ComponentCache)}
}

// Key identifies a calculation.
func Key(kind string, in calculators.Input) string {
	return kind + "?" + in.Key()
}

// Compute returns the cached result set for the calculation or runs it.
// Engine errors are returned as-is and never cached. Store failures are
// logged and the calculation runs uncached.
func (c *ResultCache) Compute(ctx context.Context, calc calculators.Calculator, in calculators.Input) (calculators.ResultSet, bool, error) {
	key := Key(calc.Kind(), in)

	if rs, ok := c.lookup(ctx, key); ok {
		c.hits.Add(1)
		return rs, true, nil
	}
	c.misses.Add(1)

	v, err, shared := c.group.Do(key, func() (any, error) {
		rs, err := calc.Compute(in)
		if err != nil {
			return nil, err
		}
		c.save(ctx, key, rs)
		return rs, nil
	})
	if shared {
		c.shared.Add(1)
	}
	if err != nil {
		return calculators.ResultSet{}, false, err
	}
	return v.(calculators.ResultSet), false, nil
}

func (c *ResultCache) lookup(ctx context.Context, key string) (calculators.ResultSet, bool) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.failures.Add(1)
		c.logger.WarnContext(ctx, "Result cache lookup failed", log.FieldError, err, "backend", c.store.Name())
		return calculators.ResultSet{}, false
	}
	if !ok {
		return calculators.ResultSet{}, false
	}
	var rs calculators.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		c.failures.Add(1)
		c.logger.WarnContext(ctx, "Discarding undecodable cache entry", log.FieldError, err, "key", key)
		return calculators.ResultSet{}, false
	}
	return rs, true
}

func (c *ResultCache) save(ctx context.Context, key string, rs calculators.ResultSet) {
	data, err := json.Marshal(rs)
	if err != nil {
		c.failures.Add(1)
		c.logger.WarnContext(ctx, "Failed to encode result set", log.FieldError, err)
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.failures.Add(1)
		c.logger.WarnContext(ctx, "Result cache store failed", log.FieldError, err, "backend", c.store.Name())
	}
}

// Ping checks the backing store.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Backend names the backing store.
func (c *ResultCache) Backend() string {
	return c.store.Name()
}

// Stats returns a snapshot of the counters.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Shared:   c.shared.Load(),
		Failures: c.failures.Load(),
	}
}
