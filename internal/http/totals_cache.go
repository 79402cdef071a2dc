package http

import (
	"context"
	"time"

	"worklog/internal/cache"
	"worklog/internal/core"
	"worklog/internal/store"
)

// TotalsCache memoizes totals per period window and job filter. It is a
// store.Observer: every change purges it.
type TotalsCache struct {
	lru *cache.LRUCache[core.CalculatedTotals]
}

var _ store.Observer = (*TotalsCache)(nil)

// NewTotalsCache creates a cache holding at most size results for ttl.
func NewTotalsCache(size int, ttl time.Duration) *TotalsCache {
	return &TotalsCache{lru: cache.NewLRUCache[core.CalculatedTotals](size, ttl)}
}

// ObserveChange drops every cached result. Any mutation may touch any
// window, so per-key invalidation would need the old entry too.
func (c *TotalsCache) ObserveChange(context.Context, core.Change) error {
	c.lru.Purge()
	return nil
}

// Get returns the cached totals or computes them once for all concurrent
// callers. The key uses the window start, so every day of one week shares
// an entry.
func (c *TotalsCache) Get(period core.Period, ref core.Date, filter string, compute func() core.CalculatedTotals) core.CalculatedTotals {
	key := totalsKey(period, core.BoundsFor(period, ref), filter)
	totals, _ := c.lru.GetOrLoad(key, func() (core.CalculatedTotals, error) {
		return compute(), nil
	})
	return totals
}

// Size returns the number of cached results.
func (c *TotalsCache) Size() int { return c.lru.Size() }

// CleanExpired lets a cache.Manager sweep the cache.
func (c *TotalsCache) CleanExpired() int { return c.lru.CleanExpired() }

func totalsKey(period core.Period, b core.Bounds, filter string) string {
	return string(period) + "|" + b.Start.String() + "|" + filter
}
