// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const cleanupInterval = 10 * time.Minute

// CachedSearcher caches the results of another Searcher by query text. Lookups that returned
// results are kept for ttlHit, lookups without results for ttlMiss. Errors are not cached.
// Concurrent lookups for the same query share one upstream request.
type CachedSearcher struct {
	searcher Searcher
	ttlHit   time.Duration
	ttlMiss  time.Duration
	metrics  *Metrics

	cache *cache.Cache
	group singleflight.Group
}

func NewCachedSearcher(searcher Searcher, ttlHit, ttlMiss time.Duration) *CachedSearcher {
	return &CachedSearcher{
		searcher: searcher,
		ttlHit:   ttlHit,
		ttlMiss:  ttlMiss,
		cache:    cache.New(ttlHit, cleanupInterval),
	}
}

// WithMetrics makes the cache count its hits on m.
func (c *CachedSearcher) WithMetrics(m *Metrics) *CachedSearcher {
	c.metrics = m
	return c
}

func (c *CachedSearcher) Name() string {
	return "geocoder cache using " + c.searcher.Name()
}

func (c *CachedSearcher) Search(ctx context.Context, text string) ([]Result, error) {
	key := newKey(c.searcher.Name(), text)

	if cached, ok := c.cache.Get(key); ok {
		c.metrics.cacheHit(c.searcher.Name())
		return cloneResults(cached.([]Result)), nil
	}

	// The shared lookup is detached from the caller that started it, so one cancelled
	// caller does not fail the others. Each caller still returns on its own cancellation.
	flight := c.group.DoChan(key, func() (any, error) {
		results, err := c.searcher.Search(context.WithoutCancel(ctx), text)
		if err != nil {
			return nil, err
		}
		ttl := c.ttlHit
		if len(results) == 0 {
			ttl = c.ttlMiss
		}
		c.cache.Set(key, results, ttl)
		return results, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneResults(res.Val.([]Result)), nil
	}
}

// Flush drops all cached lookups.
func (c *CachedSearcher) Flush() {
	c.cache.Flush()
}

// cloneResults copies results so callers cannot alter cached entries. It never returns nil.
func cloneResults(results []Result) []Result {
	if results == nil {
		return []Result{}
	}
	return slices.Clone(results)
}

func newKey(provider, text string) string {
	return provider + "|" + strings.ToLower(strings.Join(strings.Fields(text), " "))
}
