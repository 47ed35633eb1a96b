package vocab

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/revyh/glossify/internal/cefr"
	"golang.org/x/sync/singleflight"
)

type cachedLevel struct {
	level cefr.Level
	ok    bool
}

// CachedLookup memoizes another Lookup. Concurrent misses for the same key
// share one backend call. Errors are never cached.
type CachedLookup struct {
	next    Lookup
	cache   *ttlcache.Cache[string, cachedLevel]
	sfGroup singleflight.Group
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewCachedLookup wraps next with a TTL cache. ttl <= 0 never expires entries.
func NewCachedLookup(next Lookup, ttl time.Duration) *CachedLookup {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	cache := ttlcache.New(
		ttlcache.WithTTL[string, cachedLevel](ttl),
	)
	go cache.Start()
	return &CachedLookup{next: next, cache: cache}
}

// Level implements Lookup.
func (c *CachedLookup) Level(ctx context.Context, word, lang string) (cefr.Level, bool, error) {
	key := BaseLanguage(lang) + "\x00" + word
	if item := c.cache.Get(key); item != nil {
		c.hits.Add(1)
		v := item.Value()
		return v.level, v.ok, nil
	}

	v, err, _ := c.sfGroup.Do(key, func() (any, error) {
		if item := c.cache.Get(key); item != nil {
			return item.Value(), nil
		}
		c.misses.Add(1)
		lvl, ok, err := c.next.Level(ctx, word, lang)
		if err != nil {
			return nil, err
		}
		res := cachedLevel{level: lvl, ok: ok}
		c.cache.Set(key, res, ttlcache.DefaultTTL)
		return res, nil
	})
	if err != nil {
		return cefr.Unknown, false, err
	}
	res := v.(cachedLevel)
	return res.level, res.ok, nil
}

// Stats returns cache hits and backend calls.
func (c *CachedLookup) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Close stops the cache janitor.
func (c *CachedLookup) Close() {
	c.cache.Stop()
}
