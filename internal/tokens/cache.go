package tokens

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source is anything that can build a catalog and resolve a custom mint.
type Source interface {
	Load(ctx context.Context) LoadResult
	Import(ctx context.Context, mint string) (Descriptor, error)
}

// Cache shares one upstream catalog between sessions for ttl. Concurrent
// loads collapse into a single fetch. Fallback results are never cached so
// the next caller retries upstream.
type Cache struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	result   LoadResult
	loadedAt time.Time
	group    singleflight.Group
}

const sharedLoadTimeout = 60 * time.Second

func NewCache(src Source, ttl time.Duration) *Cache {
	return &Cache{src: src, ttl: ttl, now: time.Now}
}

func (c *Cache) Load(ctx context.Context) LoadResult {
	if res, ok := c.cached(); ok {
		return res
	}
	v, _, _ := c.group.Do("catalog", func() (any, error) {
		if res, ok := c.cached(); ok {
			return res, nil
		}
		// Waiters share this load, so it must outlive the caller that started it.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		res := c.src.Load(lctx)
		if !res.Fallback {
			c.mu.Lock()
			c.result = res
			c.loadedAt = c.now()
			c.mu.Unlock()
		}
		return res, nil
	})
	return v.(LoadResult)
}

// Import checks the cached catalog before asking the source.
func (c *Cache) Import(ctx context.Context, mint string) (Descriptor, error) {
	if res, ok := c.cached(); ok {
		if d, found := res.Catalog.Find(mint); found {
			return d, nil
		}
	}
	return c.src.Import(ctx, mint)
}

// Invalidate drops the cached catalog.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = LoadResult{}
	c.loadedAt = time.Time{}
}

func (c *Cache) cached() (LoadResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result.Catalog == nil {
		return LoadResult{}, false
	}
	if c.ttl > 0 && c.now().Sub(c.loadedAt) >= c.ttl {
		return LoadResult{}, false
	}
	return c.result, true
}
