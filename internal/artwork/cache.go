package artwork

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCacheSize bounds each of the hit and miss caches
	DefaultCacheSize = 512

	// hitCacheTTL is how long found artwork is reused. Catalog entries
	// rarely lose their artwork.
	hitCacheTTL = 24 * time.Hour

	// negativeCacheTTL bounds how long an empty search result is
	// remembered; new releases do gain artwork.
	negativeCacheTTL = 10 * time.Minute
)

// CachedCatalog remembers search results per query so that replaying a
// song does not hit the network again. Errors are never cached.
type CachedCatalog struct {
	next   Catalog
	hits   *expirable.LRU[string, []Result]
	misses *expirable.LRU[string, struct{}]
}

// NewCachedCatalog wraps next with a bounded result cache
func NewCachedCatalog(next Catalog) *CachedCatalog {
	return newCachedCatalog(next, DefaultCacheSize, hitCacheTTL, negativeCacheTTL)
}

func newCachedCatalog(next Catalog, size int, hitTTL, missTTL time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:   next,
		hits:   expirable.NewLRU[string, []Result](size, nil, hitTTL),
		misses: expirable.NewLRU[string, struct{}](size, nil, missTTL),
	}
}

// SearchTrack implements Catalog
func (c *CachedCatalog) SearchTrack(ctx context.Context, query string) ([]Result, error) {
	if results, ok := c.hits.Get(query); ok {
		return results, nil
	}
	if _, ok := c.misses.Get(query); ok {
		return nil, nil
	}

	results, err := c.next.SearchTrack(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(results) > 0 {
		c.hits.Add(query, results)
	} else {
		c.misses.Add(query, struct{}{})
	}
	return results, nil
}

// Len returns the number of cached queries
func (c *CachedCatalog) Len() int {
	return c.hits.Len() + c.misses.Len()
}
