package tokenizer

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/translatekit/transchunk/types"
)

// DefaultCacheSize is the default number of memoized counts.
const DefaultCacheSize = 4096

// Cached memoizes another TokenCounter. The engine's binary search measures
// many overlapping prefixes of the same span; with a remote counter each
// probe is a round trip, so the cache pays for itself immediately.
type Cached struct {
	inner types.TokenCounter
	cache *lru.Cache[string, int]
}

// NewCached wraps inner with an LRU of the given capacity (<=0 selects
// DefaultCacheSize).
func NewCached(inner types.TokenCounter, capacity int) (*Cached, error) {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	cache, err := lru.New[string, int](capacity)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// CountTokens returns the memoized count for text, consulting the inner
// counter on a miss. Errors are never cached.
func (c *Cached) CountTokens(ctx context.Context, text string) (int, error) {
	if n, ok := c.cache.Get(text); ok {
		return n, nil
	}
	n, err := c.inner.CountTokens(ctx, text)
	if err != nil {
		return 0, err
	}
	c.cache.Add(text, n)
	return n, nil
}
