// Copyright (c) 2026 SQLSage. All rights reserved.

package vectorindex

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the embedding cache. Schema re-index touches every
// table/column/relationship summary at once; this comfortably holds a
// few thousand distinct strings before evicting least-recently-used entries.
const DefaultCacheSize = 4096

// cachingEmbedder wraps an [Embedder] with a bounded LRU keyed by the exact
// text embedded, so re-indexing an unchanged schema or repeating a query
// never re-pays the embedding API call.
type cachingEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachingEmbedder wraps inner with an LRU cache of at most size entries.
func NewCachingEmbedder(inner Embedder, size int) Embedder {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		// Only returns an error for a non-positive size, already guarded above.
		panic(err)
	}
	return &cachingEmbedder{inner: inner, cache: cache}
}

func (c *cachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v, nil
	}
	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, v)
	return v, nil
}
