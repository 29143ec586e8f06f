// Copyright (c) 2026 SQLSage. All rights reserved.

package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingEmbedder_CachesByExactText(t *testing.T) {
	inner := &fakeEmbedder{}
	cached := NewCachingEmbedder(inner, 0)

	v1, err := cached.Embed(context.Background(), "how many orders")
	require.NoError(t, err)
	v2, err := cached.Embed(context.Background(), "how many orders")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, inner.calls, "second call for identical text must hit the cache, not the embedder")

	_, err = cached.Embed(context.Background(), "how many customers")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
