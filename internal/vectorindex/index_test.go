// Copyright (c) 2026 SQLSage. All rights reserved.

package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/schema"
)

// fakeEmbedder returns a deterministic, content-derived vector so tests never
// touch a real embedding API.
type fakeEmbedder struct{ calls int }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	v := make([]float32, 4)
	for i, r := range text {
		v[i%4] += float32(r)
	}
	return v, nil
}

// fakeStore is an in-memory [Store] keyed by (databaseID, kind).
type fakeStore struct {
	byKind map[string][]Item
}

func newFakeStore() *fakeStore { return &fakeStore{byKind: map[string][]Item{}} }

func (s *fakeStore) key(databaseID string, kind Kind) string { return databaseID + ":" + string(kind) }

func (s *fakeStore) ReplaceKind(ctx context.Context, databaseID string, kind Kind, items []Item) error {
	s.byKind[s.key(databaseID, kind)] = items
	return nil
}

func (s *fakeStore) Append(ctx context.Context, databaseID string, items []Item) error {
	for _, it := range items {
		k := s.key(databaseID, it.Kind)
		s.byKind[k] = append(s.byKind[k], it)
	}
	return nil
}

func (s *fakeStore) Search(ctx context.Context, databaseID string, vector []float32, k int) ([]Hit, error) {
	var hits []Hit
	for _, items := range s.byKind {
		for _, it := range items {
			hits = append(hits, Hit{Kind: it.Kind, Identity: it.Identity, Metadata: it.Metadata, Distance: 0.1})
		}
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *fakeStore) Count(ctx context.Context, databaseID string) (int, error) {
	n := 0
	for k, items := range s.byKind {
		if len(k) >= len(databaseID) && k[:len(databaseID)] == databaseID {
			n += len(items)
		}
	}
	return n, nil
}

func testRetrievalConfig() config.RetrievalConfig {
	return config.RetrievalConfig{ContextK: 20, SimilarityThreshold: 1.0, ColumnMatchThreshold: 0.4, TableMatchThreshold: 0.3}
}

func TestIndex_UpsertSchema_EmbedsAllUnits(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	idx := New(embedder, store, testRetrievalConfig())

	full := schema.FullSchema{
		Tables: []schema.Table{
			{Schema: "public", Name: "orders", Columns: []schema.Column{{Name: "id", DataType: "uuid"}}},
		},
		Relationships: []schema.Relationship{
			{
				From: schema.Endpoint{Schema: "public", Table: "orders", Column: "customer_id"},
				To:   schema.Endpoint{Schema: "public", Table: "customers", Column: "id"},
				Kind: schema.RelationshipForeignKey,
			},
		},
	}

	err := idx.UpsertSchema(context.Background(), "db1", full)
	require.NoError(t, err)

	assert.Len(t, store.byKind["db1:table"], 1)
	assert.Len(t, store.byKind["db1:column"], 1)
	assert.Len(t, store.byKind["db1:relationship"], 1)
	assert.Greater(t, embedder.calls, 0)
}

func TestIndex_UpsertSuccess_Appends(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	idx := New(embedder, store, testRetrievalConfig())

	err := idx.UpsertSuccess(context.Background(), "db1", "top customers", "SELECT 1", []string{"customers"})
	require.NoError(t, err)
	assert.Len(t, store.byKind["db1:query_pair"], 1)
}

func TestIndex_Search_EmbedsQueryText(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	idx := New(embedder, store, testRetrievalConfig())
	store.byKind["db1:table"] = []Item{{Kind: KindTable, Identity: "public.orders", Metadata: "m"}}

	hits, err := idx.Search(context.Background(), "db1", "how many orders", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, 1, embedder.calls)
}
