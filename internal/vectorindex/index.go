// Copyright (c) 2026 SQLSage. All rights reserved.

package vectorindex

import (
	"context"
	"fmt"

	"github.com/sqlsage/sqlsage/internal/graph"
	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/schema"
)

// Index is the Vector Context Index (C5): it keeps one database's tables,
// columns, relationships, and accepted query pairs embedded and searchable,
// and assembles search hits into a compact schema context block.
type Index struct {
	embedder Embedder
	store    Store
	cfg      config.RetrievalConfig
}

// New builds an Index. embedder should already be wrapped with
// [NewCachingEmbedder] by the caller.
func New(embedder Embedder, store Store, cfg config.RetrievalConfig) *Index {
	return &Index{embedder: embedder, store: store, cfg: cfg}
}

// UpsertSchema re-embeds and replaces every table/column/relationship unit
// for databaseID. Callers must only invoke this when the catalog's schema
// hash changed (C2's ReplaceSchema changed=true) — it is not idempotent
// against unnecessary calls the way the underlying schema hash check is.
func (idx *Index) UpsertSchema(ctx context.Context, databaseID string, full schema.FullSchema) error {
	tableItems := make([]Item, 0, len(full.Tables))
	columnItems := make([]Item, 0)
	for _, t := range full.Tables {
		tableItems = append(tableItems, Item{
			Kind:     KindTable,
			Identity: tableKey(t.Schema, t.Name),
			Metadata: formatTableBlock(t, 15),
			Text:     tableEmbedText(t),
		})
		for _, c := range t.Columns {
			columnItems = append(columnItems, Item{
				Kind:     KindColumn,
				Identity: tableKey(t.Schema, t.Name) + "." + c.Name,
				Metadata: formatColumnLine(t, c),
				Text:     columnEmbedText(t, c),
			})
		}
	}

	relItems := make([]Item, 0, len(full.Relationships))
	for _, r := range full.Relationships {
		relItems = append(relItems, Item{
			Kind:     KindRelationship,
			Identity: relationshipKey(r),
			Metadata: formatRelationshipLine(r),
			Text:     relationshipEmbedText(r),
		})
	}

	if err := idx.embedAll(ctx, tableItems); err != nil {
		return err
	}
	if err := idx.embedAll(ctx, columnItems); err != nil {
		return err
	}
	if err := idx.embedAll(ctx, relItems); err != nil {
		return err
	}

	if err := idx.store.ReplaceKind(ctx, databaseID, KindTable, tableItems); err != nil {
		return err
	}
	if err := idx.store.ReplaceKind(ctx, databaseID, KindColumn, columnItems); err != nil {
		return err
	}
	if err := idx.store.ReplaceKind(ctx, databaseID, KindRelationship, relItems); err != nil {
		return err
	}
	return nil
}

// UpsertSuccess records an accepted (query, sql) pair so future similar
// queries retrieve it as extra context.
func (idx *Index) UpsertSuccess(ctx context.Context, databaseID, query, sql string, tables []string) error {
	item := Item{
		Kind:     KindQueryPair,
		Identity: queryPairKey(databaseID, query),
		Metadata: formatQueryPair(query, sql, tables),
		Text:     query,
	}
	if err := idx.embedAll(ctx, []Item{item}); err != nil {
		return err
	}
	return idx.store.Append(ctx, databaseID, []Item{item})
}

// Search embeds text and returns its k nearest indexed units for databaseID.
func (idx *Index) Search(ctx context.Context, databaseID, text string, k int) ([]Hit, error) {
	vec, err := idx.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: embed query: %w", err)
	}
	return idx.store.Search(ctx, databaseID, vec, k)
}

// RetrieveContext runs the full retrieval policy for a user query: searches
// with k = min(contextK, index size), keeps hits under the similarity
// threshold, expands table hits with their immediate (depth-1) graph
// neighbours, and formats the result into a compact schema context block.
// allTables supplies full table metadata for neighbour expansion and the
// no-hit fallback; g is the join graph built over the same database.
func (idx *Index) RetrieveContext(ctx context.Context, databaseID, text string, g *graph.Graph, allTables []schema.Table) (string, error) {
	size, err := idx.store.Count(ctx, databaseID)
	if err != nil {
		return "", err
	}
	if size == 0 {
		return fallbackContext(allTables, idx.cfg.ContextK), nil
	}

	k := idx.cfg.ContextK
	if size < k {
		k = size
	}

	hits, err := idx.Search(ctx, databaseID, text, k)
	if err != nil {
		return "", err
	}

	return FormatContext(hits, idx.cfg.SimilarityThreshold, g, allTables), nil
}

func (idx *Index) embedAll(ctx context.Context, items []Item) error {
	for i := range items {
		vec, err := idx.embedder.Embed(ctx, items[i].Text)
		if err != nil {
			return fmt.Errorf("vectorindex: embed %s %q: %w", items[i].Kind, items[i].Identity, err)
		}
		items[i].Embedding = vec
	}
	return nil
}

func tableKey(schemaName, tableName string) string {
	return schemaName + "." + tableName
}

func relationshipKey(r schema.Relationship) string {
	return fmt.Sprintf("%s.%s.%s->%s.%s.%s", r.From.Schema, r.From.Table, r.From.Column, r.To.Schema, r.To.Table, r.To.Column)
}

func queryPairKey(databaseID, query string) string {
	return databaseID + ":" + query
}
