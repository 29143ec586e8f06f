// Copyright (c) 2026 SQLSage. All rights reserved.

package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/graph"
	"github.com/sqlsage/sqlsage/internal/schema"
)

func sampleTables() []schema.Table {
	return []schema.Table{
		{
			Schema: "public", Name: "customers", RowEstimate: 500, ImportanceScore: 0.9,
			Columns: []schema.Column{{Name: "id", DataType: "uuid", IsPrimaryKey: true}},
		},
		{
			Schema: "public", Name: "orders", RowEstimate: 5000, ImportanceScore: 0.8,
			Columns: []schema.Column{
				{Name: "id", DataType: "uuid", IsPrimaryKey: true},
				{Name: "customer_id", DataType: "uuid", IsForeignKey: true},
			},
		},
		{
			Schema: "public", Name: "audit_log", RowEstimate: 100, ImportanceScore: 0.1,
			Columns: []schema.Column{{Name: "id", DataType: "uuid", IsPrimaryKey: true}},
		},
	}
}

func sampleRelationships() []schema.Relationship {
	return []schema.Relationship{
		{
			From: schema.Endpoint{Schema: "public", Table: "orders", Column: "customer_id"},
			To:   schema.Endpoint{Schema: "public", Table: "customers", Column: "id"},
			Kind: schema.RelationshipForeignKey,
		},
	}
}

func TestFormatContext_ExpandsNeighbourTable(t *testing.T) {
	tables := sampleTables()
	g := graph.Build(tables, sampleRelationships())

	hits := []Hit{
		{Kind: KindTable, Identity: "public.orders", Metadata: "### public.orders\n", Distance: 0.2},
	}

	out := FormatContext(hits, 1.0, g, tables)
	assert.Contains(t, out, "public.orders")
	assert.Contains(t, out, "public.customers", "depth-1 neighbour of a matched table must be pulled in")
	assert.NotContains(t, out, "audit_log", "an unrelated table must not be pulled in")
}

func TestFormatContext_DropsHitsAboveThreshold(t *testing.T) {
	tables := sampleTables()
	g := graph.Build(tables, sampleRelationships())

	hits := []Hit{
		{Kind: KindTable, Identity: "public.orders", Metadata: "### public.orders\n", Distance: 1.5},
	}

	out := FormatContext(hits, 1.0, g, tables)
	assert.Contains(t, out, "Common tables (fallback)", "no hit survives the threshold, so the fallback path runs")
}

func TestFormatContext_GroupsRelationshipsAndQueryPairs(t *testing.T) {
	tables := sampleTables()
	g := graph.Build(tables, sampleRelationships())

	hits := []Hit{
		{Kind: KindTable, Identity: "public.orders", Metadata: "### public.orders\n", Distance: 0.1},
		{Kind: KindRelationship, Identity: "public.orders.customer_id->public.customers.id", Metadata: "orders -> customers", Distance: 0.3},
		{Kind: KindQueryPair, Identity: "q1", Metadata: "Q: top customers\nSQL: SELECT 1", Distance: 0.4},
	}

	out := FormatContext(hits, 1.0, g, tables)
	assert.Contains(t, out, "## Relationships")
	assert.Contains(t, out, "orders -> customers")
	assert.Contains(t, out, "## Similar past queries")
	assert.Contains(t, out, "top customers")
}

func TestFallbackContext_RanksByImportance(t *testing.T) {
	out := fallbackContext(sampleTables(), 2)
	customersIdx := indexOf(out, "customers")
	auditIdx := indexOf(out, "audit_log")
	assert.NotEqual(t, -1, customersIdx)
	assert.Equal(t, -1, auditIdx, "only the top-2 most important tables should appear")
}

func TestFormatTableBlock_TruncatesColumns(t *testing.T) {
	cols := make([]schema.Column, 20)
	for i := range cols {
		cols[i] = schema.Column{Name: "c", DataType: "text"}
	}
	block := formatTableBlock(schema.Table{Schema: "public", Name: "wide", Columns: cols}, 15)
	assert.Contains(t, block, "5 more columns")
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
