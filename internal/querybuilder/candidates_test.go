// Copyright (c) 2026 SQLSage. All rights reserved.

package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/querymodel"
	"github.com/sqlsage/sqlsage/internal/schema"
	"github.com/sqlsage/sqlsage/internal/vectorindex"
)

func tables() []schema.Table {
	return []schema.Table{
		{Schema: "public", Name: "customers", Columns: []schema.Column{
			{Name: "id", DataType: "integer"},
			{Name: "full_name", DataType: "text"},
		}},
		{Schema: "public", Name: "orders", Columns: []schema.Column{
			{Name: "id", DataType: "integer"},
			{Name: "total", DataType: "numeric"},
		}},
	}
}

func TestCandidateTables_EntityMatchScoresExact(t *testing.T) {
	intent := querymodel.Intent{Entities: []string{"customers"}}
	candidates := candidateTables(nil, intent, tables())
	assert.Len(t, candidates, 1)
	assert.Equal(t, "customers", candidates[0].table.Name)
	assert.Equal(t, 1.0, candidates[0].score)
}

func TestCandidateTables_SingularPluralVariantMatches(t *testing.T) {
	intent := querymodel.Intent{Entities: []string{"order"}}
	candidates := candidateTables(nil, intent, tables())
	assert.Len(t, candidates, 1)
	assert.Equal(t, "orders", candidates[0].table.Name)
}

func TestCandidateTables_VectorHitBelowFloorIsExcluded(t *testing.T) {
	hits := []vectorindex.Hit{{Kind: vectorindex.KindTable, Identity: "public.orders", Distance: 0.9}}
	candidates := candidateTables(hits, querymodel.Intent{}, tables())
	assert.Empty(t, candidates)
}

func TestCandidateTables_VectorHitAtOrAboveFloorIsIncludedAndSorted(t *testing.T) {
	hits := []vectorindex.Hit{
		{Kind: vectorindex.KindTable, Identity: "public.orders", Distance: 0.5},
		{Kind: vectorindex.KindTable, Identity: "public.customers", Distance: 0.1},
	}
	candidates := candidateTables(hits, querymodel.Intent{}, tables())
	assert.Len(t, candidates, 2)
	assert.Equal(t, "customers", candidates[0].table.Name)
	assert.Equal(t, "orders", candidates[1].table.Name)
}

func TestCandidateTables_ColumnHitsAreIgnored(t *testing.T) {
	hits := []vectorindex.Hit{{Kind: vectorindex.KindColumn, Identity: "public.orders.total", Distance: 0.1}}
	candidates := candidateTables(hits, querymodel.Intent{}, tables())
	assert.Empty(t, candidates)
}

func TestMatchedColumns_FiltersByTableAndFloor(t *testing.T) {
	hits := []vectorindex.Hit{
		{Kind: vectorindex.KindColumn, Identity: "public.orders.total", Distance: 0.2},
		{Kind: vectorindex.KindColumn, Identity: "public.orders.id", Distance: 0.8},
		{Kind: vectorindex.KindColumn, Identity: "public.customers.full_name", Distance: 0.1},
	}
	cols := matchedColumns(hits, tables()[1])
	assert.Len(t, cols, 1)
	assert.Equal(t, "total", cols[0].Name)
}

func TestMatchedColumns_SortedBySimilarityDescending(t *testing.T) {
	hits := []vectorindex.Hit{
		{Kind: vectorindex.KindColumn, Identity: "public.orders.id", Distance: 0.5},
		{Kind: vectorindex.KindColumn, Identity: "public.orders.total", Distance: 0.1},
	}
	cols := matchedColumns(hits, tables()[1])
	assert.Len(t, cols, 2)
	assert.Equal(t, "total", cols[0].Name)
	assert.Equal(t, "id", cols[1].Name)
}

func TestTableNameFromIdentity(t *testing.T) {
	assert.Equal(t, "orders", tableNameFromIdentity("public.orders"))
	assert.Equal(t, "orders", tableNameFromIdentity("public.orders.total"))
}

func TestColumnNameFromIdentity(t *testing.T) {
	assert.Equal(t, "total", columnNameFromIdentity("public.orders.total"))
}
