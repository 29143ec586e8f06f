// Copyright (c) 2026 SQLSage. All rights reserved.

package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/graph"
	"github.com/sqlsage/sqlsage/internal/schema"
)

func sampleTables() []schema.Table {
	return []schema.Table{
		{Schema: "public", Name: "customers", RowEstimate: 100},
		{Schema: "public", Name: "orders", RowEstimate: 5000},
		{Schema: "public", Name: "order_items", RowEstimate: 20000},
		{Schema: "public", Name: "products", RowEstimate: 300},
		{Schema: "public", Name: "audit_log", RowEstimate: 1},
	}
}

func sampleRelationships() []schema.Relationship {
	return []schema.Relationship{
		{
			From: schema.Endpoint{Schema: "public", Table: "orders", Column: "customer_id"},
			To:   schema.Endpoint{Schema: "public", Table: "customers", Column: "id"},
			Kind: schema.RelationshipForeignKey,
		},
		{
			From: schema.Endpoint{Schema: "public", Table: "order_items", Column: "order_id"},
			To:   schema.Endpoint{Schema: "public", Table: "orders", Column: "id"},
			Kind: schema.RelationshipForeignKey,
		},
		{
			From: schema.Endpoint{Schema: "public", Table: "order_items", Column: "product_id"},
			To:   schema.Endpoint{Schema: "public", Table: "products", Column: "id"},
			Kind: schema.RelationshipForeignKey,
		},
	}
}

func TestBuild_Metrics(t *testing.T) {
	g := graph.Build(sampleTables(), sampleRelationships())
	m := g.Metrics()

	assert.Equal(t, 5, m.TableCount)
	assert.Equal(t, 3, m.EdgeCount)
	assert.Equal(t, []string{"public.audit_log"}, g.IsolatedTables())
}

func TestShortestJoinPath(t *testing.T) {
	g := graph.Build(sampleTables(), sampleRelationships())

	path := g.ShortestJoinPath("public.customers", "public.order_items", 4)
	assert.Len(t, path, 2)
	assert.Equal(t, "public.customers", path[0].From)
	assert.Equal(t, "public.order_items", path[len(path)-1].To)

	assert.Nil(t, g.ShortestJoinPath("public.customers", "public.audit_log", 4))
	assert.Nil(t, g.ShortestJoinPath("public.customers", "public.customers", 4))
}

func TestRelatedTables(t *testing.T) {
	g := graph.Build(sampleTables(), sampleRelationships())

	direct, indirect := g.RelatedTables("public.orders", 2)
	assert.ElementsMatch(t, []string{"public.customers", "public.order_items"}, direct)
	assert.ElementsMatch(t, []string{"public.products"}, indirect)
}

func TestHubTables(t *testing.T) {
	g := graph.Build(sampleTables(), sampleRelationships())

	hubs := g.HubTables(2)
	assert.Equal(t, []string{"public.order_items", "public.orders"}, hubs)
}

func TestJoinComplexity(t *testing.T) {
	g := graph.Build(sampleTables(), sampleRelationships())

	simple := g.JoinComplexity([]string{"public.customers"})
	assert.Equal(t, graph.ComplexitySimple, simple.Level)

	pair := g.JoinComplexity([]string{"public.customers", "public.orders"})
	assert.Equal(t, graph.ComplexitySimple, pair.Level)

	complex := g.JoinComplexity([]string{"public.customers", "public.order_items", "public.products"})
	assert.NotEqual(t, graph.ComplexitySimple, complex.Level)
}

func TestSuggestJoinOrder(t *testing.T) {
	g := graph.Build(sampleTables(), sampleRelationships())

	ordered := g.SuggestJoinOrder([]string{"public.customers", "public.orders", "public.order_items"})
	assert.Equal(t, "public.orders", ordered[0])
}
