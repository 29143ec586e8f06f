// Copyright (c) 2026 SQLSage. All rights reserved.

package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/graph"
	"github.com/sqlsage/sqlsage/internal/pattern"
	"github.com/sqlsage/sqlsage/internal/querymodel"
	"github.com/sqlsage/sqlsage/internal/schema"
)

func TestDeriveSignals_SetsAggregateFromOperation(t *testing.T) {
	intent := deriveSignals(querymodel.Intent{Operation: querymodel.IntentSum}, pattern.Detect("toplam tutar nedir"))
	assert.Equal(t, []string{"SUM"}, intent.Aggregates)
}

func TestDeriveSignals_DetectsOrderingKeyword(t *testing.T) {
	intent := deriveSignals(querymodel.Intent{}, pattern.Detect("musterileri siralar misin"))
	assert.NotEmpty(t, intent.Ordering)
}

func TestDeriveSignals_NoOrderingKeywordLeavesOrderingEmpty(t *testing.T) {
	intent := deriveSignals(querymodel.Intent{}, pattern.Detect("musterileri listele"))
	assert.Empty(t, intent.Ordering)
}

func TestDeriveSignals_ParsesTurkishIlkLimit(t *testing.T) {
	intent := deriveSignals(querymodel.Intent{}, pattern.Detect("ilk 10 siparisi goster"))
	if assert.NotNil(t, intent.Limit) {
		assert.Equal(t, 10, *intent.Limit)
	}
}

func TestDeriveSignals_ParsesEnglishTopLimit(t *testing.T) {
	intent := deriveSignals(querymodel.Intent{}, pattern.Detect("show me the top 5 customers"))
	if assert.NotNil(t, intent.Limit) {
		assert.Equal(t, 5, *intent.Limit)
	}
}

func TestDeriveSignals_ParsesTaneLimit(t *testing.T) {
	intent := deriveSignals(querymodel.Intent{}, pattern.Detect("3 tane siparis goster"))
	if assert.NotNil(t, intent.Limit) {
		assert.Equal(t, 3, *intent.Limit)
	}
}

func TestSelectedColumns_FallsBackToWildcardWithoutMatches(t *testing.T) {
	cols := selectedColumns(nil, tables()[0], querymodel.Intent{Operation: querymodel.IntentSelect})
	assert.Equal(t, []string{"*"}, cols)
}

func TestSelectedColumns_FallsBackToFirstNumericColumnForAggregate(t *testing.T) {
	cols := selectedColumns(nil, tables()[1], querymodel.Intent{Operation: querymodel.IntentSum})
	assert.Equal(t, []string{"id"}, cols)
}

func TestGroupingColumns_EmptyWithoutAggregations(t *testing.T) {
	assert.Empty(t, groupingColumns([]string{"full_name"}, nil))
}

func TestGroupingColumns_EmptyForWildcardColumns(t *testing.T) {
	assert.Empty(t, groupingColumns([]string{"*"}, []string{"COUNT"}))
}

func TestGroupingColumns_ReturnsColumnsWhenAggregating(t *testing.T) {
	assert.Equal(t, []string{"full_name"}, groupingColumns([]string{"full_name"}, []string{"COUNT"}))
}

func TestOrderingColumns_EmptyWithoutSignal(t *testing.T) {
	assert.Empty(t, orderingColumns([]string{"total"}, nil))
}

func TestOrderingColumns_ReturnsFirstSelectedColumn(t *testing.T) {
	assert.Equal(t, []string{"total"}, orderingColumns([]string{"total", "id"}, []string{"requested"}))
}

func TestFilterConditions_ResolvesNameFilterToIdentityColumn(t *testing.T) {
	table := schema.Table{Schema: "public", Name: "users", Columns: []schema.Column{
		{Name: "id", DataType: "integer", IsPrimaryKey: true},
		{Name: "username", DataType: "character varying"},
	}}
	conditions := filterConditions(table, pattern.Enrichments{Name: pattern.NameFilter{Name: "ahmet", Found: true}})
	assert.Equal(t, []string{"username = 'ahmet'"}, conditions)
}

func TestFilterConditions_ResolvesDateFilterToTemporalColumn(t *testing.T) {
	table := schema.Table{Schema: "public", Name: "orders", Columns: []schema.Column{
		{Name: "id", DataType: "integer", IsPrimaryKey: true},
		{Name: "created_at", DataType: "timestamp with time zone"},
	}}
	conditions := filterConditions(table, pattern.Enrichments{
		Date: pattern.DateFilter{Predicate: ">= CURRENT_DATE - INTERVAL '30 days'", Found: true},
	})
	assert.Equal(t, []string{"created_at >= CURRENT_DATE - INTERVAL '30 days'"}, conditions)
}

func TestFilterConditions_DropsFilterWithNoMatchingColumn(t *testing.T) {
	table := schema.Table{Schema: "public", Name: "audit_log", Columns: []schema.Column{
		{Name: "id", DataType: "integer", IsPrimaryKey: true},
	}}
	conditions := filterConditions(table, pattern.Enrichments{
		Name: pattern.NameFilter{Name: "ahmet", Found: true},
		Date: pattern.DateFilter{Predicate: ">= CURRENT_DATE", Found: true},
	})
	assert.Empty(t, conditions)
}

func TestJoinsFor_ResolvesShortestPathBetweenEntities(t *testing.T) {
	all := []schema.Table{
		{Schema: "public", Name: "customers"},
		{Schema: "public", Name: "orders"},
	}
	g := graph.Build(all, []schema.Relationship{
		{
			From: schema.Endpoint{Schema: "public", Table: "orders", Column: "customer_id"},
			To:   schema.Endpoint{Schema: "public", Table: "customers", Column: "id"},
			Kind: schema.RelationshipForeignKey,
		},
	})
	edges, joined := joinsFor(g, all[1], []string{"customers"}, all)
	assert.Len(t, edges, 1)
	assert.Equal(t, []string{"customers"}, joined)
}

func TestJoinsFor_UnknownEntityIsSkipped(t *testing.T) {
	all := tables()
	g := graph.Build(all, nil)
	edges, joined := joinsFor(g, all[0], []string{"does_not_exist"}, all)
	assert.Empty(t, edges)
	assert.Empty(t, joined)
}

func TestComposeSQL_PlainSelect(t *testing.T) {
	sql := composeSQL("customers", querymodel.Rationale{Tables: []string{"customers"}, Columns: []string{"*"}})
	assert.Equal(t, "SELECT * FROM customers", sql)
}

func TestComposeSQL_AggregateWithGroupingAndLimit(t *testing.T) {
	limit := 10
	r := querymodel.Rationale{
		Tables:       []string{"orders"},
		Columns:      []string{"total"},
		Aggregations: []string{"SUM"},
		Grouping:     []string{"total"},
		Limit:        &limit,
	}
	sql := composeSQL("orders", r)
	assert.Contains(t, sql, "SELECT SUM(total) FROM orders")
	assert.Contains(t, sql, "GROUP BY total")
	assert.Contains(t, sql, "LIMIT 10")
}

func TestComposeSQL_WithConditionsAndJoin(t *testing.T) {
	r := querymodel.Rationale{
		Tables:     []string{"orders", "customers"},
		Columns:    []string{"*"},
		Joins:      []string{"orders.customer_id = customers.id"},
		Conditions: []string{"name = 'ahmet'"},
	}
	sql := composeSQL("orders", r)
	assert.Contains(t, sql, "JOIN customers ON orders.customer_id = customers.id")
	assert.Contains(t, sql, "WHERE name = 'ahmet'")
}
