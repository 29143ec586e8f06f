// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/schema"
)

func TestSplitIdentifier(t *testing.T) {
	assert.ElementsMatch(t, []string{"customer"}, splitIdentifier("customer_id"), "two-character pieces like \"id\" are dropped")
	assert.ElementsMatch(t, []string{"order", "total"}, splitIdentifier("orderTotal"))
	assert.Empty(t, splitIdentifier("id"), "two-character words are dropped")
}

func TestExtractVocabulary_DedupesAndSorts(t *testing.T) {
	tables := []schema.Table{
		{
			Name: "orders",
			Columns: []schema.Column{
				{Name: "customer_id"},
				{Name: "order_total"},
			},
		},
		{
			Name: "customers",
			Columns: []schema.Column{{Name: "customer_id"}},
		},
	}

	vocab := extractVocabulary(tables)
	assert.Contains(t, vocab, "customer")
	assert.Contains(t, vocab, "order")
	assert.Contains(t, vocab, "total")

	count := 0
	for _, w := range vocab {
		if w == "customer" {
			count++
		}
	}
	assert.Equal(t, 1, count, "repeated word across tables must appear once")
}

func TestMergeVocabulary_IsAdditive(t *testing.T) {
	merged := mergeVocabulary([]string{"orders"}, []string{"customers", "orders"})
	assert.ElementsMatch(t, []string{"orders", "customers"}, merged)
}
