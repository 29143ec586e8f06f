// Copyright (c) 2026 SQLSage. All rights reserved.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/querymodel"
)

func TestFallbackUnderstand_DetectsCountIntentAndEntity(t *testing.T) {
	intent := fallbackUnderstand("kac musteri var")
	assert.Equal(t, querymodel.IntentCount, intent.Operation)
	assert.Contains(t, intent.Entities, "customers")
}

func TestFallbackUnderstand_DetectsMaxIntent(t *testing.T) {
	intent := fallbackUnderstand("en fazla siparis veren musteri")
	assert.Equal(t, querymodel.IntentMax, intent.Operation)
	assert.Contains(t, intent.Entities, "orders")
	assert.Contains(t, intent.Entities, "customers")
}

func TestFallbackUnderstand_DefaultsToSelect(t *testing.T) {
	intent := fallbackUnderstand("bir sey bulamadim")
	assert.Equal(t, querymodel.IntentSelect, intent.Operation)
	assert.Empty(t, intent.Entities)
}

func TestGenerateTemplateSQL_Count(t *testing.T) {
	sql := GenerateTemplateSQL(querymodel.Intent{Operation: querymodel.IntentCount}, "customers", "", false)
	assert.Equal(t, "SELECT COUNT(*) FROM customers", sql)
}

func TestGenerateTemplateSQL_WithJoinSkeleton(t *testing.T) {
	sql := GenerateTemplateSQL(querymodel.Intent{Operation: querymodel.IntentMax}, "customers", "orders", true)
	assert.Contains(t, sql, "JOIN orders")
	assert.Contains(t, sql, "GROUP BY customers.id")
}

func TestGenerateTemplateSQL_DefaultFallsBackToSelectWithLimit(t *testing.T) {
	sql := GenerateTemplateSQL(querymodel.Intent{Operation: querymodel.IntentSelect}, "products", "", false)
	assert.Equal(t, "SELECT * FROM products LIMIT 100", sql)
}
