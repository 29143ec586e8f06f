// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPattern(t *testing.T) {
	assert.Equal(t, PatternCount, classifyPattern("SELECT COUNT(*) FROM orders"))
	assert.Equal(t, PatternSelectAll, classifyPattern("SELECT * FROM orders"))
	assert.Equal(t, PatternAggregation, classifyPattern("SELECT customer_id, SUM(total) FROM orders GROUP BY customer_id"))
	assert.Equal(t, PatternLearned, classifyPattern("SELECT id, name FROM customers WHERE id = 1"))
}

func TestTurkishKeywords(t *testing.T) {
	keywords := turkishKeywords("müşteri adı ile sipariş ara")
	assert.Contains(t, keywords, "müşteri")
	assert.NotContains(t, keywords, "ile", "ascii-only tokens are not Turkish-flagged")
}
