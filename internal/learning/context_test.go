// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatContext_IncludesMatchingPatternAndBilingualHint(t *testing.T) {
	record := &Record{
		Patterns: []Pattern{
			{OriginalText: "en fazla satis yapan musteri kim", SQL: "SELECT 1", Kind: PatternAggregation, Confidence: 0.9},
		},
		BilingualMappings: map[string]string{"customer": "müşteri"},
	}

	out := formatContext(record, "en fazla satis yapan musteri hangisi customer")
	assert.Contains(t, out, "Learned patterns")
	assert.Contains(t, out, "SELECT 1")
	assert.Contains(t, out, "customer=müşteri")
}

func TestFormatContext_EmptyWhenNothingMatches(t *testing.T) {
	record := &Record{}
	out := formatContext(record, "anything")
	assert.Empty(t, out)
}
