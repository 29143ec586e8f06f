// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaccardSimilarity(t *testing.T) {
	a := tokenize("en fazla satis yapan musteri")
	b := tokenize("en fazla satis yapan urun")
	score := jaccardSimilarity(a, b)
	assert.InDelta(t, 0.667, score, 0.01)
}

func TestSimilarPatterns_ThresholdAndTopK(t *testing.T) {
	patterns := []Pattern{
		{OriginalText: "en fazla satis yapan musteri kim", SQL: "SELECT 1"},
		{OriginalText: "toplam siparis sayisi nedir", SQL: "SELECT 2"},
		{OriginalText: "tamamen alakasiz bir cumle", SQL: "SELECT 3"},
	}

	matches := similarPatterns(patterns, "en fazla satis yapan musteri hangisi", 5)
	assert.Len(t, matches, 1)
	assert.Equal(t, "SELECT 1", matches[0].SQL)
}

func TestSimilarPatterns_RespectsK(t *testing.T) {
	patterns := []Pattern{
		{OriginalText: "a b c d", SQL: "1"},
		{OriginalText: "a b c e", SQL: "2"},
		{OriginalText: "a b c f", SQL: "3"},
	}
	matches := similarPatterns(patterns, "a b c", 2)
	assert.Len(t, matches, 2)
}
