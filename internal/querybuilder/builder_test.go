// Copyright (c) 2026 SQLSage. All rights reserved.

package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/querymodel"
)

func interp(confidence float64, table string) querymodel.Interpretation {
	return querymodel.Interpretation{
		SQL:        "SELECT * FROM " + table,
		Confidence: confidence,
		Rationale:  querymodel.Rationale{Tables: []string{table}},
	}
}

func TestClassify_SingleConfidentResultIsOK(t *testing.T) {
	result := classify([]querymodel.Interpretation{interp(0.9, "customers")})
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "customers", result.Best.Rationale.Tables[0])
	assert.Empty(t, result.Alternatives)
}

func TestClassify_ClearGapIsOKWithAlternatives(t *testing.T) {
	result := classify([]querymodel.Interpretation{
		interp(0.9, "customers"),
		interp(0.7, "orders"),
		interp(0.2, "products"),
	})
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "customers", result.Best.Rationale.Tables[0])
	assert.Len(t, result.Alternatives, 2)
}

func TestClassify_BelowFloorIsAmbiguous(t *testing.T) {
	result := classify([]querymodel.Interpretation{
		interp(0.4, "customers"),
		interp(0.35, "orders"),
	})
	assert.Equal(t, StatusAmbiguous, result.Status)
	assert.NotEmpty(t, result.Suggestions)
}

func TestClassify_NarrowGapIsAmbiguousDespiteHighConfidence(t *testing.T) {
	result := classify([]querymodel.Interpretation{
		interp(0.8, "customers"),
		interp(0.75, "orders"),
	})
	assert.Equal(t, StatusAmbiguous, result.Status)
}

func TestClassify_AmbiguousCapsAtThreeCandidates(t *testing.T) {
	result := classify([]querymodel.Interpretation{
		interp(0.4, "a"), interp(0.39, "b"), interp(0.38, "c"), interp(0.37, "d"),
	})
	assert.Len(t, result.Candidates, 3)
}

func TestDisambiguationSuggestions_NamesEachTable(t *testing.T) {
	suggestions := disambiguationSuggestions([]querymodel.Interpretation{interp(0.4, "customers"), interp(0.3, "orders")})
	assert.Equal(t, []string{"did you mean customers?", "did you mean orders?"}, suggestions)
}
