// Copyright (c) 2026 SQLSage. All rights reserved.

package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/querymodel"
)

func TestScoreInterpretation_WildcardColumnsApplyPenalty(t *testing.T) {
	score := scoreInterpretation(1.0, querymodel.Rationale{Columns: []string{"*"}}, nil)
	assert.InDelta(t, 0.9, score, 1e-9)
}

func TestScoreInterpretation_JoinsCompoundPenalty(t *testing.T) {
	score := scoreInterpretation(1.0, querymodel.Rationale{Columns: []string{"total"}}, []string{"a", "b"})
	assert.InDelta(t, 0.95*0.95, score, 1e-9)
}

func TestScoreInterpretation_ExplicitFiltersAndAggregationsBoost(t *testing.T) {
	r := querymodel.Rationale{Columns: []string{"total"}, Conditions: []string{"x = 1"}, Aggregations: []string{"SUM"}}
	score := scoreInterpretation(0.5, r, nil)
	assert.InDelta(t, 0.5*1.05*1.05, score, 1e-9)
}

func TestScoreInterpretation_ClampsToOne(t *testing.T) {
	r := querymodel.Rationale{Columns: []string{"total"}, Conditions: []string{"x = 1"}, Aggregations: []string{"SUM"}}
	score := scoreInterpretation(1.0, r, nil)
	assert.Equal(t, 1.0, score)
}

func TestScoreInterpretation_ClampsToZero(t *testing.T) {
	score := scoreInterpretation(0, querymodel.Rationale{Columns: []string{"*"}}, nil)
	assert.Equal(t, 0.0, score)
}
