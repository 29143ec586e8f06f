// Copyright (c) 2026 SQLSage. All rights reserved.

package querybuilder

import "github.com/sqlsage/sqlsage/internal/querymodel"

const (
	wildcardColumnPenalty = 0.9
	perJoinPenalty        = 0.95
	explicitFilterBoost   = 1.05
	aggregationBoost      = 1.05
)

// scoreInterpretation implements spec.md §4.9 step 6's confidence formula:
// start from the table-match score, apply a penalty for a wildcard column
// list, a compounding penalty per join hop, and boosts for explicit filter
// conditions and aggregations, clamped to [0, 1].
func scoreInterpretation(tableScore float64, r querymodel.Rationale, joinEdges []string) float64 {
	confidence := tableScore

	if len(r.Columns) == 1 && r.Columns[0] == "*" {
		confidence *= wildcardColumnPenalty
	}

	for range joinEdges {
		confidence *= perJoinPenalty
	}

	if len(r.Conditions) > 0 {
		confidence *= explicitFilterBoost
	}

	if len(r.Aggregations) > 0 {
		confidence *= aggregationBoost
	}

	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	return confidence
}
