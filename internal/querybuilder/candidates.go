// Copyright (c) 2026 SQLSage. All rights reserved.

package querybuilder

import (
	"sort"
	"strings"

	"github.com/sqlsage/sqlsage/internal/querymodel"
	"github.com/sqlsage/sqlsage/internal/schema"
	"github.com/sqlsage/sqlsage/internal/vectorindex"
)

// candidateSimilarityFloor is spec.md §4.9 step 4's minimum table-match
// similarity for a candidate to be considered at all.
const candidateSimilarityFloor = 0.30

// columnMatchFloor is spec.md §4.9 step 5's minimum similarity for a
// column hit to be accepted as an explicit column match.
const columnMatchFloor = 0.40

// tableCandidate is one plausible table match for a query, carrying the
// table-match score step 6's confidence formula starts from.
type tableCandidate struct {
	table schema.Table
	score float64
}

// candidateTables collects every plausible table match for a query:
// entities the understanding stage named are matched directly against
// table names (score 1.0, an exact domain match), and C5's semantic
// search contributes every table hit at or above the similarity floor.
// Results are deduplicated by table and sorted by score descending.
func candidateTables(hits []vectorindex.Hit, intent querymodel.Intent, allTables []schema.Table) []tableCandidate {
	byName := make(map[string]schema.Table, len(allTables))
	for _, t := range allTables {
		byName[strings.ToLower(t.Name)] = t
	}

	scores := make(map[string]float64)

	for _, entity := range intent.Entities {
		for name, t := range byName {
			if tableNameMatchesEntity(name, entity) && scores[t.Name] < 1.0 {
				scores[t.Name] = 1.0
			}
		}
	}

	for _, h := range hits {
		if h.Kind != vectorindex.KindTable {
			continue
		}
		similarity := 1 - h.Distance
		if similarity < candidateSimilarityFloor {
			continue
		}
		tableName := tableNameFromIdentity(h.Identity)
		t, ok := byName[strings.ToLower(tableName)]
		if !ok {
			continue
		}
		if similarity > scores[t.Name] {
			scores[t.Name] = similarity
		}
	}

	candidates := make([]tableCandidate, 0, len(scores))
	for name, score := range scores {
		candidates = append(candidates, tableCandidate{table: byName[strings.ToLower(name)], score: score})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	return candidates
}

// matchedColumns returns the columns of table whose C5 column hits clear
// columnMatchFloor, sorted by similarity descending.
func matchedColumns(hits []vectorindex.Hit, table schema.Table) []schema.Column {
	byName := make(map[string]schema.Column, len(table.Columns))
	for _, c := range table.Columns {
		byName[strings.ToLower(c.Name)] = c
	}

	type scored struct {
		column     schema.Column
		similarity float64
	}
	var matches []scored

	for _, h := range hits {
		if h.Kind != vectorindex.KindColumn {
			continue
		}
		if tableNameFromIdentity(h.Identity) != table.Name {
			continue
		}
		similarity := 1 - h.Distance
		if similarity < columnMatchFloor {
			continue
		}
		colName := columnNameFromIdentity(h.Identity)
		col, ok := byName[strings.ToLower(colName)]
		if !ok {
			continue
		}
		matches = append(matches, scored{column: col, similarity: similarity})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].similarity > matches[j].similarity })

	out := make([]schema.Column, len(matches))
	for i, m := range matches {
		out[i] = m.column
	}
	return out
}

// tableNameMatchesEntity reports whether a table name corresponds to an
// entity the understanding stage named — an exact match or a simple
// singular/plural variant.
func tableNameMatchesEntity(tableName, entity string) bool {
	entity = strings.ToLower(entity)
	tableName = strings.ToLower(tableName)
	if tableName == entity {
		return true
	}
	return strings.TrimSuffix(tableName, "s") == strings.TrimSuffix(entity, "s")
}

// tableNameFromIdentity extracts the table name from a vector-index
// identity string: "schema.table" for table items, "schema.table.column"
// for column items.
func tableNameFromIdentity(identity string) string {
	parts := strings.Split(identity, ".")
	if len(parts) >= 2 {
		return parts[1]
	}
	return identity
}

// columnNameFromIdentity extracts the trailing column name from a
// "schema.table.column" identity string.
func columnNameFromIdentity(identity string) string {
	parts := strings.Split(identity, ".")
	return parts[len(parts)-1]
}
