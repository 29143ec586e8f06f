// Copyright (c) 2026 SQLSage. All rights reserved.

package querybuilder

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sqlsage/sqlsage/internal/graph"
	"github.com/sqlsage/sqlsage/internal/pattern"
	"github.com/sqlsage/sqlsage/internal/querymodel"
	"github.com/sqlsage/sqlsage/internal/schema"
	"github.com/sqlsage/sqlsage/internal/vectorindex"
)

// aggregateSQL maps an aggregate [querymodel.IntentKind] to its SQL function.
var aggregateSQL = map[querymodel.IntentKind]string{
	querymodel.IntentCount: "COUNT",
	querymodel.IntentSum:   "SUM",
	querymodel.IntentAvg:   "AVG",
	querymodel.IntentMax:   "MAX",
	querymodel.IntentMin:   "MIN",
}

var (
	reLimitTurkishIlk  = regexp.MustCompile(`ilk\s+(\d+)`)
	reLimitTurkishTane = regexp.MustCompile(`(\d+)\s+(?:tane|adet)`)
	reLimitEnglishTop  = regexp.MustCompile(`top\s+(\d+)`)
	reOrderingKeyword  = regexp.MustCompile(`siral|sort|order\s+by|en\s+yuksek|en\s+dusuk|highest|lowest`)
)

// deriveSignals scans the original query once for the global signals
// spec.md §4.9 step 5 needs uniformly across every candidate table:
// aggregates implied by the detected operation, an ordering keyword flag,
// and the first numeric limit match for "ilk N", "top N", "N tane"/"N adet".
func deriveSignals(intent querymodel.Intent, e pattern.Enrichments) querymodel.Intent {
	if fn, ok := aggregateSQL[intent.Operation]; ok {
		intent.Aggregates = []string{fn}
	}

	ascii := e.Normalized.ASCII
	if reOrderingKeyword.MatchString(ascii) {
		intent.Ordering = []string{"requested"}
	}

	// Normalize folds "adet" into the [COUNT] placeholder, so "N adet" is
	// only visible in the lowercased original.
	n, ok := firstLimitMatch(ascii)
	if !ok {
		n, ok = firstLimitMatch(strings.ToLower(e.Normalized.Original))
	}
	if ok {
		intent.Limit = &n
	}

	return intent
}

func firstLimitMatch(ascii string) (int, bool) {
	for _, re := range []*regexp.Regexp{reLimitTurkishIlk, reLimitEnglishTop, reLimitTurkishTane} {
		if m := re.FindStringSubmatch(ascii); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// interpret constructs one Interpretation for a single candidate table per
// spec.md §4.9 step 5: columns, joins, filters, aggregations, grouping,
// ordering, and limit, then asks C8 to draft SQL, falling back to
// deterministic composition from the Interpretation's own parts on an
// empty result.
func (b *Builder) interpret(ctx context.Context, candidate tableCandidate, intent querymodel.Intent, e pattern.Enrichments, hits []vectorindex.Hit, allTables []schema.Table, joinGraph *graph.Graph, schemaContext, adaptiveContext string) (querymodel.Interpretation, error) {
	table := candidate.table

	columns := selectedColumns(hits, table, intent)

	joinEdges, joinedTables := joinsFor(joinGraph, table, intent.Entities, allTables)

	conditions := filterConditions(table, e)

	aggregations := intent.Aggregates

	grouping := groupingColumns(columns, aggregations)

	ordering := orderingColumns(columns, intent.Ordering)

	rationale := querymodel.Rationale{
		Tables:       append([]string{table.Name}, joinedTables...),
		Columns:      columns,
		Joins:        joinEdges,
		Conditions:   conditions,
		Aggregations: aggregations,
		Grouping:     grouping,
		Ordering:     ordering,
		Limit:        intent.Limit,
	}

	sql, err := b.lm.GenerateSQL(ctx, intent, schemaContext, adaptiveContext)
	if err != nil || sql == "" {
		sql = composeSQL(table.Name, rationale)
	}
	rationale.Explanation = explain(rationale)

	confidence := scoreInterpretation(candidate.score, rationale, joinEdges)

	return querymodel.Interpretation{SQL: sql, Confidence: confidence, Rationale: rationale}, nil
}

// selectedColumns implements step 5's column rule: explicit C5 matches
// (similarity >= 0.40); else, when the intent is a numeric aggregate, the
// first numeric column; else "*".
func selectedColumns(hits []vectorindex.Hit, table schema.Table, intent querymodel.Intent) []string {
	if matches := matchedColumns(hits, table); len(matches) > 0 {
		names := make([]string, len(matches))
		for i, c := range matches {
			names[i] = c.Name
		}
		return names
	}

	if isNumericAggregate(intent.Operation) {
		if col := firstNumericColumn(table); col != "" {
			return []string{col}
		}
	}

	return []string{"*"}
}

func isNumericAggregate(op querymodel.IntentKind) bool {
	switch op {
	case querymodel.IntentSum, querymodel.IntentAvg, querymodel.IntentMax, querymodel.IntentMin:
		return true
	default:
		return false
	}
}

var numericTypes = map[string]bool{
	"integer": true, "bigint": true, "smallint": true, "numeric": true,
	"decimal": true, "real": true, "double precision": true,
}

func firstNumericColumn(table schema.Table) string {
	for _, c := range table.Columns {
		if numericTypes[strings.ToLower(c.DataType)] {
			return c.Name
		}
	}
	return ""
}

// joinsFor resolves the shortest join path from table to every other
// entity the understanding stage named, via C4. [graph.Graph] nodes are
// keyed "schema.table", so entity names are first resolved to their
// qualified table before the path search.
func joinsFor(g *graph.Graph, from schema.Table, entities []string, allTables []schema.Table) ([]string, []string) {
	byName := make(map[string]schema.Table, len(allTables))
	for _, t := range allTables {
		byName[strings.ToLower(t.Name)] = t
	}

	fromKey := from.Schema + "." + from.Name

	var edges []string
	var tables []string
	seen := map[string]bool{strings.ToLower(from.Name): true}

	for _, entity := range entities {
		if seen[strings.ToLower(entity)] {
			continue
		}
		target, ok := byName[strings.ToLower(entity)]
		if !ok {
			continue
		}
		toKey := target.Schema + "." + target.Name
		path := g.ShortestJoinPath(fromKey, toKey, 4)
		if len(path) == 0 {
			continue
		}
		for _, edge := range path {
			edges = append(edges, fmt.Sprintf("%s.%s = %s.%s", tableNameFromIdentity(edge.From), edge.FromColumn, tableNameFromIdentity(edge.To), edge.ToColumn))
		}
		seen[strings.ToLower(entity)] = true
		tables = append(tables, target.Name)
	}

	return edges, tables
}

// filterConditions renders C7's detected name/date filters as SQL predicate
// fragments against table's actual columns, per spec.md §9's requirement
// that filter predicates resolve to a real column at the Interpretation
// stage rather than a hardcoded name. A filter with no matching column in
// table is dropped rather than emitted against a column that does not
// exist.
func filterConditions(table schema.Table, e pattern.Enrichments) []string {
	var out []string
	if e.Name.Found {
		if col := identityTextColumn(table); col != "" {
			out = append(out, fmt.Sprintf("%s = '%s'", col, e.Name.Name))
		}
	}
	if e.Date.Found {
		if col := temporalColumn(table); col != "" {
			out = append(out, fmt.Sprintf("%s %s", col, e.Date.Predicate))
		}
	}
	return out
}

var textTypes = map[string]bool{
	"character varying": true, "varchar": true, "text": true, "char": true, "character": true,
}

// identityTextColumn picks the column a detected name filter should bind
// to: a text column whose name itself reads as an identity field (name,
// username, title, ...), else the first eligible text column that is
// neither a key nor an "_id" suffixed reference column.
func identityTextColumn(table schema.Table) string {
	var fallback string
	for _, c := range table.Columns {
		if !textTypes[strings.ToLower(c.DataType)] {
			continue
		}
		lower := strings.ToLower(c.Name)
		if strings.Contains(lower, "name") || strings.Contains(lower, "title") {
			return c.Name
		}
		if fallback == "" && !c.IsPrimaryKey && !c.IsForeignKey && !strings.HasSuffix(lower, "_id") {
			fallback = c.Name
		}
	}
	return fallback
}

var temporalTypes = map[string]bool{
	"date": true, "timestamp": true, "timestamp without time zone": true,
	"timestamp with time zone": true, "timestamptz": true,
}

// temporalColumn picks the column a detected date filter should bind to: a
// timestamp/date column whose name reads as a record's own timing
// (created_at, updated_at, ...), else the first such column found.
func temporalColumn(table schema.Table) string {
	var fallback string
	for _, c := range table.Columns {
		if !temporalTypes[strings.ToLower(c.DataType)] {
			continue
		}
		lower := strings.ToLower(c.Name)
		if strings.Contains(lower, "created") || strings.Contains(lower, "date") || strings.HasSuffix(lower, "_at") {
			return c.Name
		}
		if fallback == "" {
			fallback = c.Name
		}
	}
	return fallback
}

// groupingColumns implements step 5's grouping rule: every non-aggregated
// selected column, when aggregations are present.
func groupingColumns(columns, aggregations []string) []string {
	if len(aggregations) == 0 || len(columns) == 0 || columns[0] == "*" {
		return nil
	}
	return append([]string(nil), columns...)
}

// orderingColumns implements step 5's ordering rule: the first selected
// column, when an ordering keyword was present in the query.
func orderingColumns(columns []string, orderingSignal []string) []string {
	if len(orderingSignal) == 0 || len(columns) == 0 || columns[0] == "*" {
		return nil
	}
	return []string{columns[0]}
}

// composeSQL deterministically builds a SELECT statement from an
// Interpretation's own parts, per step 5's "on empty result, compose SQL
// deterministically from the Interpretation parts".
func composeSQL(table string, r querymodel.Rationale) string {
	selectList := selectClause(r.Columns, r.Aggregations)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", selectList, table)
	for i := 1; i < len(r.Tables); i++ {
		if i-1 < len(r.Joins) {
			fmt.Fprintf(&b, " JOIN %s ON %s", r.Tables[i], r.Joins[i-1])
		}
	}
	if len(r.Conditions) > 0 {
		fmt.Fprintf(&b, " WHERE %s", strings.Join(r.Conditions, " AND "))
	}
	if len(r.Grouping) > 0 {
		fmt.Fprintf(&b, " GROUP BY %s", strings.Join(r.Grouping, ", "))
	}
	if len(r.Ordering) > 0 {
		fmt.Fprintf(&b, " ORDER BY %s", strings.Join(r.Ordering, ", "))
	}
	if r.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *r.Limit)
	}
	return b.String()
}

func selectClause(columns, aggregations []string) string {
	if len(aggregations) == 1 && len(columns) == 1 {
		return fmt.Sprintf("%s(%s)", aggregations[0], columns[0])
	}
	return strings.Join(columns, ", ")
}

func explain(r querymodel.Rationale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "matched table %s", r.Tables[0])
	if len(r.Joins) > 0 {
		fmt.Fprintf(&b, " joined via %d hop(s)", len(r.Joins))
	}
	if len(r.Conditions) > 0 {
		b.WriteString(" with explicit filters")
	}
	if len(r.Aggregations) > 0 {
		fmt.Fprintf(&b, " aggregated with %s", strings.Join(r.Aggregations, ", "))
	}
	return b.String()
}
