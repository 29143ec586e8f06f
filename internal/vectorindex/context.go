// Copyright (c) 2026 SQLSage. All rights reserved.

package vectorindex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqlsage/sqlsage/internal/graph"
	"github.com/sqlsage/sqlsage/internal/schema"
)

// FormatContext implements the C5 retrieval policy's assembly step: it keeps
// hits under threshold, groups them by kind, expands table hits with their
// immediate (depth-1) graph neighbours, and renders tables, relationships,
// and join hints into one compact block. If nothing survives the threshold
// it falls back to the top common tables by importance.
func FormatContext(hits []Hit, threshold float64, g *graph.Graph, allTables []schema.Table) string {
	kept := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if h.Distance < threshold {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		return fallbackContext(allTables, 10)
	}

	byKey := make(map[string]schema.Table, len(allTables))
	for _, t := range allTables {
		byKey[tableKey(t.Schema, t.Name)] = t
	}

	tableSet := map[string]bool{}
	var relLines, queryLines []string
	for _, h := range kept {
		switch h.Kind {
		case KindTable:
			tableSet[h.Identity] = true
		case KindColumn:
			tableSet[parentTableKey(h.Identity)] = true
		case KindRelationship:
			relLines = append(relLines, h.Metadata)
		case KindQueryPair:
			queryLines = append(queryLines, h.Metadata)
		}
	}

	if g != nil {
		for key := range copySet(tableSet) {
			direct, _ := g.RelatedTables(key, 1)
			for _, n := range direct {
				tableSet[n] = true
			}
		}
	}

	var b strings.Builder
	b.WriteString("## Tables\n")
	for _, key := range sortedKeys(tableSet) {
		if t, ok := byKey[key]; ok {
			b.WriteString(formatTableBlock(t, 15))
		}
	}

	if len(relLines) > 0 {
		b.WriteString("## Relationships\n")
		for _, l := range relLines {
			b.WriteString(l + "\n")
		}
	}

	if g != nil && len(tableSet) > 1 {
		order := g.SuggestJoinOrder(sortedKeys(tableSet))
		if len(order) > 1 {
			b.WriteString("## Join hints\n")
			b.WriteString(strings.Join(order, " -> ") + "\n")
		}
	}

	if len(queryLines) > 0 {
		b.WriteString("## Similar past queries\n")
		for _, l := range queryLines {
			b.WriteString(l + "\n")
		}
	}

	return b.String()
}

// fallbackContext lists the k most important tables, used when a user query
// does not surface any hit under the similarity threshold.
func fallbackContext(allTables []schema.Table, k int) string {
	ranked := append([]schema.Table(nil), allTables...)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ImportanceScore > ranked[j].ImportanceScore })
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	var b strings.Builder
	b.WriteString("## Common tables (fallback)\n")
	for _, t := range ranked {
		b.WriteString(formatTableBlock(t, 15))
	}
	return b.String()
}

// formatTableBlock renders one table with up to maxCols columns.
func formatTableBlock(t schema.Table, maxCols int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s.%s (~%d rows)\n", t.Schema, t.Name, t.RowEstimate)
	cols := t.Columns
	truncated := false
	if len(cols) > maxCols {
		cols = cols[:maxCols]
		truncated = true
	}
	for _, c := range cols {
		fmt.Fprintf(&b, "- %s %s%s\n", c.Name, c.DataType, columnFlags(c))
	}
	if truncated {
		fmt.Fprintf(&b, "- ... %d more columns\n", len(t.Columns)-maxCols)
	}
	return b.String()
}

func formatColumnLine(t schema.Table, c schema.Column) string {
	return fmt.Sprintf("%s.%s.%s %s%s", t.Schema, t.Name, c.Name, c.DataType, columnFlags(c))
}

func formatRelationshipLine(r schema.Relationship) string {
	return fmt.Sprintf("%s.%s.%s -> %s.%s.%s (%s)",
		r.From.Schema, r.From.Table, r.From.Column,
		r.To.Schema, r.To.Table, r.To.Column, r.Kind)
}

func formatQueryPair(query, sql string, tables []string) string {
	return fmt.Sprintf("Q: %s\nSQL: %s\nTables: %s", query, sql, strings.Join(tables, ", "))
}

func columnFlags(c schema.Column) string {
	var flags []string
	if c.IsPrimaryKey {
		flags = append(flags, "PK")
	}
	if c.IsForeignKey {
		flags = append(flags, "FK")
	}
	if c.IsUnique {
		flags = append(flags, "UNIQUE")
	}
	if !c.Nullable {
		flags = append(flags, "NOT NULL")
	}
	if len(flags) == 0 {
		return ""
	}
	return " " + strings.Join(flags, " ")
}

func tableEmbedText(t schema.Table) string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return fmt.Sprintf("table %s.%s columns: %s", t.Schema, t.Name, strings.Join(names, ", "))
}

func columnEmbedText(t schema.Table, c schema.Column) string {
	return fmt.Sprintf("%s.%s column %s type %s%s", t.Schema, t.Name, c.Name, c.DataType, columnFlags(c))
}

func relationshipEmbedText(r schema.Relationship) string {
	return fmt.Sprintf("%s.%s.%s references %s.%s.%s",
		r.From.Schema, r.From.Table, r.From.Column, r.To.Schema, r.To.Table, r.To.Column)
}

// parentTableKey strips a column identity ("schema.table.column") down to
// its owning table's key ("schema.table").
func parentTableKey(columnIdentity string) string {
	idx := strings.LastIndex(columnIdentity, ".")
	if idx < 0 {
		return columnIdentity
	}
	return columnIdentity[:idx]
}

func copySet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
