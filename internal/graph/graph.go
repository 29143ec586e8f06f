// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package graph implements the Relationship Graph (C4): a directed join graph
over a database's tables, built from [schema.Relationship] edges, supporting
shortest join-path synthesis, neighbour/hub/isolated analysis, and join
complexity scoring.

Concurrency: a [Graph] is immutable once built, so concurrent readers are
safe. The query builder builds a fresh Graph from the stored schema on every
call; no Graph is cached or shared between calls.
*/
package graph

import (
	"container/heap"
	"sort"

	"github.com/sqlsage/sqlsage/internal/schema"
)

// weight maps a relationship kind to its join-graph edge weight. Explicit
// foreign keys are always cheaper than inferred joins.
func weight(kind schema.RelationshipKind) float64 {
	if kind == schema.RelationshipForeignKey {
		return 1.0
	}
	return 2.0
}

// Edge is one directed join-graph edge between two tables.
type Edge struct {
	From       string
	To         string
	FromColumn string
	ToColumn   string
	Kind       schema.RelationshipKind
	Weight     float64
}

// tableKey identifies a table node as "schema.table".
func tableKey(s, t string) string { return s + "." + t }

// Graph is an immutable directed join graph over a database's tables.
type Graph struct {
	nodes    map[string]bool
	adjacent map[string][]Edge
	rowCount map[string]int64
}

// Build constructs a Graph from the full table and relationship set of one
// database snapshot.
func Build(tables []schema.Table, relationships []schema.Relationship) *Graph {
	g := &Graph{
		nodes:    make(map[string]bool),
		adjacent: make(map[string][]Edge),
		rowCount: make(map[string]int64),
	}

	for _, t := range tables {
		key := tableKey(t.Schema, t.Name)
		g.nodes[key] = true
		g.rowCount[key] = t.RowEstimate
	}

	for _, r := range relationships {
		from := tableKey(r.From.Schema, r.From.Table)
		to := tableKey(r.To.Schema, r.To.Table)
		g.nodes[from] = true
		g.nodes[to] = true
		edge := Edge{
			From:       from,
			To:         to,
			FromColumn: r.From.Column,
			ToColumn:   r.To.Column,
			Kind:       r.Kind,
			Weight:     weight(r.Kind),
		}
		g.adjacent[from] = append(g.adjacent[from], edge)
		// Join graphs are navigated in both directions: an FK from orders to
		// customers still lets us join customers -> orders.
		g.adjacent[to] = append(g.adjacent[to], Edge{
			From:       to,
			To:         from,
			FromColumn: r.To.Column,
			ToColumn:   r.From.Column,
			Kind:       r.Kind,
			Weight:     weight(r.Kind),
		})
	}

	return g
}

// # Shortest Path (Dijkstra)

type pqItem struct {
	table string
	dist  float64
	path  []Edge
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(*pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// ShortestJoinPath finds the minimum-weight path from fromTable to toTable,
// bounded to maxHops edges, using Dijkstra's algorithm over edge weights.
// Returns nil if no path exists within the hop bound.
func (g *Graph) ShortestJoinPath(fromTable, toTable string, maxHops int) []Edge {
	if fromTable == toTable {
		return nil
	}

	pq := &priorityQueue{{table: fromTable, dist: 0, path: nil}}
	heap.Init(pq)
	best := make(map[string]float64)
	best[fromTable] = 0

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*pqItem)
		if current.table == toTable {
			return current.path
		}
		if len(current.path) >= maxHops {
			continue
		}
		if d, ok := best[current.table]; ok && current.dist > d {
			continue
		}

		for _, edge := range g.adjacent[current.table] {
			nd := current.dist + edge.Weight
			if d, ok := best[edge.To]; ok && nd >= d {
				continue
			}
			best[edge.To] = nd
			newPath := make([]Edge, len(current.path), len(current.path)+1)
			copy(newPath, current.path)
			newPath = append(newPath, edge)
			heap.Push(pq, &pqItem{table: edge.To, dist: nd, path: newPath})
		}
	}

	return nil
}

// # Neighbourhood Analysis

// RelatedTables returns tables directly adjacent to table (depth 1) and, for
// depth >= 2, tables reachable indirectly through one intermediate hop.
func (g *Graph) RelatedTables(table string, depth int) (direct, indirect []string) {
	directSet := make(map[string]bool)
	for _, e := range g.adjacent[table] {
		directSet[e.To] = true
	}
	for t := range directSet {
		direct = append(direct, t)
	}
	sort.Strings(direct)

	if depth < 2 {
		return direct, nil
	}

	indirectSet := make(map[string]bool)
	for d := range directSet {
		for _, e := range g.adjacent[d] {
			if e.To != table && !directSet[e.To] {
				indirectSet[e.To] = true
			}
		}
	}
	for t := range indirectSet {
		indirect = append(indirect, t)
	}
	sort.Strings(indirect)

	return direct, indirect
}

// HubTables returns the topN tables with the most join-graph neighbours,
// descending by neighbour count.
func (g *Graph) HubTables(topN int) []string {
	type count struct {
		table string
		n     int
	}
	counts := make([]count, 0, len(g.nodes))
	for node := range g.nodes {
		counts = append(counts, count{table: node, n: len(g.adjacent[node])})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].n != counts[j].n {
			return counts[i].n > counts[j].n
		}
		return counts[i].table < counts[j].table
	})

	if topN > len(counts) {
		topN = len(counts)
	}
	result := make([]string, topN)
	for i := 0; i < topN; i++ {
		result[i] = counts[i].table
	}
	return result
}

// IsolatedTables returns tables with no join-graph edges at all.
func (g *Graph) IsolatedTables() []string {
	var result []string
	for node := range g.nodes {
		if len(g.adjacent[node]) == 0 {
			result = append(result, node)
		}
	}
	sort.Strings(result)
	return result
}

// Metrics summarizes the graph's overall shape.
type Metrics struct {
	TableCount        int
	EdgeCount         int
	IsolatedTableCount int
	HubTableCount     int
}

// Metrics computes summary statistics over the graph.
func (g *Graph) Metrics() Metrics {
	edgeCount := 0
	for _, edges := range g.adjacent {
		edgeCount += len(edges)
	}
	return Metrics{
		TableCount:         len(g.nodes),
		EdgeCount:          edgeCount / 2, // each relationship is stored both directions
		IsolatedTableCount: len(g.IsolatedTables()),
		HubTableCount:      len(g.HubTables(5)),
	}
}

// # Join Complexity

// Complexity classifies how hard it is to join a set of tables together.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// JoinComplexityResult is the outcome of [Graph.JoinComplexity].
type JoinComplexityResult struct {
	Level              Complexity
	JoinCount          int
	IntermediateTables []string
}

// JoinComplexity expands tables to its minimum Steiner-like superset by
// unioning pairwise shortest paths, then classifies the result by join count.
func (g *Graph) JoinComplexity(tables []string) JoinComplexityResult {
	if len(tables) <= 1 {
		return JoinComplexityResult{Level: ComplexitySimple, JoinCount: 0}
	}

	allEdges := make(map[string]Edge)
	involvedTables := make(map[string]bool)
	for _, t := range tables {
		involvedTables[t] = true
	}

	for i := 0; i < len(tables); i++ {
		for j := i + 1; j < len(tables); j++ {
			path := g.ShortestJoinPath(tables[i], tables[j], 4)
			for _, e := range path {
				allEdges[e.From+"->"+e.To] = e
				involvedTables[e.From] = true
				involvedTables[e.To] = true
			}
		}
	}

	var intermediate []string
	requested := make(map[string]bool)
	for _, t := range tables {
		requested[t] = true
	}
	for t := range involvedTables {
		if !requested[t] {
			intermediate = append(intermediate, t)
		}
	}
	sort.Strings(intermediate)

	joinCount := len(allEdges)
	if joinCount == 0 {
		joinCount = len(tables) - 1
	}

	level := ComplexitySimple
	switch {
	case joinCount >= 4:
		level = ComplexityComplex
	case joinCount >= 2:
		level = ComplexityModerate
	}

	return JoinComplexityResult{Level: level, JoinCount: joinCount, IntermediateTables: intermediate}
}

// # Join Order Suggestion

// SuggestJoinOrder ranks tables by in-list neighbour count descending, then
// by row-count estimate ascending, per spec.md §4.4's join-order heuristic.
func (g *Graph) SuggestJoinOrder(tables []string) []string {
	inList := make(map[string]bool, len(tables))
	for _, t := range tables {
		inList[t] = true
	}

	neighborCount := func(t string) int {
		n := 0
		for _, e := range g.adjacent[t] {
			if inList[e.To] {
				n++
			}
		}
		return n
	}

	ordered := make([]string, len(tables))
	copy(ordered, tables)
	sort.Slice(ordered, func(i, j int) bool {
		ni, nj := neighborCount(ordered[i]), neighborCount(ordered[j])
		if ni != nj {
			return ni > nj
		}
		return g.rowCount[ordered[i]] < g.rowCount[ordered[j]]
	})

	return ordered
}
