// Copyright (c) 2026 SQLSage. All rights reserved.

// Package vectorindex implements the Vector Context Index (C5): a per-database
// embedding index over tables, columns, relationships, and accepted
// (query, sql) pairs, used to assemble a compact schema context block for
// the query builder (C9) and language model adapter (C8).
package vectorindex

// Kind distinguishes the four unit types indexed per database.
type Kind string

const (
	KindTable        Kind = "table"
	KindColumn       Kind = "column"
	KindRelationship Kind = "relationship"
	KindQueryPair    Kind = "query_pair"
)

// Item is one unit upserted into the index: its embedding text, a stable
// Identity (used as the natural key for replace-on-reindex), and a
// pre-formatted Metadata block returned verbatim on a [Hit].
type Item struct {
	Kind      Kind
	Identity  string
	Metadata  string
	Text      string
	Embedding []float32
}

// Hit is one retrieval result: the matched unit's kind/identity/metadata and
// its distance from the query embedding (lower is closer; cosine distance).
type Hit struct {
	Kind     Kind
	Identity string
	Metadata string
	Distance float64
}
