// Copyright (c) 2026 SQLSage. All rights reserved.

// Package learning implements the Adaptive Learning Store (C6): a
// per-database, additive-only memory of vocabulary, bilingual term mappings,
// and accepted query patterns that C8 and C9 draw on as adaptive context.
package learning

import "time"

// PatternKind classifies a captured query pattern by its SQL shape.
type PatternKind string

const (
	PatternCount      PatternKind = "count"
	PatternSelectAll  PatternKind = "select_all"
	PatternAggregation PatternKind = "aggregation"
	PatternLearned    PatternKind = "learned"
)

// Pattern is one accepted (query, sql) pair, captured whenever a query
// executes successfully with confidence >= 0.7.
type Pattern struct {
	OriginalText    string
	SQL             string
	Kind            PatternKind
	TurkishKeywords []string
	Confidence      float64
}

// Metrics summarizes a database's learning activity.
type Metrics struct {
	TotalQueries      int
	SuccessfulQueries int
	LearnedPatterns   int
	VocabularySize    int
}

// Record is the complete per-database learning state.
type Record struct {
	DatabaseID        string
	Vocabulary        []string
	BilingualMappings map[string]string
	Patterns          []Pattern
	Metrics           Metrics
	UpdatedAt         time.Time
}
