// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"context"

	"github.com/sqlsage/sqlsage/internal/schema"
)

// Store is the Adaptive Learning Store (C6)'s operation contract.
type Store interface {
	// Initialize seeds or extends databaseID's vocabulary from full's
	// tables, without touching any previously learned pattern or mapping.
	Initialize(ctx context.Context, databaseID string, full schema.FullSchema) error
	// RecordSuccess records that query executed as sql with confidence.
	// Every call increments total/successful query counters; a pattern is
	// only captured when confidence >= 0.7.
	RecordSuccess(ctx context.Context, databaseID, query, sql string, confidence float64) error
	// ContextFor renders the compact adaptive-context block for query.
	ContextFor(ctx context.Context, databaseID, query string) (string, error)
	// SimilarPatterns returns the top-k patterns matching query by Jaccard
	// similarity over lowercased whitespace tokens (threshold 0.30).
	SimilarPatterns(ctx context.Context, databaseID, query string, k int) ([]Pattern, error)
	// Metrics returns databaseID's current learning metrics.
	Metrics(ctx context.Context, databaseID string) (Metrics, error)
}
