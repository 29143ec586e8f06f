// Copyright (c) 2026 SQLSage. All rights reserved.

// Package llm implements the LM Adapter (C8): the two-stage language-model
// boundary between raw query text and generated SQL. Both stages are
// wrapped so a parse failure or model timeout falls through to a
// deterministic branch rather than surfacing an error.
package llm

import (
	"context"

	"github.com/sqlsage/sqlsage/internal/querymodel"
)

// LanguageModel is the single capability the core depends on. It is
// deliberately vendor-agnostic: callers never see the concrete backend.
type LanguageModel interface {
	// Understand extracts an Intent from text, using adaptiveContext (C6's
	// learned vocabulary/patterns) as additional prompt grounding. The
	// returned Intent's Operation/Entities/Filters are set; Aggregates,
	// Ordering, and Limit are left for C9 to derive once per query text.
	Understand(ctx context.Context, text string, adaptiveContext string) (querymodel.Intent, error)
	// GenerateSQL drafts a SQL statement for intent, grounded in
	// schemaContext (C5's retrieved schema block) and adaptiveContext.
	// An empty return (with a nil error) means the caller should compose
	// SQL deterministically from its own Interpretation parts instead.
	GenerateSQL(ctx context.Context, intent querymodel.Intent, schemaContext string, adaptiveContext string) (string, error)
}
