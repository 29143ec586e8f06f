// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package querybuilder implements the Query Builder (C9): the top-level
orchestrator that turns free-form text into a validated, ranked set of SQL
Interpretations, without ever executing them.

It wires together every other pipeline component: C1 (safety), C2 (schema
store), C4 (join graph), C5 (vector context), C6 (adaptive learning), C7
(pattern detection), and C8 (the language model) — per spec.md §4.9's
nine-step algorithm. Candidate Interpretations are constructed concurrently
via [golang.org/x/sync/errgroup], since each may issue its own C8.GenerateSQL
call.
*/
package querybuilder

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sqlsage/sqlsage/internal/catalog"
	"github.com/sqlsage/sqlsage/internal/graph"
	"github.com/sqlsage/sqlsage/internal/learning"
	"github.com/sqlsage/sqlsage/internal/llm"
	"github.com/sqlsage/sqlsage/internal/pattern"
	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/querymodel"
	"github.com/sqlsage/sqlsage/internal/safety"
	"github.com/sqlsage/sqlsage/internal/schema"
	"github.com/sqlsage/sqlsage/internal/vectorindex"
)

// maxCandidates bounds how many candidate tables get a full Interpretation
// built, to keep a single Build call's LM fan-out bounded.
const maxCandidates = 8

// confidenceFloor is the minimum confidence spec.md §4.9 step 7 requires
// for a single best Interpretation to be returned outright.
const confidenceFloor = 0.5

// ambiguityGap is the minimum confidence gap to the runner-up that spec.md
// §4.9 step 7 treats as "clear" rather than ambiguous.
const ambiguityGap = 0.1

// Builder is the Query Builder (C9). It holds no per-call state and is
// safe for concurrent use across databases and requests.
type Builder struct {
	validator     *safety.Validator
	schemaStore   catalog.Store
	vectorIndex   *vectorindex.Index
	learningStore learning.Store
	lm            llm.LanguageModel
	retrieval     config.RetrievalConfig
}

// New constructs a Builder from its component dependencies.
func New(validator *safety.Validator, schemaStore catalog.Store, vectorIndex *vectorindex.Index, learningStore learning.Store, lm llm.LanguageModel, retrieval config.RetrievalConfig) *Builder {
	return &Builder{
		validator:     validator,
		schemaStore:   schemaStore,
		vectorIndex:   vectorIndex,
		learningStore: learningStore,
		lm:            lm,
		retrieval:     retrieval,
	}
}

// Status is the outcome discriminator for a [Result].
type Status string

const (
	StatusOK        Status = "ok"
	StatusAmbiguous Status = "ambiguous"
)

// Result is the outcome of [Builder.Build]: either a single confident best
// Interpretation plus up to two alternatives, or a set of ambiguous
// candidates with disambiguation suggestions.
type Result struct {
	Status       Status
	Best         *querymodel.Interpretation
	Alternatives []querymodel.Interpretation
	Candidates   []querymodel.Interpretation
	Suggestions  []string
}

// Build runs spec.md §4.9's full algorithm for one (text, database) pair.
// It never executes the resulting SQL — the caller hands it to C10.
func (b *Builder) Build(ctx context.Context, databaseID, text string) (*Result, error) {
	tables, err := b.schemaStore.GetTables(ctx, databaseID)
	if err != nil || len(tables) == 0 {
		return nil, apperr.SchemaUnavailable(databaseID)
	}
	relationships, err := b.schemaStore.GetRelationships(ctx, databaseID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSchemaUnavailable, "could not load relationships for "+databaseID, err)
	}

	if err := b.validator.ValidateNaturalLanguage(text); err != nil {
		return nil, err
	}

	enrichments := pattern.Detect(text)

	adaptiveContext, err := b.learningStore.ContextFor(ctx, databaseID, text)
	if err != nil {
		adaptiveContext = ""
	}

	intent, err := b.lm.Understand(ctx, text, adaptiveContext)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindGenerationFailed, "could not understand query", err)
	}
	intent = deriveSignals(intent, enrichments)

	joinGraph := graph.Build(tables, relationships)

	schemaContext, err := b.vectorIndex.RetrieveContext(ctx, databaseID, text, joinGraph, tables)
	if err != nil {
		schemaContext = ""
	}

	hits, err := b.vectorIndex.Search(ctx, databaseID, text, b.retrieval.ContextK)
	if err != nil {
		hits = nil
	}

	candidates := candidateTables(hits, intent, tables)
	if len(candidates) == 0 {
		return nil, apperr.GenerationFailed("no candidate tables matched the query")
	}
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	interpretations, err := b.buildInterpretations(ctx, candidates, intent, enrichments, hits, tables, joinGraph, schemaContext, adaptiveContext)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(interpretations) == 0 {
		return nil, apperr.GenerationFailed("no interpretation could be constructed")
	}

	sort.Slice(interpretations, func(i, j int) bool {
		return interpretations[i].Confidence > interpretations[j].Confidence
	})

	result := classify(interpretations)

	chosenSQL := result.Best
	if chosenSQL == nil && len(result.Candidates) > 0 {
		chosenSQL = &result.Candidates[0]
	}
	if chosenSQL != nil {
		if err := b.validator.ValidateSQL(chosenSQL.SQL); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// buildInterpretations constructs one Interpretation per candidate table
// concurrently via errgroup, since each may call C8.GenerateSQL.
func (b *Builder) buildInterpretations(ctx context.Context, candidates []tableCandidate, intent querymodel.Intent, enrichments pattern.Enrichments, hits []vectorindex.Hit, allTables []schema.Table, joinGraph *graph.Graph, schemaContext, adaptiveContext string) ([]querymodel.Interpretation, error) {
	results := make([]querymodel.Interpretation, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		group.Go(func() error {
			interp, err := b.interpret(groupCtx, candidate, intent, enrichments, hits, allTables, joinGraph, schemaContext, adaptiveContext)
			if err != nil {
				return nil // a single candidate failing does not fail the whole batch
			}
			results[i] = interp
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]querymodel.Interpretation, 0, len(results))
	for _, r := range results {
		if r.SQL != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

func classify(sorted []querymodel.Interpretation) *Result {
	best := sorted[0]

	clear := len(sorted) == 1
	if len(sorted) > 1 {
		clear = best.Confidence-sorted[1].Confidence >= ambiguityGap
	}

	if best.Confidence >= confidenceFloor && clear {
		alts := sorted[1:]
		if len(alts) > 2 {
			alts = alts[:2]
		}
		return &Result{Status: StatusOK, Best: &best, Alternatives: alts}
	}

	top := sorted
	if len(top) > 3 {
		top = top[:3]
	}
	return &Result{Status: StatusAmbiguous, Candidates: top, Suggestions: disambiguationSuggestions(top)}
}

func disambiguationSuggestions(candidates []querymodel.Interpretation) []string {
	suggestions := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Rationale.Tables) == 0 {
			continue
		}
		suggestions = append(suggestions, "did you mean "+c.Rationale.Tables[0]+"?")
	}
	return suggestions
}
