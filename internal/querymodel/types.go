// Copyright (c) 2026 SQLSage. All rights reserved.

// Package querymodel holds the pure value types that flow through the
// query intelligence pipeline: Intent (C8 output), Interpretation (C9
// output), Query and QueryResult (C10/C12 state).
package querymodel

import (
	"fmt"
	"sync"
	"time"
)

// IntentKind is the recognized verb-like operation of a natural-language query.
type IntentKind string

const (
	IntentSelect IntentKind = "select"
	IntentCount  IntentKind = "count"
	IntentSum    IntentKind = "sum"
	IntentAvg    IntentKind = "avg"
	IntentMax    IntentKind = "max"
	IntentMin    IntentKind = "min"
)

// Intent is the structured meaning extracted from free-form text: a
// verb-like operation plus entities, filters, aggregates, and ordering. It
// is a pure value — never mutated after C8/C7 produce it.
type Intent struct {
	Operation  IntentKind
	Entities   []string
	Filters    []string
	Aggregates []string
	Ordering   []string
	Limit      *int
	Metadata   map[string]string
}

// Rationale records how an Interpretation's SQL was derived, for
// explanation and disambiguation surfacing.
type Rationale struct {
	Tables       []string
	Columns      []string
	Joins        []string
	Conditions   []string
	Aggregations []string
	Grouping     []string
	Ordering     []string
	Limit        *int
	Explanation  string
}

// Interpretation is a candidate SQL statement together with its derivation
// and a confidence score in [0, 1]. Never mutated after construction;
// Interpretations are ranked by Confidence, never re-scored in place.
type Interpretation struct {
	SQL        string
	Confidence float64
	Rationale  Rationale
}

// State is the lifecycle state of a [Query]. Once a Query leaves
// [StateRunning] it is terminal — no further state transition is valid.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// CanTransitionTo reports whether moving from s to next is a legal
// transition in the Query state machine (spec.md §4.12):
//
//	running -> {completed, failed, cancelled}
//
// completed/failed/cancelled are terminal: no further transition is valid
// out of any of them.
func (s State) CanTransitionTo(next State) bool {
	if s != StateRunning {
		return false
	}
	switch next {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// Query is the mutable record of one submitted SQL execution, owned
// exclusively by its executing task until it reaches a terminal state.
//
// Invariant: once State leaves [StateRunning] it never changes again except
// for eventual eviction. Progress is monotonically non-decreasing while
// running and becomes exactly 1.0 on successful completion.
type Query struct {
	mu sync.Mutex

	ID             string
	Database       string
	SQL            string
	Requester      string
	SubmittedAt    time.Time
	state          State
	progress       float64
	rowsProcessed  int64
	truncated      bool
	errMsg         string
	cancelFlag     bool
	confidence     float64
	interpretation string
}

// NewQuery constructs a freshly submitted, running Query.
func NewQuery(id, database, sql, requester string) *Query {
	return &Query{
		ID:          id,
		Database:    database,
		SQL:         sql,
		Requester:   requester,
		SubmittedAt: time.Now(),
		state:       StateRunning,
	}
}

// State returns the query's current lifecycle state.
func (q *Query) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Progress returns the query's current progress in [0, 1].
func (q *Query) Progress() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.progress
}

// RowsProcessed returns the number of rows fetched so far.
func (q *Query) RowsProcessed() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rowsProcessed
}

// Truncated reports whether the query hit the per-query row cap.
func (q *Query) Truncated() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.truncated
}

// Err returns the retained error message, if the query failed.
func (q *Query) Err() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.errMsg
}

// SetInterpretation records the confidence and rationale the query builder
// (C9) assigned this SQL, for the durable query_history log. Queries
// submitted directly as raw SQL (no natural-language interpretation) leave
// this unset: confidence stays 0 and interpretation empty.
func (q *Query) SetInterpretation(confidence float64, interpretation string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.confidence = confidence
	q.interpretation = interpretation
}

// AdvanceProgress records rows fetched in a chunk and updates progress,
// maxRows per spec.md §4.10: progress = min(rowsProcessed/maxRows, 0.99)
// while running — it only reaches 1.0 via [Query.Complete].
func (q *Query) AdvanceProgress(rowsInChunk int64, maxRows int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != StateRunning {
		return
	}
	q.rowsProcessed += rowsInChunk
	if maxRows > 0 {
		p := float64(q.rowsProcessed) / float64(maxRows)
		if p > 0.99 {
			p = 0.99
		}
		q.progress = p
	}
}

// Complete transitions the query to completed, setting progress to exactly
// 1.0 and recording whether the per-query row cap truncated the result.
func (q *Query) Complete(truncated bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.state.CanTransitionTo(StateCompleted) {
		return fmt.Errorf("querymodel: cannot complete query in state %q", q.state)
	}
	q.state = StateCompleted
	q.truncated = truncated
	q.progress = 1.0
	return nil
}

// Fail transitions the query to failed, retaining the error message.
func (q *Query) Fail(err error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.state.CanTransitionTo(StateFailed) {
		return fmt.Errorf("querymodel: cannot fail query in state %q", q.state)
	}
	q.state = StateFailed
	if err != nil {
		q.errMsg = err.Error()
	}
	return nil
}

// RequestCancel sets the cancel flag. It is idempotent and non-blocking; the
// actual transition to cancelled happens at the next chunk boundary
// observed by the executing task via [Query.CancelRequested]. It reports
// true only if the query was running at the time of the call.
func (q *Query) RequestCancel() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != StateRunning {
		return false
	}
	q.cancelFlag = true
	return true
}

// CancelRequested reports whether cancellation has been requested.
func (q *Query) CancelRequested() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancelFlag
}

// Cancel transitions the query to cancelled. Called by the executing task
// once it observes [Query.CancelRequested] at a chunk boundary.
func (q *Query) Cancel() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.state.CanTransitionTo(StateCancelled) {
		return fmt.Errorf("querymodel: cannot cancel query in state %q", q.state)
	}
	q.state = StateCancelled
	return nil
}

// Snapshot is an immutable point-in-time view of a Query's public fields,
// safe to hand to callers (status(), progress port events) without
// exposing the mutex.
type Snapshot struct {
	ID             string
	Database       string
	SQL            string
	Requester      string
	SubmittedAt    time.Time
	State          State
	Progress       float64
	RowsProcessed  int64
	Truncated      bool
	Error          string
	Confidence     float64
	Interpretation string
}

// Snapshot captures the query's current public state.
func (q *Query) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Snapshot{
		ID:             q.ID,
		Database:       q.Database,
		SQL:            q.SQL,
		Requester:      q.Requester,
		SubmittedAt:    q.SubmittedAt,
		State:          q.state,
		Progress:       q.progress,
		RowsProcessed:  q.rowsProcessed,
		Truncated:      q.truncated,
		Error:          q.errMsg,
		Confidence:     q.confidence,
		Interpretation: q.interpretation,
	}
}

// Row is a single result row keyed by column name, produced by the
// executor directly from cursor metadata — never via reflection or
// duck-typed row objects.
type Row map[string]any

// QueryResult is the bounded, retained output of one completed query,
// handed off from the Executor (C10) to the Result Store (C12).
type QueryResult struct {
	QueryID       string
	Rows          []Row
	RowCount      int
	Truncated     bool
	RetainedUntil time.Time
}

// ProgressEvent is one push notification emitted by the Progress port.
type ProgressEvent struct {
	QueryID       string    `json:"query_id"`
	Status        State     `json:"status"`
	Progress      float64   `json:"progress"`
	RowsProcessed int64     `json:"rows_processed"`
	Timestamp     time.Time `json:"timestamp"`
}
