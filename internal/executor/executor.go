// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package executor implements the Async Executor (C10): submit/status/
results/cancel/stream over long-running SQL executions against a target
database, run one goroutine at a time per query.

Each query's rows are fetched through a server-side named cursor opened in
its own transaction, FETCHed in spec.md §4.10's fixed chunk size, so a
multi-million-row SELECT never has to sit fully in Postgres's own result
buffer before the first chunk reaches the client. Progress and row count are
tracked on the [querymodel.Query] state machine; cancellation is cooperative,
observed only at chunk boundaries, never a mid-fetch context cancel.
*/
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlsage/sqlsage/internal/catalog"
	"github.com/sqlsage/sqlsage/internal/catalogschema"
	"github.com/sqlsage/sqlsage/internal/dbregistry"
	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/platform/dberr"
	"github.com/sqlsage/sqlsage/internal/querymodel"
	"github.com/sqlsage/sqlsage/internal/resultstore"
	"github.com/sqlsage/sqlsage/internal/safety"
	"github.com/sqlsage/sqlsage/internal/schema"
	"github.com/sqlsage/sqlsage/pkg/uuidv7"
)

// Executor is the Async Executor (C10).
type Executor struct {
	registry    *dbregistry.Registry
	results     *resultstore.Store
	validator   *safety.Validator
	catalog     catalog.Store
	historyPool *pgxpool.Pool
	cfg         config.ExecutorConfig
	logger      *slog.Logger

	mu      sync.RWMutex
	queries map[string]*querymodel.Query

	subsMu sync.Mutex
	subs   map[string][]chan querymodel.ProgressEvent

	// onFailure, if set, is invoked once per failed query after it reaches
	// its terminal state. Execution errors are never retried by the core
	// (spec.md §7) — this is the seam a collaborator hangs its own retry or
	// alerting policy on, instead of one living inside the executor itself.
	onFailure func(querymodel.Snapshot, error)
}

// New constructs an Executor. historyPool must point at SQLSage's own
// catalog database, where terminal query records are written.
//
// onFailure is an optional collaborator hook, called after a query fails
// with the query's final snapshot and the triggering error. At most one
// may be supplied; it runs synchronously on the query's own goroutine, so
// it must not block.
func New(registry *dbregistry.Registry, results *resultstore.Store, validator *safety.Validator, catalogStore catalog.Store, historyPool *pgxpool.Pool, cfg config.ExecutorConfig, logger *slog.Logger, onFailure ...func(querymodel.Snapshot, error)) *Executor {
	e := &Executor{
		registry:    registry,
		results:     results,
		validator:   validator,
		catalog:     catalogStore,
		historyPool: historyPool,
		cfg:         cfg,
		logger:      logger,
		queries:     make(map[string]*querymodel.Query),
		subs:        make(map[string][]chan querymodel.ProgressEvent),
	}
	if len(onFailure) > 0 {
		e.onFailure = onFailure[0]
	}
	return e
}

// Submit validates sql, registers a new running [querymodel.Query], and
// starts its execution on a dedicated goroutine. It returns as soon as the
// query is registered, never waiting for completion.
//
// confidence and interpretation carry the query builder's (C9) rationale for
// sql when it came from a natural-language interpretation, persisted
// alongside the rest of the query's durable history row. Callers submitting
// raw SQL directly pass 0 and "".
func (e *Executor) Submit(ctx context.Context, databaseID, sql, requester string, confidence float64, interpretation string) (*querymodel.Query, error) {
	if err := e.validator.ValidateSQL(sql); err != nil {
		return nil, err
	}

	database, err := e.catalog.GetDatabase(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	q := querymodel.NewQuery(uuidv7.New(), databaseID, sql, requester)
	q.SetInterpretation(confidence, interpretation)

	e.mu.Lock()
	e.queries[q.ID] = q
	e.mu.Unlock()

	go e.run(q, database.Connection)

	return q, nil
}

// Status returns queryID's current snapshot. Returns apperr.NotFound if
// queryID is unknown or has already been evicted by [Executor.Cleanup].
func (e *Executor) Status(queryID string) (querymodel.Snapshot, error) {
	q, ok := e.lookup(queryID)
	if !ok {
		return querymodel.Snapshot{}, apperr.NotFound("query " + queryID)
	}
	return q.Snapshot(), nil
}

// Results returns a page of queryID's retained rows. Delegates to the
// Result Store (C12); returns apperr.NotFound if the query never completed
// or its retention window has lapsed.
func (e *Executor) Results(queryID string, offset, limit int) ([]querymodel.Row, int, bool, error) {
	return e.results.Get(queryID, offset, limit)
}

// Cancel requests cancellation of queryID. Cancellation is cooperative: the
// executing goroutine observes it at the next chunk boundary.
func (e *Executor) Cancel(queryID string) error {
	q, ok := e.lookup(queryID)
	if !ok {
		return apperr.NotFound("query " + queryID)
	}
	if !q.RequestCancel() {
		return apperr.New(apperr.KindInvalidInput, "query is not running")
	}
	return nil
}

// Subscribe registers a channel that receives every [querymodel.ProgressEvent]
// published for queryID from this point on, for the Progress port's SSE
// stream. The returned cancel func must be called once the caller stops
// reading, to unregister and close the channel.
func (e *Executor) Subscribe(queryID string) (<-chan querymodel.ProgressEvent, func()) {
	ch := make(chan querymodel.ProgressEvent, 8)

	e.subsMu.Lock()
	e.subs[queryID] = append(e.subs[queryID], ch)
	e.subsMu.Unlock()

	cancel := func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		subs := e.subs[queryID]
		for i, c := range subs {
			if c == ch {
				e.subs[queryID] = append(subs[:i:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
		if len(e.subs[queryID]) == 0 {
			delete(e.subs, queryID)
		}
	}
	return ch, cancel
}

// Cleanup evicts every terminal query submitted more than maxAge ago, per
// spec.md §4.10's cleanup(max_age) retention eviction.
func (e *Executor) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	e.mu.Lock()
	defer e.mu.Unlock()

	evicted := 0
	for id, q := range e.queries {
		snap := q.Snapshot()
		if snap.State != querymodel.StateRunning && snap.SubmittedAt.Before(cutoff) {
			delete(e.queries, id)
			evicted++
		}
	}
	return evicted
}

// RunCleanupLoop runs [Executor.Cleanup] every interval until done is
// closed. Intended to be started once as a background goroutine.
func (e *Executor) RunCleanupLoop(done <-chan struct{}, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			e.Cleanup(maxAge)
		}
	}
}

func (e *Executor) lookup(queryID string) (*querymodel.Query, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	q, ok := e.queries[queryID]
	return q, ok
}

// run drives one query to completion, failure, or cancellation. It always
// runs to a terminal state and records history on exit.
func (e *Executor) run(q *querymodel.Query, conn schema.ConnectionInfo) {
	ctx := context.Background()
	defer e.finalize(q)

	pool, err := e.registry.Acquire(ctx, q.Database, conn)
	if err != nil {
		_ = q.Fail(err)
		return
	}
	defer e.registry.Release(q.Database)

	tx, err := pool.Begin(ctx)
	if err != nil {
		_ = q.Fail(apperr.ExecutionFailed(err))
		return
	}
	defer tx.Rollback(ctx)

	cursor := pgx.Identifier{"sqlsage_cursor_" + q.ID}.Sanitize()
	if _, err := tx.Exec(ctx, fmt.Sprintf("DECLARE %s CURSOR FOR %s", cursor, q.SQL)); err != nil {
		_ = q.Fail(dberr.Wrap(err, "declare_cursor"))
		return
	}

	rows, truncated, err := e.fetchLoop(ctx, q, tx, cursor)
	if err != nil {
		_ = q.Fail(dberr.Wrap(err, "fetch_cursor"))
		return
	}
	if q.CancelRequested() {
		_ = q.Cancel()
		return
	}

	if err := tx.Commit(ctx); err != nil {
		_ = q.Fail(dberr.Wrap(err, "commit_cursor_tx"))
		return
	}

	if err := q.Complete(truncated); err != nil {
		e.logger.Error("executor: query reached run() in an unexpected state", "query", q.ID, "error", err)
		return
	}

	e.results.Put(querymodel.QueryResult{
		QueryID:       q.ID,
		Rows:          rows,
		RowCount:      len(rows),
		Truncated:     truncated,
		RetainedUntil: time.Now().Add(e.cfg.ResultRetention),
	})
}

// fetchLoop repeatedly FETCHes cfg.FetchSize rows at a time, checking for
// cancellation at each boundary, until the cursor is exhausted or the
// per-query row cap is reached.
func (e *Executor) fetchLoop(ctx context.Context, q *querymodel.Query, tx pgx.Tx, cursor string) ([]querymodel.Row, bool, error) {
	var all []querymodel.Row
	truncated := false

	for {
		if q.CancelRequested() {
			return all, truncated, nil
		}

		rows, err := tx.Query(ctx, fmt.Sprintf("FETCH FORWARD %d FROM %s", e.cfg.FetchSize, cursor))
		if err != nil {
			return nil, false, err
		}
		chunk, err := collectRows(rows)
		if err != nil {
			return nil, false, err
		}

		if len(chunk) == 0 {
			break
		}

		if remaining := e.cfg.MaxRowsPerQuery - len(all); len(chunk) >= remaining {
			if remaining < 0 {
				remaining = 0
			}
			chunk = chunk[:remaining]
			truncated = true
		}
		all = append(all, chunk...)
		q.AdvanceProgress(int64(len(chunk)), int64(e.cfg.MaxRowsPerQuery))
		e.publish(q)

		if truncated || len(chunk) < e.cfg.FetchSize {
			break
		}
	}

	return all, truncated, nil
}

// collectRows drains rows into [querymodel.Row] values keyed by column
// name, taken directly from cursor field metadata.
func collectRows(rows pgx.Rows) ([]querymodel.Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var out []querymodel.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(querymodel.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// publish fans queryID's current snapshot out to every live subscriber.
// Slow subscribers are dropped from an event, never allowed to block the
// executing goroutine.
func (e *Executor) publish(q *querymodel.Query) {
	snap := q.Snapshot()
	event := querymodel.ProgressEvent{
		QueryID:       snap.ID,
		Status:        snap.State,
		Progress:      snap.Progress,
		RowsProcessed: snap.RowsProcessed,
		Timestamp:     time.Now(),
	}

	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ch := range e.subs[event.QueryID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// finalize records a terminal query's history row and publishes its final
// progress event. Always runs, regardless of how run() exited.
func (e *Executor) finalize(q *querymodel.Query) {
	snap := q.Snapshot()
	if err := e.recordHistory(context.Background(), snap); err != nil {
		e.logger.Error("executor: failed to record query history", "query", snap.ID, "error", err)
	}
	if snap.State == querymodel.StateFailed && e.onFailure != nil {
		e.onFailure(snap, errors.New(snap.Error))
	}
	e.publish(q)
}

func (e *Executor) recordHistory(ctx context.Context, snap querymodel.Snapshot) error {
	if e.historyPool == nil {
		return nil
	}

	t := catalogschema.QueryHistoryTable
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s
	`, t.Name, t.ID, t.DatabaseID, t.SQL, t.Requester, t.State, t.RowCount, t.Truncated, t.Error, t.Confidence, t.Interpretation, t.SubmittedAt, t.CompletedAt,
		t.ID,
		t.State, t.State, t.RowCount, t.RowCount, t.Truncated, t.Truncated,
		t.Error, t.Error, t.CompletedAt, t.CompletedAt)

	now := time.Now()
	_, err := e.historyPool.Exec(ctx, query,
		snap.ID, snap.Database, snap.SQL, snap.Requester, string(snap.State),
		snap.RowsProcessed, snap.Truncated, snap.Error, snap.Confidence, snap.Interpretation, snap.SubmittedAt, now,
	)
	return dberr.Wrap(err, "record_query_history")
}
