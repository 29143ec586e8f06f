// Copyright (c) 2026 SQLSage. All rights reserved.

package executor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsage/sqlsage/internal/dbregistry"
	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/querymodel"
	"github.com/sqlsage/sqlsage/internal/resultstore"
	"github.com/sqlsage/sqlsage/internal/safety"
	"github.com/sqlsage/sqlsage/internal/schema"
)

type fakeCatalogStore struct {
	databases map[string]schema.Database
}

func (f *fakeCatalogStore) PutDatabase(ctx context.Context, database schema.Database) error {
	return nil
}

func (f *fakeCatalogStore) GetDatabase(ctx context.Context, id string) (*schema.Database, error) {
	db, ok := f.databases[id]
	if !ok {
		return nil, apperr.NotFound("database " + id)
	}
	return &db, nil
}

func (f *fakeCatalogStore) ListDatabases(ctx context.Context) ([]schema.Database, error) {
	return nil, nil
}

func (f *fakeCatalogStore) UpdateStatus(ctx context.Context, id string, status schema.DatabaseStatus) error {
	return nil
}

func (f *fakeCatalogStore) ReplaceSchema(ctx context.Context, databaseID string, full schema.FullSchema) (*schema.SchemaSnapshot, bool, error) {
	return nil, false, nil
}

func (f *fakeCatalogStore) GetTables(ctx context.Context, databaseID string) ([]schema.Table, error) {
	return nil, nil
}

func (f *fakeCatalogStore) GetColumns(ctx context.Context, databaseID, schemaName, tableName string) ([]schema.Column, error) {
	return nil, nil
}

func (f *fakeCatalogStore) GetRelationships(ctx context.Context, databaseID string) ([]schema.Relationship, error) {
	return nil, nil
}

func (f *fakeCatalogStore) LatestSnapshot(ctx context.Context, databaseID string) (*schema.SchemaSnapshot, error) {
	return nil, apperr.NotFound("snapshot")
}

func (f *fakeCatalogStore) SnapshotDiff(ctx context.Context, databaseID string) (*schema.SnapshotDiff, error) {
	return nil, apperr.NotFound("snapshot diff")
}

func newTestExecutor(databases map[string]schema.Database) *Executor {
	return newTestExecutorWithOnFailure(databases)
}

func newTestExecutorWithOnFailure(databases map[string]schema.Database, onFailure ...func(querymodel.Snapshot, error)) *Executor {
	registry := dbregistry.New(config.PoolConfig{
		PoolSize: 1, MaxOverflow: 0,
		AcquireTimeout: time.Second, StatementTimeout: time.Second, IdleTimeout: time.Minute,
	}, slog.Default())
	validator := safety.New(safety.DefaultLimits())
	return New(registry, resultstore.New(), validator, &fakeCatalogStore{databases: databases}, nil, config.ExecutorConfig{
		FetchSize: 1000, MaxRowsPerQuery: 100_000, ResultRetention: time.Hour,
	}, slog.Default(), onFailure...)
}

func TestSubmit_RejectsUnsafeSQL(t *testing.T) {
	e := newTestExecutor(nil)
	_, err := e.Submit(context.Background(), "db1", "DROP TABLE users", "alice", 0, "")
	require.Error(t, err)
}

func TestSubmit_RejectsUnknownDatabase(t *testing.T) {
	e := newTestExecutor(nil)
	_, err := e.Submit(context.Background(), "unknown", "SELECT 1", "alice", 0, "")
	require.Error(t, err)
}

func TestStatus_UnknownQueryIDReturnsNotFound(t *testing.T) {
	e := newTestExecutor(nil)
	_, err := e.Status("missing")
	require.Error(t, err)
}

func TestCancel_UnknownQueryIDReturnsNotFound(t *testing.T) {
	e := newTestExecutor(nil)
	err := e.Cancel("missing")
	require.Error(t, err)
}

func TestCancel_RunningQuerySucceeds(t *testing.T) {
	e := newTestExecutor(nil)
	q := querymodel.NewQuery("q1", "db1", "SELECT 1", "alice")
	e.mu.Lock()
	e.queries["q1"] = q
	e.mu.Unlock()

	require.NoError(t, e.Cancel("q1"))
	assert.True(t, q.CancelRequested())
}

func TestCancel_TerminalQueryFails(t *testing.T) {
	e := newTestExecutor(nil)
	q := querymodel.NewQuery("q1", "db1", "SELECT 1", "alice")
	require.NoError(t, q.Complete(false))
	e.mu.Lock()
	e.queries["q1"] = q
	e.mu.Unlock()

	err := e.Cancel("q1")
	require.Error(t, err)
}

func TestCleanup_EvictsOnlyOldTerminalQueries(t *testing.T) {
	e := newTestExecutor(nil)

	old := querymodel.NewQuery("old", "db1", "SELECT 1", "alice")
	require.NoError(t, old.Complete(false))

	another := querymodel.NewQuery("another", "db1", "SELECT 1", "alice")
	require.NoError(t, another.Complete(false))

	running := querymodel.NewQuery("running", "db1", "SELECT 1", "alice")

	e.mu.Lock()
	e.queries["old"] = old
	e.queries["another"] = another
	e.queries["running"] = running
	e.mu.Unlock()

	evicted := e.Cleanup(0)
	assert.Equal(t, 2, evicted)

	_, ok := e.lookup("old")
	assert.False(t, ok)
	_, ok = e.lookup("running")
	assert.True(t, ok)
}

func TestSubscribe_ReceivesPublishedEvents(t *testing.T) {
	e := newTestExecutor(nil)
	q := querymodel.NewQuery("q1", "db1", "SELECT 1", "alice")

	ch, cancel := e.Subscribe("q1")
	defer cancel()

	e.publish(q)

	select {
	case event := <-ch:
		assert.Equal(t, "q1", event.QueryID)
	case <-time.After(time.Second):
		t.Fatal("expected a published event")
	}
}

func TestFinalize_InvokesOnFailureForFailedQuery(t *testing.T) {
	var calls int
	var capturedErr error
	e := newTestExecutorWithOnFailure(nil, func(snap querymodel.Snapshot, err error) {
		calls++
		capturedErr = err
	})

	q := querymodel.NewQuery("q1", "db1", "SELECT 1", "alice")
	require.NoError(t, q.Fail(apperr.ExecutionFailed(assert.AnError)))

	e.finalize(q)

	assert.Equal(t, 1, calls)
	require.Error(t, capturedErr)
}

func TestFinalize_SkipsOnFailureForCompletedQuery(t *testing.T) {
	var calls int
	e := newTestExecutorWithOnFailure(nil, func(snap querymodel.Snapshot, err error) {
		calls++
	})

	q := querymodel.NewQuery("q1", "db1", "SELECT 1", "alice")
	require.NoError(t, q.Complete(false))

	e.finalize(q)

	assert.Equal(t, 0, calls)
}

func TestSubscribe_CancelUnregistersChannel(t *testing.T) {
	e := newTestExecutor(nil)
	_, cancel := e.Subscribe("q1")
	cancel()

	e.subsMu.Lock()
	_, ok := e.subs["q1"]
	e.subsMu.Unlock()
	assert.False(t, ok)
}
