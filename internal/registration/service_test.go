// Copyright (c) 2026 SQLSage. All rights reserved.

package registration

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsage/sqlsage/internal/catalog"
	"github.com/sqlsage/sqlsage/internal/dbregistry"
	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/schema"
	"github.com/sqlsage/sqlsage/internal/vectorindex"
)

// fakeCatalogStore is a minimal in-memory [catalog.Store] covering only the
// methods this service actually exercises.
type fakeCatalogStore struct {
	databases        map[string]schema.Database
	diffCalls        int
	getDatabaseCalls int
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{databases: map[string]schema.Database{}}
}

func (f *fakeCatalogStore) PutDatabase(ctx context.Context, database schema.Database) error {
	f.databases[database.ID] = database
	return nil
}

func (f *fakeCatalogStore) GetDatabase(ctx context.Context, id string) (*schema.Database, error) {
	f.getDatabaseCalls++
	db, ok := f.databases[id]
	if !ok {
		return nil, apperr.NotFound("database " + id)
	}
	time.Sleep(10 * time.Millisecond)
	return &db, nil
}

func (f *fakeCatalogStore) ListDatabases(ctx context.Context) ([]schema.Database, error) {
	var out []schema.Database
	for _, db := range f.databases {
		out = append(out, db)
	}
	return out, nil
}

func (f *fakeCatalogStore) UpdateStatus(ctx context.Context, id string, status schema.DatabaseStatus) error {
	db, ok := f.databases[id]
	if !ok {
		return apperr.NotFound("database " + id)
	}
	db.Status = status
	now := time.Now()
	db.LastAnalyzed = &now
	f.databases[id] = db
	return nil
}

func (f *fakeCatalogStore) ReplaceSchema(ctx context.Context, databaseID string, full schema.FullSchema) (*schema.SchemaSnapshot, bool, error) {
	return &schema.SchemaSnapshot{Database: databaseID, Hash: "h1", Full: full, CreatedAt: time.Now()}, true, nil
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
	f.diffCalls++
	return &schema.SnapshotDiff{}, nil
}

// fakeVectorStore is a minimal in-memory [vectorindex.Store].
type fakeVectorStore struct {
	upsertCalls int
}

func (s *fakeVectorStore) ReplaceKind(ctx context.Context, databaseID string, kind vectorindex.Kind, items []vectorindex.Item) error {
	s.upsertCalls++
	return nil
}

func (s *fakeVectorStore) Append(ctx context.Context, databaseID string, items []vectorindex.Item) error {
	return nil
}

func (s *fakeVectorStore) Search(ctx context.Context, databaseID string, vector []float32, k int) ([]vectorindex.Hit, error) {
	return nil, nil
}

func (s *fakeVectorStore) Count(ctx context.Context, databaseID string) (int, error) {
	return 0, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 2, 3, 4}, nil
}

func newTestService(t *testing.T, catalogStore catalog.Store, vectorStore *fakeVectorStore) *Service {
	t.Helper()
	registry := dbregistry.New(config.PoolConfig{
		PoolSize: 1, MaxOverflow: 0,
		AcquireTimeout: time.Second, StatementTimeout: time.Second, IdleTimeout: time.Minute,
	}, slog.Default())
	index := vectorindex.New(fakeEmbedder{}, vectorStore, config.RetrievalConfig{ContextK: 10})
	return New(catalogStore, registry, catalog.NewInspector(), index, slog.Default())
}

func TestService_RegisterUnreachableDatabaseReturnsConnectionError(t *testing.T) {
	store := newFakeCatalogStore()
	vectorStore := &fakeVectorStore{}
	svc := newTestService(t, store, vectorStore)

	_, err := svc.Register(context.Background(), schema.ConnectionInfo{
		Host: "127.0.0.1", Port: 1, Database: "nope", Username: "u", Password: "p", SSLMode: schema.SSLDisable,
	})
	require.Error(t, err)

	assert.Equal(t, 0, vectorStore.upsertCalls)
}

func TestService_AnalyzeUnknownDatabaseReturnsNotFound(t *testing.T) {
	store := newFakeCatalogStore()
	svc := newTestService(t, store, &fakeVectorStore{})

	_, err := svc.Analyze(context.Background(), "missing")
	require.Error(t, err)
}

func TestService_ListReturnsRegisteredDatabases(t *testing.T) {
	store := newFakeCatalogStore()
	store.databases["db1"] = schema.Database{ID: "db1", Status: schema.DatabaseConnected}
	svc := newTestService(t, store, &fakeVectorStore{})

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_DiffDelegatesToCatalogStore(t *testing.T) {
	store := newFakeCatalogStore()
	svc := newTestService(t, store, &fakeVectorStore{})

	_, err := svc.Diff(context.Background(), "db1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.diffCalls)
}

func TestService_AnalyzeCollapsesConcurrentCallsForSameDatabase(t *testing.T) {
	store := newFakeCatalogStore()
	store.databases["db1"] = schema.Database{
		ID:     "db1",
		Status: schema.DatabaseConfigured,
		Connection: schema.ConnectionInfo{
			Host: "127.0.0.1", Port: 1, Database: "nope", Username: "u", Password: "p", SSLMode: schema.SSLDisable,
		},
	}
	svc := newTestService(t, store, &fakeVectorStore{})

	const callers = 8
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, _ = svc.Analyze(context.Background(), "db1")
		}()
	}
	wg.Wait()

	assert.Less(t, store.getDatabaseCalls, callers,
		"singleflight should have collapsed concurrent Analyze calls into fewer than %d inspector passes", callers)
}
