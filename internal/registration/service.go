// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package registration implements the admin-facing database lifecycle named in
spec.md §6 but left out-of-core as transport: registering a target database,
analyzing (or re-analyzing) its schema, and reporting what changed.

It is the orchestration glue between four already-independent components —
the Connection Pool (C11), the Schema Inspector (C3), the Schema Store (C2),
and the Vector Context Index (C5) — none of which know about each other.
*/
package registration

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/sqlsage/sqlsage/internal/catalog"
	"github.com/sqlsage/sqlsage/internal/dbregistry"
	"github.com/sqlsage/sqlsage/internal/schema"
	"github.com/sqlsage/sqlsage/internal/vectorindex"
	"github.com/sqlsage/sqlsage/pkg/uuidv7"
)

// Service is the database registration and analysis orchestrator.
//
// It has no HTTP concerns of its own: internal/api's admin handlers call it
// directly, the same way the teacher's comic handlers call comic.Service.
type Service struct {
	catalog   catalog.Store
	registry  *dbregistry.Registry
	inspector *catalog.Inspector
	index     *vectorindex.Index
	logger    *slog.Logger

	// analyzeGroup collapses concurrent Analyze calls for the same
	// databaseID into a single inspector pass, per spec.md §6.
	analyzeGroup singleflight.Group
}

// New constructs a Service.
func New(catalogStore catalog.Store, registry *dbregistry.Registry, inspector *catalog.Inspector, index *vectorindex.Index, logger *slog.Logger) *Service {
	return &Service{
		catalog:   catalogStore,
		registry:  registry,
		inspector: inspector,
		index:     index,
		logger:    logger,
	}
}

// Register adds a new target database under a freshly minted opaque id and
// performs its first schema analysis before returning, so a caller's very
// first natural-language query against it already has vector context to
// retrieve from.
//
// Parameters: ctx, conn — the target database's connection details,
// consumed as provided and never persisted in plaintext by any component
// downstream of the Connection Pool.
// Returns: the registered [schema.Database] with Status advanced to
// Connected and LastAnalyzed stamped, or an error if the connection could
// not be established or the schema could not be persisted.
func (s *Service) Register(ctx context.Context, conn schema.ConnectionInfo) (*schema.Database, error) {
	database := schema.Database{
		ID:         uuidv7.New(),
		Connection: conn,
		Status:     schema.DatabaseConfigured,
	}
	if err := s.catalog.PutDatabase(ctx, database); err != nil {
		return nil, fmt.Errorf("registration: put database: %w", err)
	}

	if _, err := s.Analyze(ctx, database.ID); err != nil {
		return nil, err
	}

	return s.catalog.GetDatabase(ctx, database.ID)
}

// Analyze (re-)inspects databaseID's live schema and, when it changed since
// the last analysis, replaces the stored schema and re-embeds it into the
// vector index. Safe to call repeatedly: an unchanged schema is a no-op past
// the inspection itself, per [catalog.Store.ReplaceSchema]'s hash check.
//
// Concurrent calls for the same databaseID collapse into one inspector
// pass: every caller that arrives while an analysis is already in flight
// waits for and shares that result instead of triggering its own.
func (s *Service) Analyze(ctx context.Context, databaseID string) (changed bool, err error) {
	result, err, _ := s.analyzeGroup.Do(databaseID, func() (any, error) {
		return s.analyzeOnce(ctx, databaseID)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (s *Service) analyzeOnce(ctx context.Context, databaseID string) (changed bool, err error) {
	database, err := s.catalog.GetDatabase(ctx, databaseID)
	if err != nil {
		return false, err
	}

	pool, err := s.registry.Acquire(ctx, databaseID, database.Connection)
	if err != nil {
		_ = s.catalog.UpdateStatus(ctx, databaseID, schema.DatabaseDisconnected)
		return false, fmt.Errorf("registration: acquire pool: %w", err)
	}
	defer s.registry.Release(databaseID)

	full, err := s.inspector.Inspect(ctx, pool)
	if err != nil {
		return false, fmt.Errorf("registration: inspect schema: %w", err)
	}

	_, changed, err = s.catalog.ReplaceSchema(ctx, databaseID, full)
	if err != nil {
		return false, fmt.Errorf("registration: replace schema: %w", err)
	}

	if changed {
		if err := s.index.UpsertSchema(ctx, databaseID, full); err != nil {
			return false, fmt.Errorf("registration: upsert vector index: %w", err)
		}
		s.logger.Info("registration: schema changed, re-embedded", "database", databaseID)
	}

	if err := s.catalog.UpdateStatus(ctx, databaseID, schema.DatabaseConnected); err != nil {
		return changed, fmt.Errorf("registration: update status: %w", err)
	}

	return changed, nil
}

// Diff reports what changed between databaseID's two most recent analyses.
func (s *Service) Diff(ctx context.Context, databaseID string) (*schema.SnapshotDiff, error) {
	return s.catalog.SnapshotDiff(ctx, databaseID)
}

// List returns every registered database.
func (s *Service) List(ctx context.Context) ([]schema.Database, error) {
	return s.catalog.ListDatabases(ctx)
}

// Get looks up one registered database by id.
func (s *Service) Get(ctx context.Context, databaseID string) (*schema.Database, error) {
	return s.catalog.GetDatabase(ctx, databaseID)
}
