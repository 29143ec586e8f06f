// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package catalog implements the Schema Store (C2) and Schema Inspector (C3).

The store persists one normalized copy of a registered database's schema
(tables, columns, relationships) plus an append-only history of content-
addressed snapshots, so that re-analyzing an unchanged database is a no-op
and callers can diff what changed between two analyses. The inspector reads
a target database's own information_schema/pg_catalog to produce the
[schema.FullSchema] the store then persists.
*/
package catalog

import (
	"context"

	"github.com/sqlsage/sqlsage/internal/schema"
)

// Store is the Schema Store (C2) contract. Implementations must make
// ReplaceSchema atomic per (database, schema): either every table, column,
// and relationship row for that database is replaced, or none are.
type Store interface {
	// PutDatabase registers or updates a target database's connection
	// metadata and lifecycle status.
	PutDatabase(ctx context.Context, database schema.Database) error

	// GetDatabase looks up a registered database by id. Returns
	// apperr.NotFound if it does not exist.
	GetDatabase(ctx context.Context, id string) (*schema.Database, error)

	// ListDatabases returns every registered database.
	ListDatabases(ctx context.Context) ([]schema.Database, error)

	// UpdateStatus transitions a database's lifecycle status and, when
	// transitioning to Connected, stamps LastAnalyzed.
	UpdateStatus(ctx context.Context, id string, status schema.DatabaseStatus) error

	// ReplaceSchema atomically replaces the stored tables, columns, and
	// relationships for databaseID with full, then records a snapshot.
	// If full's canonical hash matches the most recent snapshot's hash, no
	// new snapshot is appended and changed is false — re-analyzing an
	// unchanged database must not grow the snapshot history.
	ReplaceSchema(ctx context.Context, databaseID string, full schema.FullSchema) (snapshot *schema.SchemaSnapshot, changed bool, err error)

	// GetTables returns every table captured for databaseID.
	GetTables(ctx context.Context, databaseID string) ([]schema.Table, error)

	// GetColumns returns the columns of one table.
	GetColumns(ctx context.Context, databaseID, schemaName, tableName string) ([]schema.Column, error)

	// GetRelationships returns every relationship captured for databaseID.
	GetRelationships(ctx context.Context, databaseID string) ([]schema.Relationship, error)

	// LatestSnapshot returns the most recently recorded snapshot for
	// databaseID, or apperr.NotFound if the database has never been
	// analyzed.
	LatestSnapshot(ctx context.Context, databaseID string) (*schema.SchemaSnapshot, error)

	// SnapshotDiff compares the two most recent snapshots for databaseID
	// and categorizes what tables were added, removed, or modified.
	SnapshotDiff(ctx context.Context, databaseID string) (*schema.SnapshotDiff, error)
}
