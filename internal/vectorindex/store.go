// Copyright (c) 2026 SQLSage. All rights reserved.

package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgvectorpgx "github.com/pgvector/pgvector-go/pgx"

	"github.com/sqlsage/sqlsage/internal/catalogschema"
	"github.com/sqlsage/sqlsage/internal/platform/dberr"
)

// Store persists embedded [Item]s per database and answers nearest-neighbor
// searches against them. One logical collection per database lives in the
// same `vec_items` table, partitioned by database_id.
type Store interface {
	// ReplaceKind atomically swaps every item of the given kind for
	// databaseID, used when re-indexing tables/columns/relationships after a
	// schema change.
	ReplaceKind(ctx context.Context, databaseID string, kind Kind, items []Item) error
	// Append adds items without touching existing rows, used to accumulate
	// accepted (query, sql) pairs over time.
	Append(ctx context.Context, databaseID string, items []Item) error
	// Search returns the k nearest items to vector across all kinds.
	Search(ctx context.Context, databaseID string, vector []float32, k int) ([]Hit, error)
	// Count returns the total number of indexed items for databaseID, used
	// to compute the retrieval policy's k = min(contextK, indexSize).
	Count(ctx context.Context, databaseID string) (int, error)
}

// RegisterPgvectorTypes registers pgvector's wire types on conn. It must run
// once per physical connection, typically as a [pgxpool.Config.AfterConnect]
// hook on the catalog pool that hosts `vec_items`.
func RegisterPgvectorTypes(ctx context.Context, conn *pgx.Conn) error {
	return pgvectorpgx.RegisterTypes(ctx, conn)
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds a [Store] backed by pgvector over pool. pool must
// have [RegisterPgvectorTypes] wired into its AfterConnect hook.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) ReplaceKind(ctx context.Context, databaseID string, kind Kind, items []Item) error {
	t := catalogschema.VecItemsTable

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "vectorindex_replace_begin")
	}
	defer tx.Rollback(ctx)

	deleteSQL := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.Name, t.DatabaseID, t.Kind)
	if _, err := tx.Exec(ctx, deleteSQL, databaseID, string(kind)); err != nil {
		return dberr.Wrap(err, "vectorindex_replace_delete")
	}

	insertSQL := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		t.Name, t.DatabaseID, t.Kind, t.Identity, t.Metadata, t.Embedding,
	)
	for _, item := range items {
		if _, err := tx.Exec(ctx, insertSQL, databaseID, string(kind), item.Identity, item.Metadata, pgvector.NewVector(item.Embedding)); err != nil {
			return dberr.Wrap(err, "vectorindex_replace_insert")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "vectorindex_replace_commit")
	}
	return nil
}

func (s *postgresStore) Append(ctx context.Context, databaseID string, items []Item) error {
	t := catalogschema.VecItemsTable
	insertSQL := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		t.Name, t.DatabaseID, t.Kind, t.Identity, t.Metadata, t.Embedding,
	)
	for _, item := range items {
		if _, err := s.pool.Exec(ctx, insertSQL, databaseID, string(item.Kind), item.Identity, item.Metadata, pgvector.NewVector(item.Embedding)); err != nil {
			return dberr.Wrap(err, "vectorindex_append")
		}
	}
	return nil
}

func (s *postgresStore) Search(ctx context.Context, databaseID string, vector []float32, k int) ([]Hit, error) {
	t := catalogschema.VecItemsTable
	querySQL := fmt.Sprintf(
		`SELECT %s, %s, %s, %s <=> $1 AS distance
		 FROM %s
		 WHERE %s = $2
		 ORDER BY distance ASC
		 LIMIT $3`,
		t.Kind, t.Identity, t.Metadata, t.Embedding, t.Name, t.DatabaseID,
	)
	rows, err := s.pool.Query(ctx, querySQL, pgvector.NewVector(vector), databaseID, k)
	if err != nil {
		return nil, dberr.Wrap(err, "vectorindex_search")
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var kind string
		if err := rows.Scan(&kind, &h.Identity, &h.Metadata, &h.Distance); err != nil {
			return nil, dberr.Wrap(err, "vectorindex_search_scan")
		}
		h.Kind = Kind(kind)
		hits = append(hits, h)
	}
	return hits, dberr.Wrap(rows.Err(), "vectorindex_search_rows")
}

func (s *postgresStore) Count(ctx context.Context, databaseID string) (int, error) {
	t := catalogschema.VecItemsTable
	countSQL := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, t.Name, t.DatabaseID)
	var n int
	if err := s.pool.QueryRow(ctx, countSQL, databaseID).Scan(&n); err != nil {
		return 0, dberr.Wrap(err, "vectorindex_count")
	}
	return n, nil
}
