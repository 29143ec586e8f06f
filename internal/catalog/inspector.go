// Copyright (c) 2026 SQLSage. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlsage/sqlsage/internal/schema"
)

// Inspector is the Schema Inspector (C3): it reads a target database's own
// information_schema/pg_catalog to produce a [schema.FullSchema], without
// ever writing to that database.
type Inspector struct{}

// NewInspector constructs an Inspector. It holds no state — one instance
// serves every target database.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect introspects pool's database and returns one logical snapshot of
// its schemas, tables, columns, indexes, and relationships. pool must point
// at the target database being analyzed, never at SQLSage's own catalog.
func (i *Inspector) Inspect(ctx context.Context, pool *pgxpool.Pool) (schema.FullSchema, error) {
	schemas, err := i.schemas(ctx, pool)
	if err != nil {
		return schema.FullSchema{}, fmt.Errorf("inspector: list schemas: %w", err)
	}

	tables, err := i.tables(ctx, pool)
	if err != nil {
		return schema.FullSchema{}, fmt.Errorf("inspector: list tables: %w", err)
	}

	for idx := range tables {
		columns, err := i.columns(ctx, pool, tables[idx].Schema, tables[idx].Name)
		if err != nil {
			return schema.FullSchema{}, fmt.Errorf("inspector: columns for %s.%s: %w", tables[idx].Schema, tables[idx].Name, err)
		}
		tables[idx].Columns = columns
		tables[idx].HasPrimaryKey = hasPrimaryKey(columns)

		indexes, err := i.indexes(ctx, pool, tables[idx].Schema, tables[idx].Name)
		if err != nil {
			return schema.FullSchema{}, fmt.Errorf("inspector: indexes for %s.%s: %w", tables[idx].Schema, tables[idx].Name, err)
		}
		tables[idx].Indexes = indexes
	}

	relationships, err := i.foreignKeys(ctx, pool)
	if err != nil {
		return schema.FullSchema{}, fmt.Errorf("inspector: foreign keys: %w", err)
	}

	degree := make(map[string]int, len(tables))
	for _, rel := range relationships {
		degree[rel.From.Schema+"."+rel.From.Table]++
		degree[rel.To.Schema+"."+rel.To.Table]++
	}
	for idx := range tables {
		key := tables[idx].Schema + "." + tables[idx].Name
		tables[idx].ImportanceScore = importanceScore(tables[idx], degree[key])
	}

	return schema.FullSchema{Schemas: schemas, Tables: tables, Relationships: relationships}, nil
}

// importanceScore blends primary-key presence, row volume, and join-graph
// degree into a single [0, 1] tie-breaker, used by C5/C9 when several
// candidate tables otherwise look equally plausible.
func importanceScore(t schema.Table, relDegree int) float64 {
	score := 0.2
	if t.HasPrimaryKey {
		score += 0.2
	}
	if t.RowEstimate > 0 {
		score += 0.3 * math.Min(1.0, math.Log10(float64(t.RowEstimate)+1)/6.0)
	}
	score += 0.3 * math.Min(1.0, float64(relDegree)/5.0)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func hasPrimaryKey(columns []schema.Column) bool {
	for _, c := range columns {
		if c.IsPrimaryKey {
			return true
		}
	}
	return false
}

// schemas lists user-facing schemas, excluding PostgreSQL's own internal
// namespaces.
func (i *Inspector) schemas(ctx context.Context, pool *pgxpool.Pool) ([]schema.Schema, error) {
	rows, err := pool.Query(ctx, `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT LIKE 'pg\_%'
		AND schema_name NOT IN ('information_schema')
		ORDER BY schema_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Schema
	for rows.Next() {
		var s schema.Schema
		if err := rows.Scan(&s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// tables lists base tables with a row-count estimate from pg_class's
// planner statistics (reltuples) and their on-disk size, avoiding an
// expensive COUNT(*) per table.
func (i *Inspector) tables(ctx context.Context, pool *pgxpool.Pool) ([]schema.Table, error) {
	rows, err := pool.Query(ctx, `
		SELECT n.nspname, c.relname,
		       GREATEST(c.reltuples, 0)::bigint AS row_estimate,
		       pg_total_relation_size(c.oid) AS byte_size
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p')
		AND n.nspname NOT LIKE 'pg\_%'
		AND n.nspname NOT IN ('information_schema')
		ORDER BY n.nspname, c.relname
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Table
	for rows.Next() {
		var t schema.Table
		if err := rows.Scan(&t.Schema, &t.Name, &t.RowEstimate, &t.ByteSize); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// columns lists one table's columns in ordinal order, flagging primary-key,
// foreign-key, and unique membership inline so callers never need a second
// round trip per column.
func (i *Inspector) columns(ctx context.Context, pool *pgxpool.Pool, schemaName, tableName string) ([]schema.Column, error) {
	rows, err := pool.Query(ctx, `
		SELECT
			col.column_name,
			col.data_type,
			col.is_nullable = 'YES',
			COALESCE(col.column_default, ''),
			col.ordinal_position,
			EXISTS (
				SELECT 1 FROM information_schema.key_column_usage kcu
				JOIN information_schema.table_constraints tc
					ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
				AND kcu.table_schema = col.table_schema AND kcu.table_name = col.table_name
				AND kcu.column_name = col.column_name
			) AS is_primary_key,
			EXISTS (
				SELECT 1 FROM information_schema.key_column_usage kcu
				JOIN information_schema.table_constraints tc
					ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'FOREIGN KEY'
				AND kcu.table_schema = col.table_schema AND kcu.table_name = col.table_name
				AND kcu.column_name = col.column_name
			) AS is_foreign_key,
			EXISTS (
				SELECT 1 FROM information_schema.key_column_usage kcu
				JOIN information_schema.table_constraints tc
					ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'UNIQUE'
				AND kcu.table_schema = col.table_schema AND kcu.table_name = col.table_name
				AND kcu.column_name = col.column_name
			) AS is_unique
		FROM information_schema.columns col
		WHERE col.table_schema = $1 AND col.table_name = $2
		ORDER BY col.ordinal_position
	`, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Column
	for rows.Next() {
		var c schema.Column
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable, &c.DefaultExpr, &c.OrdinalPosition,
			&c.IsPrimaryKey, &c.IsForeignKey, &c.IsUnique); err != nil {
			return nil, err
		}
		c.Table = tableName
		out = append(out, c)
	}
	return out, rows.Err()
}

// indexes lists every index on a table, including those backing a primary
// key or unique constraint; [schema.Index.IsPrimary] and IsUnique mark them.
func (i *Inspector) indexes(ctx context.Context, pool *pgxpool.Pool, schemaName, tableName string) ([]schema.Index, error) {
	rows, err := pool.Query(ctx, `
		SELECT ix.relname AS index_name,
		       array_agg(a.attname ORDER BY array_position(idx.indkey, a.attnum)) AS columns,
		       idx.indisunique, idx.indisprimary
		FROM pg_index idx
		JOIN pg_class t ON t.oid = idx.indrelid
		JOIN pg_class ix ON ix.oid = idx.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(idx.indkey)
		WHERE n.nspname = $1 AND t.relname = $2
		GROUP BY ix.relname, idx.indisunique, idx.indisprimary
		ORDER BY ix.relname
	`, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Index
	for rows.Next() {
		var idx schema.Index
		if err := rows.Scan(&idx.Name, &idx.Columns, &idx.IsUnique, &idx.IsPrimary); err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, rows.Err()
}

// foreignKeys lists every declared foreign key across the database as a
// directed [schema.Relationship].
func (i *Inspector) foreignKeys(ctx context.Context, pool *pgxpool.Pool) ([]schema.Relationship, error) {
	rows, err := pool.Query(ctx, `
		SELECT
			tc.table_schema, tc.table_name, kcu.column_name,
			ccu.table_schema AS foreign_schema, ccu.table_name AS foreign_table, ccu.column_name AS foreign_column,
			COALESCE(rc.update_rule, ''), COALESCE(rc.delete_rule, '')
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.table_schema, tc.table_name, kcu.column_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.Relationship
	for rows.Next() {
		var rel schema.Relationship
		if err := rows.Scan(
			&rel.From.Schema, &rel.From.Table, &rel.From.Column,
			&rel.To.Schema, &rel.To.Table, &rel.To.Column,
			&rel.OnUpdate, &rel.OnDelete,
		); err != nil {
			return nil, err
		}
		rel.Kind = schema.RelationshipForeignKey
		out = append(out, rel)
	}
	return out, rows.Err()
}
