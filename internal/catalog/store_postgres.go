// Copyright (c) 2026 SQLSage. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlsage/sqlsage/internal/catalogschema"
	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/platform/dberr"
	"github.com/sqlsage/sqlsage/internal/schema"
	"github.com/sqlsage/sqlsage/pkg/uuidv7"
)

// postgresStore implements [Store] over SQLSage's own catalog database.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a catalog Store backed by pool, which must
// point at SQLSage's own catalog database, never a target database.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) PutDatabase(ctx context.Context, database schema.Database) error {
	t := catalogschema.DatabasesTable
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s
	`, t.Name, t.ID, t.Host, t.Port, t.DatabaseName, t.Username, t.SSLMode, t.Status,
		t.ID,
		t.Host, t.Host, t.Port, t.Port, t.DatabaseName, t.DatabaseName,
		t.Username, t.Username, t.SSLMode, t.SSLMode, t.Status, t.Status)

	_, err := s.pool.Exec(ctx, query,
		database.ID, database.Connection.Host, database.Connection.Port,
		database.Connection.Database, database.Connection.Username,
		string(database.Connection.SSLMode), string(database.Status),
	)
	return dberr.Wrap(err, "put_database")
}

func (s *postgresStore) GetDatabase(ctx context.Context, id string) (*schema.Database, error) {
	t := catalogschema.DatabasesTable
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1
	`, t.ID, t.Host, t.Port, t.DatabaseName, t.Username, t.SSLMode, t.Status, t.LastAnalyzedAt, t.Name, t.ID)

	var db schema.Database
	var sslMode, status string
	var lastAnalyzed *time.Time
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&db.ID, &db.Connection.Host, &db.Connection.Port, &db.Connection.Database,
		&db.Connection.Username, &sslMode, &status, &lastAnalyzed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("database")
		}
		return nil, dberr.Wrap(err, "get_database")
	}
	db.Connection.SSLMode = schema.SSLMode(sslMode)
	db.Status = schema.DatabaseStatus(status)
	db.LastAnalyzed = lastAnalyzed
	return &db, nil
}

func (s *postgresStore) ListDatabases(ctx context.Context) ([]schema.Database, error) {
	t := catalogschema.DatabasesTable
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s ORDER BY %s
	`, t.ID, t.Host, t.Port, t.DatabaseName, t.Username, t.SSLMode, t.Status, t.LastAnalyzedAt, t.Name, t.CreatedAt)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_databases")
	}
	defer rows.Close()

	var out []schema.Database
	for rows.Next() {
		var db schema.Database
		var sslMode, status string
		var lastAnalyzed *time.Time
		if err := rows.Scan(&db.ID, &db.Connection.Host, &db.Connection.Port, &db.Connection.Database,
			&db.Connection.Username, &sslMode, &status, &lastAnalyzed); err != nil {
			return nil, dberr.Wrap(err, "list_databases")
		}
		db.Connection.SSLMode = schema.SSLMode(sslMode)
		db.Status = schema.DatabaseStatus(status)
		db.LastAnalyzed = lastAnalyzed
		out = append(out, db)
	}
	return out, nil
}

func (s *postgresStore) UpdateStatus(ctx context.Context, id string, status schema.DatabaseStatus) error {
	t := catalogschema.DatabasesTable
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = CASE WHEN $1 = 'connected' THEN NOW() ELSE %s END WHERE %s = $2`,
		t.Name, t.Status, t.LastAnalyzedAt, t.LastAnalyzedAt, t.ID)
	result, err := s.pool.Exec(ctx, query, string(status), id)
	if err != nil {
		return dberr.Wrap(err, "update_status")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("database")
	}
	return nil
}

// ReplaceSchema atomically replaces tables/columns/relationships for
// databaseID and appends a new snapshot only if the canonical hash changed.
func (s *postgresStore) ReplaceSchema(ctx context.Context, databaseID string, full schema.FullSchema) (*schema.SchemaSnapshot, bool, error) {
	hash, payload, err := snapshotHash(full)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.LatestSnapshot(ctx, databaseID)
	if err != nil && !dberr.IsNotFound(err) {
		return nil, false, err
	}
	if existing != nil && existing.Hash == hash {
		return existing, false, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, dberr.Wrap(err, "replace_schema_begin")
	}
	defer tx.Rollback(ctx)

	tt, ct, rt, st := catalogschema.TablesTable, catalogschema.ColumnsTable, catalogschema.RelationshipsTable, catalogschema.SnapshotsTable

	clearColumns := fmt.Sprintf(`DELETE FROM %s WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)`,
		ct.Name, ct.TableID, tt.ID, tt.Name, tt.DatabaseID)
	if _, err := tx.Exec(ctx, clearColumns, databaseID); err != nil {
		return nil, false, dberr.Wrap(err, "replace_schema_clear_columns")
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, rt.Name, rt.DatabaseID), databaseID); err != nil {
		return nil, false, dberr.Wrap(err, "replace_schema_clear_relationships")
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, tt.Name, tt.DatabaseID), databaseID); err != nil {
		return nil, false, dberr.Wrap(err, "replace_schema_clear_tables")
	}

	insertTable := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tt.Name, tt.ID, tt.DatabaseID, tt.SchemaName, tt.TableName, tt.RowEstimate, tt.ByteSize, tt.HasPrimaryKey, tt.ImportanceScore)

	insertColumn := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, ct.Name, ct.ID, ct.TableID, ct.ColumnName, ct.DataType, ct.Nullable, ct.DefaultExpr,
		ct.IsPrimaryKey, ct.IsForeignKey, ct.IsUnique, ct.OrdinalPosition)

	for _, table := range full.Tables {
		tableID := uuidv7.New()
		if _, err := tx.Exec(ctx, insertTable, tableID, databaseID, table.Schema, table.Name,
			table.RowEstimate, table.ByteSize, table.HasPrimaryKey, table.ImportanceScore); err != nil {
			return nil, false, dberr.Wrap(err, "replace_schema_insert_table")
		}
		for _, column := range table.Columns {
			if _, err := tx.Exec(ctx, insertColumn, uuidv7.New(), tableID, column.Name, column.DataType,
				column.Nullable, column.DefaultExpr, column.IsPrimaryKey, column.IsForeignKey,
				column.IsUnique, column.OrdinalPosition); err != nil {
				return nil, false, dberr.Wrap(err, "replace_schema_insert_column")
			}
		}
	}

	insertRel := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rt.Name, rt.ID, rt.DatabaseID, rt.FromSchema, rt.FromTable, rt.FromColumn,
		rt.ToSchema, rt.ToTable, rt.ToColumn, rt.Kind, rt.OnDelete, rt.OnUpdate)

	for _, rel := range full.Relationships {
		if _, err := tx.Exec(ctx, insertRel, uuidv7.New(), databaseID,
			rel.From.Schema, rel.From.Table, rel.From.Column,
			rel.To.Schema, rel.To.Table, rel.To.Column,
			string(rel.Kind), rel.OnDelete, rel.OnUpdate); err != nil {
			return nil, false, dberr.Wrap(err, "replace_schema_insert_relationship")
		}
	}

	snapshotID := uuidv7.New()
	insertSnapshot := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) RETURNING %s`,
		st.Name, st.ID, st.DatabaseID, st.Hash, st.FullSchema, st.CreatedAt)
	var createdAt time.Time
	if err := tx.QueryRow(ctx, insertSnapshot, snapshotID, databaseID, hash, payload).Scan(&createdAt); err != nil {
		return nil, false, dberr.Wrap(err, "replace_schema_insert_snapshot")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, dberr.Wrap(err, "replace_schema_commit")
	}

	return &schema.SchemaSnapshot{Database: databaseID, Hash: hash, Full: full, CreatedAt: createdAt}, true, nil
}

func (s *postgresStore) GetTables(ctx context.Context, databaseID string) ([]schema.Table, error) {
	tt, ct := catalogschema.TablesTable, catalogschema.ColumnsTable
	query := fmt.Sprintf(`
		SELECT t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s
		FROM %s t WHERE t.%s = $1 ORDER BY t.%s, t.%s
	`, tt.ID, tt.SchemaName, tt.TableName, tt.RowEstimate, tt.ByteSize, tt.HasPrimaryKey, tt.ImportanceScore,
		tt.Name, tt.DatabaseID, tt.SchemaName, tt.TableName)

	rows, err := s.pool.Query(ctx, query, databaseID)
	if err != nil {
		return nil, dberr.Wrap(err, "get_tables")
	}
	defer rows.Close()

	type tableRow struct {
		id string
		schema.Table
	}
	var tables []tableRow
	for rows.Next() {
		var tr tableRow
		if err := rows.Scan(&tr.id, &tr.Schema, &tr.Name, &tr.RowEstimate, &tr.ByteSize, &tr.HasPrimaryKey, &tr.ImportanceScore); err != nil {
			return nil, dberr.Wrap(err, "get_tables")
		}
		tables = append(tables, tr)
	}
	rows.Close()

	columnQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1 ORDER BY %s
	`, ct.TableID, ct.ColumnName, ct.DataType, ct.Nullable, ct.DefaultExpr,
		ct.IsPrimaryKey, ct.IsForeignKey, ct.IsUnique, ct.OrdinalPosition,
		ct.Name, ct.TableID, ct.OrdinalPosition)

	result := make([]schema.Table, 0, len(tables))
	for _, tr := range tables {
		colRows, err := s.pool.Query(ctx, columnQuery, tr.id)
		if err != nil {
			return nil, dberr.Wrap(err, "get_tables_columns")
		}
		var columns []schema.Column
		for colRows.Next() {
			var col schema.Column
			var tableID string
			if err := colRows.Scan(&tableID, &col.Name, &col.DataType, &col.Nullable, &col.DefaultExpr,
				&col.IsPrimaryKey, &col.IsForeignKey, &col.IsUnique, &col.OrdinalPosition); err != nil {
				colRows.Close()
				return nil, dberr.Wrap(err, "get_tables_columns")
			}
			col.Table = tr.Name
			columns = append(columns, col)
		}
		colRows.Close()
		table := tr.Table
		table.Columns = columns
		result = append(result, table)
	}

	return result, nil
}

func (s *postgresStore) GetColumns(ctx context.Context, databaseID, schemaName, tableName string) ([]schema.Column, error) {
	tt, ct := catalogschema.TablesTable, catalogschema.ColumnsTable
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s
		FROM %s c
		JOIN %s t ON t.%s = c.%s
		WHERE t.%s = $1 AND t.%s = $2 AND t.%s = $3
		ORDER BY c.%s
	`, ct.ColumnName, ct.DataType, ct.Nullable, ct.DefaultExpr, ct.IsPrimaryKey, ct.IsForeignKey, ct.IsUnique, ct.OrdinalPosition,
		ct.Name, tt.Name, tt.ID, ct.TableID, tt.DatabaseID, tt.SchemaName, tt.TableName, ct.OrdinalPosition)

	rows, err := s.pool.Query(ctx, query, databaseID, schemaName, tableName)
	if err != nil {
		return nil, dberr.Wrap(err, "get_columns")
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.DefaultExpr,
			&col.IsPrimaryKey, &col.IsForeignKey, &col.IsUnique, &col.OrdinalPosition); err != nil {
			return nil, dberr.Wrap(err, "get_columns")
		}
		col.Table = tableName
		columns = append(columns, col)
	}
	return columns, nil
}

func (s *postgresStore) GetRelationships(ctx context.Context, databaseID string) ([]schema.Relationship, error) {
	rt := catalogschema.RelationshipsTable
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1
	`, rt.FromSchema, rt.FromTable, rt.FromColumn, rt.ToSchema, rt.ToTable, rt.ToColumn, rt.Kind, rt.OnDelete, rt.OnUpdate,
		rt.Name, rt.DatabaseID)

	rows, err := s.pool.Query(ctx, query, databaseID)
	if err != nil {
		return nil, dberr.Wrap(err, "get_relationships")
	}
	defer rows.Close()

	var rels []schema.Relationship
	for rows.Next() {
		var rel schema.Relationship
		var kind string
		if err := rows.Scan(&rel.From.Schema, &rel.From.Table, &rel.From.Column,
			&rel.To.Schema, &rel.To.Table, &rel.To.Column, &kind, &rel.OnDelete, &rel.OnUpdate); err != nil {
			return nil, dberr.Wrap(err, "get_relationships")
		}
		rel.Kind = schema.RelationshipKind(kind)
		rel.IsInferred = rel.Kind == schema.RelationshipInferred
		rels = append(rels, rel)
	}
	return rels, nil
}

func (s *postgresStore) LatestSnapshot(ctx context.Context, databaseID string) (*schema.SchemaSnapshot, error) {
	st := catalogschema.SnapshotsTable
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT 1
	`, st.Hash, st.FullSchema, st.CreatedAt, st.Name, st.DatabaseID, st.CreatedAt)

	var hash string
	var payload []byte
	var createdAt time.Time
	err := s.pool.QueryRow(ctx, query, databaseID).Scan(&hash, &payload, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("schema_snapshot")
		}
		return nil, dberr.Wrap(err, "latest_snapshot")
	}

	var full schema.FullSchema
	if err := json.Unmarshal(payload, &full); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal snapshot payload: %w", err)
	}

	return &schema.SchemaSnapshot{Database: databaseID, Hash: hash, Full: full, CreatedAt: createdAt}, nil
}

// SnapshotDiff compares the two most recent snapshots for databaseID at the
// table level: a table present in only the newer snapshot is Added, present
// in only the older is Removed, present in both with a different column set
// is Modified.
func (s *postgresStore) SnapshotDiff(ctx context.Context, databaseID string) (*schema.SnapshotDiff, error) {
	st := catalogschema.SnapshotsTable
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT 2
	`, st.FullSchema, st.Name, st.DatabaseID, st.CreatedAt)

	rows, err := s.pool.Query(ctx, query, databaseID)
	if err != nil {
		return nil, dberr.Wrap(err, "snapshot_diff")
	}
	var payloads [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			rows.Close()
			return nil, dberr.Wrap(err, "snapshot_diff")
		}
		payloads = append(payloads, payload)
	}
	rows.Close()

	if len(payloads) == 0 {
		return nil, apperr.NotFound("schema_snapshot")
	}
	if len(payloads) == 1 {
		var current schema.FullSchema
		if err := json.Unmarshal(payloads[0], &current); err != nil {
			return nil, fmt.Errorf("catalog: unmarshal snapshot payload: %w", err)
		}
		added := make([]string, 0, len(current.Tables))
		for _, t := range current.Tables {
			added = append(added, t.Schema+"."+t.Name)
		}
		return &schema.SnapshotDiff{Added: added}, nil
	}

	var newer, older schema.FullSchema
	if err := json.Unmarshal(payloads[0], &newer); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal snapshot payload: %w", err)
	}
	if err := json.Unmarshal(payloads[1], &older); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal snapshot payload: %w", err)
	}

	return diffSchemas(older, newer), nil
}

// diffSchemas compares two FullSchema values table-by-table.
func diffSchemas(older, newer schema.FullSchema) *schema.SnapshotDiff {
	newerByKey := make(map[string]schema.Table, len(newer.Tables))
	for _, t := range newer.Tables {
		newerByKey[t.Schema+"."+t.Name] = t
	}
	olderByKey := make(map[string]schema.Table, len(older.Tables))
	for _, t := range older.Tables {
		olderByKey[t.Schema+"."+t.Name] = t
	}

	diff := &schema.SnapshotDiff{}
	for key, newTable := range newerByKey {
		oldTable, existed := olderByKey[key]
		if !existed {
			diff.Added = append(diff.Added, key)
			continue
		}
		if !sameColumns(oldTable.Columns, newTable.Columns) {
			diff.Modified = append(diff.Modified, key)
		}
	}
	for key := range olderByKey {
		if _, stillPresent := newerByKey[key]; !stillPresent {
			diff.Removed = append(diff.Removed, key)
		}
	}
	return diff
}

func sameColumns(a, b []schema.Column) bool {
	if len(a) != len(b) {
		return false
	}
	byName := make(map[string]schema.Column, len(a))
	for _, c := range a {
		byName[c.Name] = c
	}
	for _, c := range b {
		prev, ok := byName[c.Name]
		if !ok || prev.DataType != c.DataType || prev.Nullable != c.Nullable {
			return false
		}
	}
	return true
}
