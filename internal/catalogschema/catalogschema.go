// Copyright (c) 2026 SQLSage. All rights reserved.

// Package catalogschema centralizes table and column name constants for
// SQLSage's own catalog database — the bookkeeping store for the database
// registry, introspected schema, snapshots, query history, learning
// records, and cache entries (spec.md §6 "Persisted state layout").
//
// Hand-written SQL throughout internal/catalog, internal/learning,
// internal/executor, and internal/vectorindex references these constants instead of repeating raw
// column-name string literals, mirroring the teacher's
// internal/platform/database/schema package.
package catalogschema

// DatabasesTable is the registry of target databases.
var DatabasesTable = struct {
	Name             string
	ID               string
	Host             string
	Port             string
	DatabaseName     string
	Username         string
	SSLMode          string
	Status           string
	LastAnalyzedAt   string
	CreatedAt        string
}{
	Name:           "sqlsage_databases",
	ID:             "id",
	Host:           "host",
	Port:           "port",
	DatabaseName:   "database_name",
	Username:       "username",
	SSLMode:        "ssl_mode",
	Status:         "status",
	LastAnalyzedAt: "last_analyzed_at",
	CreatedAt:      "created_at",
}

// TablesTable holds one row per introspected table.
var TablesTable = struct {
	Name            string
	ID              string
	DatabaseID      string
	SchemaName      string
	TableName       string
	RowEstimate     string
	ByteSize        string
	HasPrimaryKey   string
	ImportanceScore string
}{
	Name:            "sqlsage_tables",
	ID:              "id",
	DatabaseID:      "database_id",
	SchemaName:      "schema_name",
	TableName:       "table_name",
	RowEstimate:     "row_estimate",
	ByteSize:        "byte_size",
	HasPrimaryKey:   "has_primary_key",
	ImportanceScore: "importance_score",
}

// ColumnsTable holds one row per introspected column.
var ColumnsTable = struct {
	Name            string
	ID              string
	TableID         string
	ColumnName      string
	DataType        string
	Nullable        string
	DefaultExpr     string
	IsPrimaryKey    string
	IsForeignKey    string
	IsUnique        string
	OrdinalPosition string
}{
	Name:            "sqlsage_columns",
	ID:              "id",
	TableID:         "table_id",
	ColumnName:      "column_name",
	DataType:        "data_type",
	Nullable:        "nullable",
	DefaultExpr:     "default_expr",
	IsPrimaryKey:    "is_primary_key",
	IsForeignKey:    "is_foreign_key",
	IsUnique:        "is_unique",
	OrdinalPosition: "ordinal_position",
}

// RelationshipsTable holds directed foreign-key/inferred edges.
var RelationshipsTable = struct {
	Name         string
	ID           string
	DatabaseID   string
	FromSchema   string
	FromTable    string
	FromColumn   string
	ToSchema     string
	ToTable      string
	ToColumn     string
	Kind         string
	OnDelete     string
	OnUpdate     string
}{
	Name:       "sqlsage_relationships",
	ID:         "id",
	DatabaseID: "database_id",
	FromSchema: "from_schema",
	FromTable:  "from_table",
	FromColumn: "from_column",
	ToSchema:   "to_schema",
	ToTable:    "to_table",
	ToColumn:   "to_column",
	Kind:       "kind",
	OnDelete:   "on_delete",
	OnUpdate:   "on_update",
}

// SnapshotsTable holds append-only schema snapshots.
var SnapshotsTable = struct {
	Name       string
	ID         string
	DatabaseID string
	Hash       string
	FullSchema string
	CreatedAt  string
}{
	Name:       "sqlsage_snapshots",
	ID:         "id",
	DatabaseID: "database_id",
	Hash:       "hash",
	FullSchema: "full_schema",
	CreatedAt:  "created_at",
}

// QueryHistoryTable holds terminal query records for audit/replay.
var QueryHistoryTable = struct {
	Name           string
	ID             string
	DatabaseID     string
	SQL            string
	Requester      string
	State          string
	RowCount       string
	Truncated      string
	Error          string
	Confidence     string
	Interpretation string
	SubmittedAt    string
	CompletedAt    string
}{
	Name:           "sqlsage_query_history",
	ID:             "id",
	DatabaseID:     "database_id",
	SQL:            "sql",
	Requester:      "requester",
	State:          "state",
	RowCount:       "row_count",
	Truncated:      "truncated",
	Error:          "error",
	Confidence:     "confidence",
	Interpretation: "interpretation",
	SubmittedAt:    "submitted_at",
	CompletedAt:    "completed_at",
}

// LearningRecordsTable holds the per-database Adaptive Learning Store.
var LearningRecordsTable = struct {
	Name               string
	DatabaseID         string
	Vocabulary         string
	BilingualMappings  string
	Patterns           string
	Metrics            string
	UpdatedAt          string
}{
	Name:              "sqlsage_learning_records",
	DatabaseID:        "database_id",
	Vocabulary:        "vocabulary",
	BilingualMappings: "bilingual_mappings",
	Patterns:          "patterns",
	Metrics:           "metrics",
	UpdatedAt:         "updated_at",
}

// VecItemsTable is the embedding index backing the vector context index
// (C5), one logical collection per database distinguished by DatabaseID —
// named collection prefix `sqlsage_ctx_` + the first 8 characters of the
// database id.
var VecItemsTable = struct {
	Name       string
	ID         string
	DatabaseID string
	Kind       string
	Identity   string
	Metadata   string
	Embedding  string
	CreatedAt  string
}{
	Name:       "vec_items",
	ID:         "id",
	DatabaseID: "database_id",
	Kind:       "kind",
	Identity:   "identity",
	Metadata:   "metadata",
	Embedding:  "embedding",
	CreatedAt:  "created_at",
}

// CacheEntriesTable is a generic TTL cache table backing the learning
// store's durable side, mirrored in Redis as a front-cache.
var CacheEntriesTable = struct {
	Name      string
	Key       string
	Value     string
	ExpiresAt string
}{
	Name:      "sqlsage_cache_entries",
	Key:       "key",
	Value:     "value",
	ExpiresAt: "expires_at",
}
