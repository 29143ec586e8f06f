// Copyright (c) 2026 SQLSage. All rights reserved.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/schema"
)

func sampleFullSchema() schema.FullSchema {
	return schema.FullSchema{
		Schemas: []schema.Schema{{Name: "public"}},
		Tables: []schema.Table{
			{
				Schema: "public", Name: "orders", RowEstimate: 10,
				Columns: []schema.Column{
					{Name: "id", DataType: "uuid", OrdinalPosition: 1, IsPrimaryKey: true},
					{Name: "customer_id", DataType: "uuid", OrdinalPosition: 2},
				},
			},
		},
		Relationships: []schema.Relationship{
			{
				From: schema.Endpoint{Schema: "public", Table: "orders", Column: "customer_id"},
				To:   schema.Endpoint{Schema: "public", Table: "customers", Column: "id"},
				Kind: schema.RelationshipForeignKey,
			},
		},
	}
}

func TestSnapshotHash_Deterministic(t *testing.T) {
	full := sampleFullSchema()

	hash1, _, err := snapshotHash(full)
	assert.NoError(t, err)

	// Shuffle slice order — the hash must be invariant to row order since
	// information_schema gives no ordering guarantee across introspections.
	reordered := full
	reordered.Tables = []schema.Table{full.Tables[0]}
	reordered.Tables[0].Columns = []schema.Column{full.Tables[0].Columns[1], full.Tables[0].Columns[0]}

	hash2, _, err := snapshotHash(reordered)
	assert.NoError(t, err)
	assert.Equal(t, hash1, hash2, "reordering columns must not change the hash")

	full.Tables[0].RowEstimate = 999
	hash3, _, err := snapshotHash(full)
	assert.NoError(t, err)
	assert.NotEqual(t, hash1, hash3, "changed row estimate must change the hash")
}

func TestDiffSchemas(t *testing.T) {
	older := sampleFullSchema()
	newer := sampleFullSchema()
	newer.Tables = append(newer.Tables, schema.Table{Schema: "public", Name: "products"})
	newer.Tables[0].Columns = append(newer.Tables[0].Columns, schema.Column{Name: "status", DataType: "text", OrdinalPosition: 3})

	diff := diffSchemas(older, newer)
	assert.Contains(t, diff.Added, "public.products")
	assert.Contains(t, diff.Modified, "public.orders")
	assert.Empty(t, diff.Removed)
}

func TestImportanceScore(t *testing.T) {
	small := importanceScore(schema.Table{HasPrimaryKey: false, RowEstimate: 0}, 0)
	large := importanceScore(schema.Table{HasPrimaryKey: true, RowEstimate: 1_000_000}, 4)

	assert.Less(t, small, large)
	assert.LessOrEqual(t, large, 1.0)
	assert.GreaterOrEqual(t, small, 0.0)
}
