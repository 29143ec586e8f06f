// Copyright (c) 2026 SQLSage. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/sqlsage/sqlsage/internal/schema"
)

// canonicalize returns a copy of full with every slice sorted into a stable
// order, so that two introspections of an unchanged database always produce
// byte-identical JSON regardless of information_schema's row order.
func canonicalize(full schema.FullSchema) schema.FullSchema {
	schemas := append([]schema.Schema(nil), full.Schemas...)
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })

	tables := append([]schema.Table(nil), full.Tables...)
	for i := range tables {
		cols := append([]schema.Column(nil), tables[i].Columns...)
		sort.Slice(cols, func(a, b int) bool { return cols[a].OrdinalPosition < cols[b].OrdinalPosition })
		tables[i].Columns = cols

		idx := append([]schema.Index(nil), tables[i].Indexes...)
		sort.Slice(idx, func(a, b int) bool { return idx[a].Name < idx[b].Name })
		tables[i].Indexes = idx
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Schema != tables[j].Schema {
			return tables[i].Schema < tables[j].Schema
		}
		return tables[i].Name < tables[j].Name
	})

	rels := append([]schema.Relationship(nil), full.Relationships...)
	sort.Slice(rels, func(i, j int) bool {
		a, b := rels[i], rels[j]
		switch {
		case a.From.Table != b.From.Table:
			return a.From.Table < b.From.Table
		case a.From.Column != b.From.Column:
			return a.From.Column < b.From.Column
		default:
			return a.To.Table < b.To.Table
		}
	})

	return schema.FullSchema{Schemas: schemas, Tables: tables, Relationships: rels}
}

// snapshotHash computes a stable digest of full, used to detect whether a
// fresh introspection changed anything since the last snapshot.
func snapshotHash(full schema.FullSchema) (string, []byte, error) {
	canonical := canonicalize(full)
	payload, err := json.Marshal(canonical)
	if err != nil {
		return "", nil, fmt.Errorf("catalog: marshal canonical schema: %w", err)
	}
	digest := xxhash.Sum64(payload)
	return fmt.Sprintf("%016x", digest), payload, nil
}
