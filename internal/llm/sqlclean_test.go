// Copyright (c) 2026 SQLSage. All rights reserved.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSQL_StripsMarkdownFence(t *testing.T) {
	got := CleanSQL("```sql\nSELECT * FROM orders;\n```")
	assert.Equal(t, "SELECT * FROM orders;", got)
}

func TestCleanSQL_StripsXMLTags(t *testing.T) {
	got := CleanSQL("<sql>SELECT * FROM orders;</sql>")
	assert.Equal(t, "SELECT * FROM orders;", got)
}

func TestCleanSQL_StripsPrefixArtefact(t *testing.T) {
	got := CleanSQL("SQL: SELECT * FROM orders;")
	assert.Equal(t, "SELECT * FROM orders;", got)
}

func TestCleanSQL_StripsLeadingComment(t *testing.T) {
	got := CleanSQL("-- this is a comment\nSELECT * FROM orders;")
	assert.Equal(t, "SELECT * FROM orders;", got)
}

func TestCleanSQL_RetainsOnlyFirstStatement(t *testing.T) {
	got := CleanSQL("SELECT * FROM orders; DROP TABLE orders;")
	assert.Equal(t, "SELECT * FROM orders;", got)
}

func TestCleanSQL_NoSemicolonReturnsWholeTrimmedBody(t *testing.T) {
	got := CleanSQL("  SELECT * FROM orders  ")
	assert.Equal(t, "SELECT * FROM orders", got)
}
