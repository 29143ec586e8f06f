// Copyright (c) 2026 SQLSage. All rights reserved.

package safety_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsage/sqlsage/internal/safety"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want safety.Operation
	}{
		{"select", "SELECT * FROM users", safety.OpSelect},
		{"count", "SELECT COUNT(*) FROM users", safety.OpSelect},
		{"insert", "INSERT INTO users (name) VALUES ('a')", safety.OpInsert},
		{"update", "UPDATE users SET name = 'a'", safety.OpUpdate},
		{"delete", "DELETE FROM users", safety.OpDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := safety.Classify(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestDetectInjection(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		wantEmpty bool
	}{
		{"clean select", "SELECT * FROM users WHERE id = 1", true},
		{"statement chaining", "SELECT 1; DROP TABLE users", false},
		{"classic injection", "'; DROP TABLE users; --", false},
		{"tautology", "SELECT * FROM users WHERE 1=1 OR 1=1", false},
		{"union select", "SELECT id FROM a UNION SELECT id FROM b", false},
		{"sleep", "SELECT SLEEP(5)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := safety.DetectInjection(tt.sql)
			if tt.wantEmpty {
				assert.Empty(t, hits)
			} else {
				assert.NotEmpty(t, hits)
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	v := safety.New(safety.DefaultLimits())

	ok, reason := v.Validate("SELECT COUNT(*) FROM users")
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = v.Validate("SELECT 1; DROP TABLE users")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	ok, _ = v.Validate("DELETE FROM users")
	assert.False(t, ok, "delete is not in the default allowed_ops = {select}")
}

func TestValidator_ValidateNaturalLanguage(t *testing.T) {
	v := safety.New(safety.DefaultLimits())

	assert.NoError(t, v.ValidateNaturalLanguage("kaç kullanıcı var"))
	assert.Error(t, v.ValidateNaturalLanguage(""))
	assert.Error(t, v.ValidateNaturalLanguage("'; DROP TABLE users; --"))
}

func TestValidateIdentifier(t *testing.T) {
	assert.True(t, safety.ValidateIdentifier("users"))
	assert.True(t, safety.ValidateIdentifier("created_at"))
	assert.False(t, safety.ValidateIdentifier("select"))
	assert.False(t, safety.ValidateIdentifier("1users"))
	assert.False(t, safety.ValidateIdentifier(""))
}
