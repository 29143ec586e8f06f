// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package safety implements the SQL Safety Validator (C1): operation
classification, identifier validation, and injection detection.

Classification is AST-based via pganalyze/pg_query_go, grounded on the
PostgreSQL-parser usage pattern in the example corpus's schema-diffing
tooling. Injection detection is regex-based, grounded verbatim on the
distilled system's original Python validator (original_source/backend/app/
utils/sql_validator.py): the same signal set is ported as-is rather than
redesigned, since spec.md §4.1 already enumerates the identical signals.

Natural-language input is scanned with the same injection signals before any
language-model call — a match rejects immediately, never reaching C8.
*/
package safety

import (
	"fmt"
	"regexp"
	"strings"

	pgquery "github.com/pganalyze/pg_query_go/v6"

	"github.com/sqlsage/sqlsage/internal/platform/apperr"
)

// Operation is the coarse classification of a SQL statement.
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpOther  Operation = "other"
)

// Limits bounds input length, per spec.md §4.1.
type Limits struct {
	MaxSQLLength    int
	MaxPromptLength int
}

// DefaultLimits matches spec.md §4.1's defaults.
func DefaultLimits() Limits {
	return Limits{MaxSQLLength: 100_000, MaxPromptLength: 1_000}
}

// Validator is the stateless C1 safety gate. It holds no per-call state and
// is safe for concurrent use by every C9 Query Builder invocation.
type Validator struct {
	limits       Limits
	allowedOps   map[Operation]bool
}

// New constructs a Validator. allowedOps defaults to {select} if empty, per
// spec.md §4.1's "default allowed_ops = {select}".
func New(limits Limits, allowedOps ...Operation) *Validator {
	if len(allowedOps) == 0 {
		allowedOps = []Operation{OpSelect}
	}
	allowed := make(map[Operation]bool, len(allowedOps))
	for _, op := range allowedOps {
		allowed[op] = true
	}
	return &Validator{limits: limits, allowedOps: allowed}
}

// Classify determines the coarse operation kind of a single SQL statement
// via AST parsing. The first statement's top-level node determines the
// result; callers validating multi-statement input should already have
// rejected it via [DetectInjection]'s statement-chaining signal.
func Classify(sql string) (Operation, error) {
	result, err := pgquery.Parse(sql)
	if err != nil {
		return OpOther, fmt.Errorf("safety: parse failed: %w", err)
	}
	if len(result.Stmts) == 0 {
		return OpOther, fmt.Errorf("safety: no statements found")
	}

	switch result.Stmts[0].Stmt.Node.(type) {
	case *pgquery.Node_SelectStmt:
		return OpSelect, nil
	case *pgquery.Node_InsertStmt:
		return OpInsert, nil
	case *pgquery.Node_UpdateStmt:
		return OpUpdate, nil
	case *pgquery.Node_DeleteStmt:
		return OpDelete, nil
	default:
		return OpOther, nil
	}
}

// Validate runs the full C1 gate over sql against the Validator's allowed
// operation set and length limit, returning a reason string on rejection.
func (v *Validator) Validate(sql string) (ok bool, reason string) {
	if len(sql) > v.limits.MaxSQLLength {
		return false, fmt.Sprintf("SQL exceeds maximum length of %d characters", v.limits.MaxSQLLength)
	}

	if hits := DetectInjection(sql); len(hits) > 0 {
		return false, fmt.Sprintf("injection signal detected: %s", hits[0])
	}

	op, err := Classify(sql)
	if err != nil {
		return false, err.Error()
	}
	if !v.allowedOps[op] {
		return false, fmt.Sprintf("operation %q is not permitted", op)
	}

	return true, ""
}

// ValidateNaturalLanguage scans free-form caller text for the same
// injection signals used against generated SQL, before any language-model
// call is made. It also enforces the prompt length limit.
func (v *Validator) ValidateNaturalLanguage(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.InvalidInput("query text must not be empty")
	}
	if len(text) > v.limits.MaxPromptLength {
		return apperr.InvalidInput(fmt.Sprintf("query text exceeds maximum length of %d characters", v.limits.MaxPromptLength))
	}
	if hits := DetectInjection(text); len(hits) > 0 {
		return apperr.InvalidInput(fmt.Sprintf("query text contains a disallowed pattern: %s", hits[0]))
	}
	return nil
}

// ValidateSQL runs the full gate and returns an [apperr.AppError] directly,
// for callers (C9 step 8) that just need the transport-facing error.
func (v *Validator) ValidateSQL(sql string) error {
	ok, reason := v.Validate(sql)
	if !ok {
		return apperr.UnsafeSQL(reason)
	}
	return nil
}

// # Identifier Validation

var (
	identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// reservedKeywords is a non-exhaustive set of SQL keywords that must
	// never validate as identifiers, matching the original validator's
	// keyword blocklist.
	reservedKeywords = map[string]bool{
		"select": true, "insert": true, "update": true, "delete": true,
		"drop": true, "truncate": true, "alter": true, "create": true,
		"grant": true, "revoke": true, "union": true, "where": true,
		"from": true, "table": true, "exec": true, "execute": true,
	}
)

const maxIdentifierLength = 63

// ValidateIdentifier reports whether name is a safe SQL identifier: matches
// `[A-Za-z_][A-Za-z0-9_]*`, length ≤ 63, and is not a reserved keyword.
func ValidateIdentifier(name string) bool {
	if len(name) == 0 || len(name) > maxIdentifierLength {
		return false
	}
	if !identifierRegex.MatchString(name) {
		return false
	}
	return !reservedKeywords[strings.ToLower(name)]
}
