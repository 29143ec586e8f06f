// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package apperr defines the centralized error handling framework for SQLSage's
query intelligence pipeline.

It provides a rich error type that bridges the gap between low-level
pipeline/storage errors and the ten stable error kinds the core surfaces to
callers (spec.md §7). Every error that leaves a pipeline component (C1–C12)
should be wrapped as an [AppError]: the outermost port handler is the only
place that converts it to a transport-native response, so internal errors
never cross a package boundary unconverted.

# Security

The Cause field is for server-side logging only and is never sent to callers,
to avoid leaking internal implementation details (e.g., generated SQL).
*/
package apperr

import (
	"errors"
	"net/http"
)

// Kind is one of the ten stable, machine-readable error kinds from spec.md §7.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindSchemaUnavailable Kind = "schema_unavailable"
	KindAmbiguousQuery    Kind = "ambiguous_query"
	KindGenerationFailed  Kind = "generation_failed"
	KindUnsafeSQL         Kind = "unsafe_sql"
	KindConnectionFailed  Kind = "connection_failed"
	KindExecutionFailed   Kind = "execution_failed"
	KindCancelled         Kind = "cancelled"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal_error"
)

// httpStatusFor maps each Kind to its Query-port status code.
var httpStatusFor = map[Kind]int{
	KindInvalidInput:      http.StatusBadRequest,
	KindSchemaUnavailable: http.StatusConflict,
	KindAmbiguousQuery:    http.StatusUnprocessableEntity,
	KindGenerationFailed:  http.StatusUnprocessableEntity,
	KindUnsafeSQL:         http.StatusBadRequest,
	KindConnectionFailed:  http.StatusServiceUnavailable,
	KindExecutionFailed:   http.StatusBadGateway,
	KindCancelled:         http.StatusGone,
	KindNotFound:          http.StatusNotFound,
	KindInternal:          http.StatusInternalServerError,
}

// AppError is the canonical error type for the SQLSage pipeline.
//
// It carries an HTTP status code, a machine-readable Kind, a caller-safe
// message, and an optional slice of field-level validation errors.
type AppError struct {
	// Kind is the stable, machine-readable error kind (spec.md §7).
	Kind Kind `json:"code"`
	// Message is a human-readable description safe to return to the caller.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code for the Query port.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for invalid_input responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the caller-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// New constructs an [AppError] of the given kind with a caller-safe message.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, HTTPStatus: httpStatusFor[kind]}
}

// Wrap constructs an [AppError] of the given kind, preserving cause for logs.
func Wrap(kind Kind, message string, cause error) *AppError {
	err := New(kind, message)
	err.Cause = cause
	return err
}

// # Error Constructors

// InvalidInput creates an invalid_input [AppError], optionally with field details.
func InvalidInput(message string, details ...FieldError) *AppError {
	err := New(KindInvalidInput, message)
	err.Details = details
	return err
}

// SchemaUnavailable creates a schema_unavailable [AppError] for a database
// with no current schema snapshot.
func SchemaUnavailable(databaseID string) *AppError {
	return New(KindSchemaUnavailable, "no schema snapshot available for database "+databaseID)
}

// AmbiguousQuery creates an ambiguous_query [AppError] — multiple candidate
// interpretations exist and none clears the confidence threshold.
func AmbiguousQuery(message string) *AppError {
	return New(KindAmbiguousQuery, message)
}

// GenerationFailed creates a generation_failed [AppError] — the language
// model produced no usable SQL candidate.
func GenerationFailed(message string) *AppError {
	return New(KindGenerationFailed, message)
}

// UnsafeSQL creates an unsafe_sql [AppError] for SQL rejected by the safety validator.
func UnsafeSQL(reason string) *AppError {
	return New(KindUnsafeSQL, "SQL rejected by safety validator: "+reason)
}

// ConnectionFailed creates a connection_failed [AppError] wrapping the cause for logs.
func ConnectionFailed(cause error) *AppError {
	return Wrap(KindConnectionFailed, "could not acquire a database connection", cause)
}

// ExecutionFailed creates an execution_failed [AppError] wrapping the cause for logs.
func ExecutionFailed(cause error) *AppError {
	return Wrap(KindExecutionFailed, "query execution failed", cause)
}

// Cancelled creates a cancelled [AppError] for a query terminated by caller request.
func Cancelled() *AppError {
	return New(KindCancelled, "query was cancelled")
}

// NotFound creates a not_found [AppError] for a named resource (query id, database id).
func NotFound(resource string) *AppError {
	return New(KindNotFound, resource+" not found")
}

// Internal creates an internal_error [AppError] wrapping an unexpected cause.
// The cause is stored for logging but never surfaced to the caller.
func Internal(cause error) *AppError {
	return Wrap(KindInternal, "an unexpected error occurred", cause)
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// OfKind reports whether err is an [*AppError] of the given kind.
func OfKind(err error, kind Kind) bool {
	ae := As(err)
	return ae != nil && ae.Kind == kind
}
