// Copyright (c) 2026 SQLSage. All rights reserved.

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/sqlsage/sqlsage/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Requester Identity
//
// Query.user (spec.md §3) is an opaque, optional identifier supplied by the
// caller — not a verified session. SQLSage carries no authentication domain
// (see DESIGN.md), so this is a plain string rather than a claims struct.

// WithRequester returns a new context with the provided requester identity attached.
func WithRequester(ctx context.Context, requester string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, requester)
}

// GetRequester retrieves the requester identity from the context, if any.
func GetRequester(ctx context.Context) string {
	requester, _ := ctx.Value(ctxkey.KeyUser).(string)
	return requester
}
