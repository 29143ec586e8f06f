// Copyright (c) 2026 SQLSage. All rights reserved.

// Package dberr classifies low-level pgx/pgconn errors into [apperr.AppError]
// kinds, so storage-layer code never needs to know about SQLSTATE codes.
package dberr

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sqlsage/sqlsage/internal/platform/apperr"
)

// Wrap inspects a database error from action and classifies it into a
// meaningful [apperr.AppError], hiding internal connection/SQL details from
// callers while preserving the raw cause for server-side logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}
	if apperr.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperr.NotFound(action)
	case errors.Is(err, context.Canceled):
		return apperr.Cancelled()
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindExecutionFailed, action+" timed out", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return wrapPgError(pgErr, action, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperr.ConnectionFailed(err)
	}

	return apperr.Wrap(apperr.KindExecutionFailed, action+" failed", err)
}

// wrapPgError maps a Postgres SQLSTATE to the closest [apperr.Kind].
func wrapPgError(pgErr *pgconn.PgError, action string, cause error) error {
	switch {
	case pgErr.Code == pgerrcode.UniqueViolation,
		pgErr.Code == pgerrcode.ForeignKeyViolation,
		pgErr.Code == pgerrcode.CheckViolation,
		pgErr.Code == pgerrcode.NotNullViolation:
		return apperr.Wrap(apperr.KindInvalidInput, action+": "+pgErr.Message, cause)
	case pgErr.Code == pgerrcode.InsufficientPrivilege:
		return apperr.Wrap(apperr.KindUnsafeSQL, action+": insufficient privilege", cause)
	case pgErr.Code == pgerrcode.QueryCanceled:
		return apperr.Cancelled()
	case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08": // SQLSTATE class 08: connection exception
		return apperr.ConnectionFailed(cause)
	default:
		return apperr.Wrap(apperr.KindExecutionFailed, action+": "+pgErr.Message, cause)
	}
}

// IsNotFound reports whether err classifies as a not_found [apperr.AppError].
func IsNotFound(err error) bool {
	return apperr.OfKind(err, apperr.KindNotFound)
}
