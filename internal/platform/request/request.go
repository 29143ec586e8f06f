// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sqlsage/sqlsage/internal/platform/ctxutil"
	"github.com/sqlsage/sqlsage/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Requester returns the opaque caller identity carried by the request, if any.
SQLSage has no authentication domain: Query.user (spec.md §3) is whatever
identifier the caller's transport layer supplied upstream, attached to the
context by [ctxutil.WithRequester]. It is never required.
*/
func Requester(request *http.Request) string {
	return ctxutil.GetRequester(request.Context())
}
