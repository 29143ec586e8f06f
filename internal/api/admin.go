// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package api: admin.go implements the database registration and analysis
admin surface SPEC_FULL.md §7 calls "the Query port's (external,
out-of-core) admin API" — registering a target database and triggering or
inspecting its schema analysis, via [registration.Service].
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/sqlsage/sqlsage/internal/platform/request"
	"github.com/sqlsage/sqlsage/internal/platform/respond"
	"github.com/sqlsage/sqlsage/internal/platform/validate"
	"github.com/sqlsage/sqlsage/internal/registration"
	"github.com/sqlsage/sqlsage/internal/schema"
)

// AdminHandler implements the database registration/analysis HTTP surface.
type AdminHandler struct {
	service *registration.Service
}

// NewAdminHandler constructs an [AdminHandler] with its service dependency.
func NewAdminHandler(service *registration.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// Routes returns a [chi.Router] configured with the admin endpoints.
func (h *AdminHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", h.list)
	router.Post("/", h.register)
	router.Get("/{databaseID}", h.get)
	router.Post("/{databaseID}/analyze", h.analyze)
	router.Get("/{databaseID}/diff", h.diff)

	return router
}

// registerRequest is the inbound connection contract, matching spec.md §6's
// {host, port, database, username, password, ssl_mode} exactly.
type registerRequest struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
}

/*
POST /api/v1/databases.

Registers a new target database and performs its first schema analysis
before returning. The password is consumed only to open the connection
pool — the core never persists it in plaintext.
*/
func (h *AdminHandler) register(writer http.ResponseWriter, request *http.Request) {
	var body registerRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("host", body.Host).
		Required("database", body.Database).
		Range("port", body.Port, 1, 65535).
		OneOf("ssl_mode", body.SSLMode, string(schema.SSLDisable), string(schema.SSLPrefer), string(schema.SSLRequire))
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	conn := schema.ConnectionInfo{
		Host:     body.Host,
		Port:     body.Port,
		Database: body.Database,
		Username: body.Username,
		Password: body.Password,
		SSLMode:  schema.SSLMode(body.SSLMode),
	}

	database, err := h.service.Register(request.Context(), conn)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, database)
}

// GET /api/v1/databases.
func (h *AdminHandler) list(writer http.ResponseWriter, request *http.Request) {
	databases, err := h.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, databases)
}

// GET /api/v1/databases/{databaseID}.
func (h *AdminHandler) get(writer http.ResponseWriter, request *http.Request) {
	databaseID := requestutil.ID(request, "databaseID")

	database, err := h.service.Get(request.Context(), databaseID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, database)
}

type analyzeResponse struct {
	Changed bool `json:"changed"`
}

// POST /api/v1/databases/{databaseID}/analyze.
func (h *AdminHandler) analyze(writer http.ResponseWriter, request *http.Request) {
	databaseID := requestutil.ID(request, "databaseID")

	changed, err := h.service.Analyze(request.Context(), databaseID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, analyzeResponse{Changed: changed})
}

// GET /api/v1/databases/{databaseID}/diff.
func (h *AdminHandler) diff(writer http.ResponseWriter, request *http.Request) {
	databaseID := requestutil.ID(request, "databaseID")

	diff, err := h.service.Diff(request.Context(), databaseID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, diff)
}
