// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package api: query.go implements the Query port (spec.md §6) — the thin HTTP
surface over the Query Builder (C9) and Async Executor (C10), transport named
out-of-core per §1.
*/
package api

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sqlsage/sqlsage/internal/executor"
	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	requestutil "github.com/sqlsage/sqlsage/internal/platform/request"
	"github.com/sqlsage/sqlsage/internal/platform/respond"
	"github.com/sqlsage/sqlsage/internal/querybuilder"
	"github.com/sqlsage/sqlsage/internal/querymodel"
)

// QueryHandler implements the Query port's HTTP surface.
type QueryHandler struct {
	builder  *querybuilder.Builder
	executor *executor.Executor
}

// NewQueryHandler constructs a [QueryHandler] with its pipeline dependencies.
func NewQueryHandler(builder *querybuilder.Builder, exec *executor.Executor) *QueryHandler {
	return &QueryHandler{builder: builder, executor: exec}
}

// Routes returns a [chi.Router] configured with the Query port's endpoints.
func (h *QueryHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/databases/{databaseID}/queries/natural", h.submitNatural)
	router.Post("/databases/{databaseID}/queries/sql", h.submitSQL)
	router.Get("/queries/{queryID}/status", h.status)
	router.Get("/queries/{queryID}/results", h.results)
	router.Post("/queries/{queryID}/cancel", h.cancel)
	router.Get("/queries/{queryID}/export", h.export)

	return router
}

type submitNaturalRequest struct {
	Text string `json:"text"`
}

type submitNaturalResponse struct {
	Status         querybuilder.Status          `json:"status"`
	QueryID        string                       `json:"query_id,omitempty"`
	SQL            string                       `json:"sql,omitempty"`
	Confidence     float64                      `json:"confidence,omitempty"`
	Interpretation *querymodel.Interpretation    `json:"interpretation,omitempty"`
	Alternatives   []querymodel.Interpretation   `json:"alternatives,omitempty"`
	Interpretations []querymodel.Interpretation  `json:"interpretations,omitempty"`
	Suggestions    []string                      `json:"suggestions,omitempty"`
}

/*
POST /api/v1/databases/{databaseID}/queries/natural.

Translates free-form text into SQL via the Query Builder (C9) and, when a
single confident interpretation emerges, immediately submits it to the
Async Executor (C10) for execution — mirroring spec.md §6's
submit_natural contract exactly: ok{query_id, sql, confidence,
interpretation, alternatives[]} | ambiguous{interpretations[],
suggestions[]} | error{kind, message}.
*/
func (h *QueryHandler) submitNatural(writer http.ResponseWriter, request *http.Request) {
	databaseID := requestutil.ID(request, "databaseID")

	var body submitNaturalRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.builder.Build(request.Context(), databaseID, body.Text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.Status == querybuilder.StatusAmbiguous {
		respond.OK(writer, submitNaturalResponse{
			Status:          result.Status,
			Interpretations: result.Candidates,
			Suggestions:     result.Suggestions,
		})
		return
	}

	requester := requestutil.Requester(request)
	q, err := h.executor.Submit(request.Context(), databaseID, result.Best.SQL, requester, result.Best.Confidence, result.Best.Rationale.Explanation)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, submitNaturalResponse{
		Status:         result.Status,
		QueryID:        q.ID,
		SQL:            result.Best.SQL,
		Confidence:     result.Best.Confidence,
		Interpretation: result.Best,
		Alternatives:   result.Alternatives,
	})
}

type submitSQLRequest struct {
	SQL string `json:"sql"`
}

type submitSQLResponse struct {
	QueryID string `json:"query_id"`
}

/*
POST /api/v1/databases/{databaseID}/queries/sql.

Submits a hand-written SQL statement directly to the Async Executor (C10),
after C1's safety gate, per spec.md §6's submit_sql(database_id, sql,
limit?) → {query_id} contract.
*/
func (h *QueryHandler) submitSQL(writer http.ResponseWriter, request *http.Request) {
	databaseID := requestutil.ID(request, "databaseID")

	var body submitSQLRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	requester := requestutil.Requester(request)
	q, err := h.executor.Submit(request.Context(), databaseID, body.SQL, requester, 0, "")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, submitSQLResponse{QueryID: q.ID})
}

// GET /api/v1/queries/{queryID}/status.
func (h *QueryHandler) status(writer http.ResponseWriter, request *http.Request) {
	queryID := requestutil.ID(request, "queryID")

	snapshot, err := h.executor.Status(queryID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, snapshot)
}

type resultsResponse struct {
	Rows      []querymodel.Row `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated"`
}

// GET /api/v1/queries/{queryID}/results?offset=&limit=.
func (h *QueryHandler) results(writer http.ResponseWriter, request *http.Request) {
	queryID := requestutil.ID(request, "queryID")
	offset, limit := parseOffsetLimit(request)

	rows, rowCount, truncated, err := h.executor.Results(queryID, offset, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, resultsResponse{Rows: rows, RowCount: rowCount, Truncated: truncated})
}

// POST /api/v1/queries/{queryID}/cancel.
func (h *QueryHandler) cancel(writer http.ResponseWriter, request *http.Request) {
	queryID := requestutil.ID(request, "queryID")

	if err := h.executor.Cancel(queryID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
GET /api/v1/queries/{queryID}/export?format=csv|json|sql.

Exports a completed query's full retained result set, per spec.md §6's
export(query_id, format). The "sql" format returns the statement that was
actually executed, not its rows — useful for replaying a query elsewhere.
*/
func (h *QueryHandler) export(writer http.ResponseWriter, request *http.Request) {
	queryID := requestutil.ID(request, "queryID")
	format := request.URL.Query().Get("format")

	switch format {
	case "sql":
		snapshot, err := h.executor.Status(queryID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		writer.Header().Set("Content-Type", "application/sql; charset=utf-8")
		writer.Header().Set("Content-Disposition", `attachment; filename="`+queryID+`.sql"`)
		_, _ = writer.Write([]byte(snapshot.SQL))

	case "json":
		rows, _, _, err := h.executor.Results(queryID, 0, 0)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.Header().Set("Content-Disposition", `attachment; filename="`+queryID+`.json"`)
		_ = json.NewEncoder(writer).Encode(rows)

	case "csv":
		rows, _, _, err := h.executor.Results(queryID, 0, 0)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		writer.Header().Set("Content-Type", "text/csv; charset=utf-8")
		writer.Header().Set("Content-Disposition", `attachment; filename="`+queryID+`.csv"`)
		writeCSV(writer, rows)

	default:
		respond.Error(writer, request, apperr.InvalidInput("format must be one of: csv, json, sql"))
	}
}

// writeCSV renders rows as CSV, column order taken from the first row and
// held stable for every subsequent row.
func writeCSV(writer http.ResponseWriter, rows []querymodel.Row) {
	csvWriter := csv.NewWriter(writer)
	defer csvWriter.Flush()

	if len(rows) == 0 {
		return
	}

	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	_ = csvWriter.Write(columns)

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = toCSVField(row[col])
		}
		_ = csvWriter.Write(record)
	}
}

func toCSVField(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return jsonString(value)
}

func jsonString(value any) string {
	b, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(b)
}

func parseOffsetLimit(request *http.Request) (offset, limit int) {
	query := request.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))
	return offset, limit
}
