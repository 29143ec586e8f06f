// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package api: progress.go implements the Progress port (spec.md §6): a lazy
sequence of [querymodel.ProgressEvent]s per query_id, pushed over a
text/event-stream connection until the query reaches a terminal state or
the client disconnects.

Progress-port connections are deliberately exempt from the global
read/write timeouts applied to the rest of the Query port — see
internal/platform/constants.DefaultWriteTimeout's doc comment.
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sqlsage/sqlsage/internal/executor"
	requestutil "github.com/sqlsage/sqlsage/internal/platform/request"
	"github.com/sqlsage/sqlsage/internal/platform/respond"
	"github.com/sqlsage/sqlsage/internal/querymodel"
)

// ProgressHandler implements the Progress port's SSE stream.
type ProgressHandler struct {
	executor *executor.Executor
}

// NewProgressHandler constructs a [ProgressHandler].
func NewProgressHandler(exec *executor.Executor) *ProgressHandler {
	return &ProgressHandler{executor: exec}
}

// Routes returns a [chi.Router] configured with the Progress port's endpoint.
func (h *ProgressHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/queries/{queryID}/stream", h.stream)
	return router
}

/*
GET /api/v1/queries/{queryID}/stream.

Streams every [querymodel.ProgressEvent] published for queryID from the
moment of subscription until the query reaches a terminal state or the
client disconnects, as Server-Sent Events.
*/
func (h *ProgressHandler) stream(writer http.ResponseWriter, request *http.Request) {
	queryID := requestutil.ID(request, "queryID")

	flusher, ok := writer.(http.Flusher)
	if !ok {
		respond.NotImplemented(writer, request)
		return
	}

	// Disable the server's global write deadline for this connection only —
	// an SSE stream can legitimately stay open far longer than
	// constants.DefaultWriteTimeout allows an ordinary request.
	_ = http.NewResponseController(writer).SetWriteDeadline(time.Time{})

	events, unsubscribe := h.executor.Subscribe(queryID)
	defer unsubscribe()

	writer.Header().Set("Content-Type", "text/event-stream")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(writer, event); err != nil {
				return
			}
			flusher.Flush()
			if isTerminal(event.Status) {
				return
			}
		}
	}
}

func writeSSE(writer http.ResponseWriter, event querymodel.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer, "event: progress\ndata: %s\n\n", payload)
	return err
}

func isTerminal(state querymodel.State) bool {
	return state == querymodel.StateCompleted || state == querymodel.StateFailed || state == querymodel.StateCancelled
}
