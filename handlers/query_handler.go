package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adilhn/supportflow/db"
	"github.com/adilhn/supportflow/pipeline"
)

// QueryHandler runs the triage pipeline for incoming support queries. A fresh
// Workflow is assembled per request so streaming observers never cross wires
// between concurrent requests.
type QueryHandler struct {
	Registry *pipeline.Registry
	Triage   pipeline.Step
	Routing  pipeline.Step
	Store    *db.Store
	Timeout  time.Duration
	Logger   *slog.Logger
}

func NewQueryHandler(registry *pipeline.Registry, triage, routing pipeline.Step, store *db.Store, timeout time.Duration, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		Registry: registry,
		Triage:   triage,
		Routing:  routing,
		Store:    store,
		Timeout:  timeout,
		Logger:   logger,
	}
}

type queryRequest struct {
	Query         string `json:"query"`
	ChatHistoryID int64  `json:"chat_history_id,omitempty"`
}

type queryResponse struct {
	UserQuery     string `json:"user_query"`
	Intent        string `json:"intent"`
	Sentiment     string `json:"sentiment"`
	Analysis      string `json:"analysis"`
	NextAgent     string `json:"next_agent"`
	FinalResponse string `json:"final_response"`
}

func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	workflow := pipeline.NewWorkflow(h.Registry, h.Triage, h.Routing, h.Logger)
	state, err := workflow.Run(ctx, req.Query)
	if err != nil {
		h.Logger.Error("Pipeline run failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to process query")
		return
	}

	h.persistExchange(r.Context(), req.ChatHistoryID, state)

	writeJSON(w, http.StatusOK, stateResponse(state))
}

// HandleQueryStream runs the same pipeline but reports progress as
// Server-Sent Events before the terminal result. Progress events are lossy;
// the result event is not.
func (h *QueryHandler) HandleQueryStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan pipeline.Progress, 16)
	workflow := pipeline.NewWorkflow(h.Registry, h.Triage, h.Routing, h.Logger)
	workflow.SetObserver(events)

	type runResult struct {
		state *pipeline.State
		err   error
	}
	done := make(chan runResult, 1)
	go func() {
		state, err := workflow.Run(ctx, req.Query)
		done <- runResult{state: state, err: err}
	}()

	var result runResult
loop:
	for {
		select {
		case event := <-events:
			writeSSE(w, "progress", event)
			flusher.Flush()
		case result = <-done:
			break loop
		}
	}

	// Drain whatever the run emitted after the last select round.
	for {
		select {
		case event := <-events:
			writeSSE(w, "progress", event)
			flusher.Flush()
		default:
			if result.err != nil {
				h.Logger.Error("Pipeline run failed", slog.String("error", result.err.Error()))
				writeSSE(w, "error", map[string]string{"error": "Failed to process query"})
				flusher.Flush()
				return
			}

			h.persistExchange(r.Context(), req.ChatHistoryID, result.state)
			writeSSE(w, "result", stateResponse(result.state))
			flusher.Flush()
			return
		}
	}
}

func (h *QueryHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (queryRequest, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.Query == "" {
		writeJSONError(w, http.StatusBadRequest, "Query must not be empty")
		return req, false
	}
	return req, true
}

// persistExchange stores the user/assistant message pair when a chat history
// was named. Persistence trouble is logged and swallowed; the caller still
// gets the pipeline's answer.
func (h *QueryHandler) persistExchange(ctx context.Context, chatHistoryID int64, state *pipeline.State) {
	if chatHistoryID == 0 {
		return
	}

	if _, err := h.Store.CreateMessage(ctx, chatHistoryID, "user", state.UserQuery); err != nil {
		h.Logger.Warn("Failed to persist user message",
			slog.Int64("chat_history_id", chatHistoryID),
			slog.String("error", err.Error()))
		return
	}
	if _, err := h.Store.CreateMessage(ctx, chatHistoryID, "assistant", state.FinalResponse); err != nil {
		h.Logger.Warn("Failed to persist assistant message",
			slog.Int64("chat_history_id", chatHistoryID),
			slog.String("error", err.Error()))
	}
}

func stateResponse(state *pipeline.State) queryResponse {
	return queryResponse{
		UserQuery:     state.UserQuery,
		Intent:        state.Intent,
		Sentiment:     state.Sentiment,
		Analysis:      state.Analysis,
		NextAgent:     state.NextAgent,
		FinalResponse: state.FinalResponse,
	}
}

func writeSSE(w http.ResponseWriter, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
