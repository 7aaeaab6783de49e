package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"

	"github.com/caseymrobbins/personal-ai-sub001/internal/pipeline"
	ws "github.com/caseymrobbins/personal-ai-sub001/internal/websocket"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// ExecutePipelineRequest is the body for POST /api/v1/pipelines
type ExecutePipelineRequest struct {
	Question            string                      `json:"question"`
	ConversationHistory []types.ConversationMessage `json:"conversation_history"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": r.version,
		"metrics": r.executor.Metrics(),
	})
}

// handleExecutePipeline runs the pipeline synchronously. Progress is
// streamed to WebSocket subscribers while the request is in flight; the
// full result is the response body. An empty question is allowed and
// degrades to low-confidence output.
func (r *Router) handleExecutePipeline(w http.ResponseWriter, req *http.Request) {
	var body ExecutePipelineRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request", err.Error())
		return
	}

	var onProgress pipeline.ProgressFunc
	if r.hub != nil {
		onProgress = r.hub.BroadcastProgress
	}

	result, err := r.executor.ExecutePipeline(req.Context(), body.Question, body.ConversationHistory, onProgress)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Pipeline failed", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (r *Router) handleGetResult(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	result, err := r.executor.GetResult(req.Context(), id)
	if err != nil {
		if errors.Is(err, pipeline.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "Result not found", id)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch result", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetAnswer returns the rendered answer. format=html renders
// through the Markdown pipeline; the default is raw Markdown.
func (r *Router) handleGetAnswer(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	result, err := r.executor.GetResult(req.Context(), id)
	if err != nil {
		if errors.Is(err, pipeline.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "Result not found", id)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch result", err.Error())
		return
	}

	if req.URL.Query().Get("format") == "html" {
		html, err := r.renderer.RenderHTML(result.SynthesizedAnswer)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to render answer", err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(r.renderer.RenderMarkdown(result.SynthesizedAnswer)))
}

func (r *Router) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, r.executor.Metrics())
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement happens in the CORS layer
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and subscribes it to progress
// events, optionally filtered by run_id.
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	if r.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "Progress streaming disabled", "")
		return
	}
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", "error", err.Error())
		return
	}

	client := ws.NewClient(uuid.New().String(), conn, r.hub, req.URL.Query().Get("run_id"))
	r.hub.RegisterClient(client)

	// The connection outlives the request once hijacked
	go client.WritePump(context.Background())
	go client.ReadPump()
}
