// Package api provides the HTTP layer over the argumentation pipeline:
// starting runs, fetching results and rendered answers, aggregate
// metrics, and a WebSocket progress stream.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/logging"
	"github.com/caseymrobbins/personal-ai-sub001/internal/pipeline"
	"github.com/caseymrobbins/personal-ai-sub001/internal/synthesis"
	ws "github.com/caseymrobbins/personal-ai-sub001/internal/websocket"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Router is the main API router
type Router struct {
	cfg      *config.Config
	mux      *chi.Mux
	executor *pipeline.Executor
	renderer *synthesis.Renderer
	hub      *ws.Hub
	logger   logging.Logger
	version  string
}

// NewRouter wires the middleware stack and routes. hub may be nil when
// progress streaming is disabled.
func NewRouter(cfg *config.Config, executor *pipeline.Executor, hub *ws.Hub, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNoop()
	}
	r := &Router{
		cfg:      cfg,
		mux:      chi.NewRouter(),
		executor: executor,
		renderer: synthesis.NewRenderer(),
		hub:      hub,
		logger:   logger.WithComponent("api"),
		version:  "1.0.0",
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) setupMiddleware() {
	r.mux.Use(chimiddleware.Recoverer)
	r.mux.Use(chimiddleware.RealIP)
	r.mux.Use(chimiddleware.RequestSize(maxRequestBody))
	r.mux.Use(chimiddleware.Heartbeat("/ping"))
	r.mux.Use(r.requestLogger)
	r.mux.Use(r.corsMiddleware)
}

func (r *Router) setupRoutes() {
	r.mux.Get("/health", r.handleHealth)
	r.mux.Get("/ws", r.handleWebSocket)

	r.mux.Route("/api/v1", func(api chi.Router) {
		api.Post("/pipelines", r.handleExecutePipeline)
		api.Get("/pipelines/{id}", r.handleGetResult)
		api.Get("/pipelines/{id}/answer", r.handleGetAnswer)
		api.Get("/metrics", r.handleMetrics)
	})
}

// requestLogger logs each request with latency and status
func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		wrapped := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(wrapped, req)
		r.logger.Info("http request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", wrapped.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (r *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", r.cfg.Server.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
