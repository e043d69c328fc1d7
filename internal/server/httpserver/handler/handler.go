package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yndnr/servetls/internal/telemetry/logger"
)

// ReadyFunc reports whether the HTTPS listener is accepting connections.
type ReadyFunc func() error

// Handler serves the admin endpoints.
type Handler struct {
	logger  logger.Logger
	metrics http.Handler
	ready   ReadyFunc
	mux     *http.ServeMux
}

// New creates the admin handler. A nil metrics handler leaves /metrics
// unregistered; a nil ready func always reports ready.
func New(metrics http.Handler, ready ReadyFunc, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	h := &Handler{
		logger:  log,
		metrics: metrics,
		ready:   ready,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.write(w, status, NewResponse(logger.RequestIDFromContext(r.Context()), data))
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	w.Header().Set("X-Error-Code", code)
	h.write(w, status, NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message, details))
}

func (h *Handler) write(w http.ResponseWriter, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
