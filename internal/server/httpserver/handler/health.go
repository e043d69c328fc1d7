package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/servetls/internal/core/domain"
	"github.com/yndnr/servetls/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthStatus{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: buildinfo.Version,
	})
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrNotReady.Code, domain.ErrNotReady.Message, err.Error())
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, HealthStatus{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
