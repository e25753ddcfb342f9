package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/growwise/growwise-client/internal/config"
	"github.com/growwise/growwise-client/internal/store"
)

// HealthHandler reports readiness of local storage.
type HealthHandler struct {
	repo store.Repository
	cfg  *config.Config
}

// NewHealthHandlerWithConfig creates a health handler.
func NewHealthHandlerWithConfig(repo store.Repository, cfg *config.Config) *HealthHandler {
	return &HealthHandler{repo: repo, cfg: cfg}
}

// RegisterHealth registers the readiness endpoint. Liveness is served by
// the router's heartbeat middleware on /health.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health/ready", h.Ready)
}

// Ready pings storage.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.repo.Ping(ctx); err != nil {
		Error(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	resp := map[string]string{"status": "ok"}
	if h.cfg != nil {
		resp["backend"] = h.cfg.APIBaseURL
		resp["persist_mode"] = string(h.cfg.Session.PersistMode)
	}
	JSON(w, http.StatusOK, resp)
}
