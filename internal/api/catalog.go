package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/go-chi/chi/v5"

	"github.com/growwise/growwise-client/internal/backend"
)

// Catalog is the read-mostly part of the backend the view browses.
type Catalog interface {
	ListProfessions(ctx context.Context) ([]backend.Profession, error)
	ListRecommendations(ctx context.Context, kind backend.Kind) ([]backend.Recommendation, error)
	ListAgentRecommendations(ctx context.Context) ([]backend.AgentRecommendation, error)
	GenerateRecommendations(ctx context.Context, profession string) (*backend.GenerateResponse, error)
	LoadDashboard(ctx context.Context) (*backend.Dashboard, error)
	ListCertifications(ctx context.Context) ([]backend.Certification, error)
	CreateCertification(ctx context.Context, link string) (*backend.Certification, error)
	UpdateCertification(ctx context.Context, id int, link string) (*backend.Certification, error)
	DeleteCertification(ctx context.Context, id int) error
}

var _ Catalog = (*backend.Client)(nil)

// CatalogHandler serves professions, recommendations and certifications.
type CatalogHandler struct {
	*Handler
	catalog Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *Handler, catalog Catalog) *CatalogHandler {
	return &CatalogHandler{Handler: base, catalog: catalog}
}

// RegisterRoutes registers catalog routes.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Get("/api/professions", h.ListProfessions)
		r.Get("/api/recommendations", h.ListRecommendations)
		r.Get("/api/recommendations/agents", h.ListAgentRecommendations)
		r.Post("/api/recommendations/generate", h.Generate)
		r.Get("/api/certifications", h.ListCertifications)
		r.Post("/api/certifications", h.CreateCertification)
		r.Put("/api/certifications/{id}", h.UpdateCertification)
		r.Delete("/api/certifications/{id}", h.DeleteCertification)
	})
}

// ListProfessions returns the selectable professions.
func (h *CatalogHandler) ListProfessions(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.ListProfessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// ListRecommendations returns one list when ?kind is given, otherwise the
// whole dashboard.
func (h *CatalogHandler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	kind := backend.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		dash, err := h.catalog.LoadDashboard(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		JSON(w, http.StatusOK, dash)
		return
	}
	if !kind.Valid() {
		Error(w, http.StatusBadRequest, fmt.Sprintf("unknown recommendation kind %q", kind))
		return
	}
	out, err := h.catalog.ListRecommendations(r.Context(), kind)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// ListAgentRecommendations returns suggested custom coaches.
func (h *CatalogHandler) ListAgentRecommendations(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.ListAgentRecommendations(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

type generateRequest struct {
	Profession string `json:"profession"`
}

// Generate asks the backend to produce recommendations. The profession
// defaults to the signed-in user's.
func (h *CatalogHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	profession := strings.TrimSpace(req.Profession)
	if profession == "" {
		if u := h.sessions.Snapshot().User; u != nil {
			profession = string(u.Profession)
		}
	}
	if profession == "" {
		WriteError(w, fmt.Errorf("%w: profession is required", errdefs.ErrInvalidArgument))
		return
	}
	out, err := h.catalog.GenerateRecommendations(r.Context(), profession)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, out)
}
