package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/go-chi/chi/v5"
)

type certificationRequest struct {
	Link string `json:"link"`
}

func certificationID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid certification id %q", errdefs.ErrInvalidArgument, chi.URLParam(r, "id"))
	}
	return id, nil
}

func decodeLink(r *http.Request) (string, error) {
	var req certificationRequest
	if err := decode(r, &req); err != nil {
		return "", err
	}
	link := strings.TrimSpace(req.Link)
	if link == "" {
		return "", fmt.Errorf("%w: link is required", errdefs.ErrInvalidArgument)
	}
	return link, nil
}

// ListCertifications returns the signed-in employee's certifications.
func (h *CatalogHandler) ListCertifications(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.ListCertifications(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// CreateCertification records a certificate link.
func (h *CatalogHandler) CreateCertification(w http.ResponseWriter, r *http.Request) {
	link, err := decodeLink(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	out, err := h.catalog.CreateCertification(r.Context(), link)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusCreated, out)
}

// UpdateCertification replaces a certificate link.
func (h *CatalogHandler) UpdateCertification(w http.ResponseWriter, r *http.Request) {
	id, err := certificationID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	link, err := decodeLink(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	out, err := h.catalog.UpdateCertification(r.Context(), id, link)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// DeleteCertification removes a certification.
func (h *CatalogHandler) DeleteCertification(w http.ResponseWriter, r *http.Request) {
	id, err := certificationID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.catalog.DeleteCertification(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
