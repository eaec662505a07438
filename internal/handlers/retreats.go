package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmrc/retreats/internal/models"
	"github.com/dmrc/retreats/internal/services"
)

// GET /api/retreats?status=
func (h *Handler) ListRetreats(w http.ResponseWriter, r *http.Request) {
	status := models.RetreatStatus(r.URL.Query().Get("status"))
	list, err := h.svc.ListRetreats(r.Context(), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/retreats/{slug}
func (h *Handler) GetRetreat(w http.ResponseWriter, r *http.Request) {
	rt, err := h.svc.GetRetreatBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

// POST /api/admin/retreats
func (h *Handler) AdminCreateRetreat(w http.ResponseWriter, r *http.Request) {
	var in services.RetreatInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	rt, err := h.svc.CreateRetreat(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}
