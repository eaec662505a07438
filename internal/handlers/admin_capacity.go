package handlers

import "net/http"

// GET /api/admin/capacity
func (h *Handler) AdminCapacity(w http.ResponseWriter, r *http.Request) {
	caps, err := h.svc.Capacity(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, caps)
}
