package handlers

import (
	"net/http"

	"github.com/dmrc/retreats/internal/services"
)

// POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in services.BookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.svc.CreateBooking(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("booking submitted", "booking_id", b.ID, "retreat_id", b.RetreatID)
	writeJSON(w, http.StatusCreated, b)
}

// GET /api/admin/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.svc.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
