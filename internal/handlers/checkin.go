package handlers

import (
	"net/http"

	"github.com/dmrc/retreats/internal/services"
)

type scanRequest struct {
	TicketCode string `json:"ticketCode"`
}

// POST /api/admin/checkin/scan
//
// Unknown codes are 404. A booking that is not approved is 400 with the
// booking attached; a repeat scan is a 200 with alreadyCheckedIn set.
func (h *Handler) ScanTicket(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.ScanTicket(r.Context(), req.TicketCode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch res.Outcome {
	case services.NotApproved:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   string(res.Outcome),
			"message": "only approved bookings can be checked in",
			"valid":   true,
			"booking": res.Booking,
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"outcome":          res.Outcome,
			"alreadyCheckedIn": res.Outcome == services.AlreadyCheckedIn,
			"checkedInAt":      res.CheckedInAt,
			"booking":          res.Booking,
		})
	}
}

// GET /api/admin/checkin/lookup?code=
func (h *Handler) LookupTicket(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.LookupTicket(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"booking": out.Booking,
		"retreat": out.Retreat,
	})
}

// POST /api/admin/bookings/{id}/checkin
func (h *Handler) AdminCheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.svc.ManualCheckIn(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// POST /api/admin/bookings/{id}/undo-checkin
func (h *Handler) AdminUndoCheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.svc.UndoCheckIn(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
