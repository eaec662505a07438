package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/dmrc/retreats/internal/services"
)

const qrSize = 256

// GET /qr/{code}.png
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.LookupTicket(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		var verr *services.ValidationError
		if errors.Is(err, services.ErrTicketNotFound) || errors.As(err, &verr) {
			http.NotFound(w, r)
			return
		}
		h.writeError(w, r, err)
		return
	}

	png, err := qrcode.Encode(h.scanURL(r, *out.Booking.TicketCode), qrcode.Medium, qrSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// scanURL is what the QR encodes: a link carrying the code, which the
// scanner reduces back to the bare code.
func (h *Handler) scanURL(r *http.Request, code string) string {
	base := h.publicBaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/checkin?code=" + url.QueryEscape(code)
}
