package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmrc/retreats/internal/handlers"
	"github.com/dmrc/retreats/internal/ratelimit"
)

type Deps struct {
	Handler *handlers.Handler
	Auth    *handlers.AdminAuth
	Limiter *ratelimit.Limiter
	Log     *slog.Logger
}

func Router(d Deps) http.Handler {
	h := d.Handler

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	// QR image
	r.Get("/qr/{code}.png", h.QR)

	// Public catalog + booking submission
	r.Route("/api", func(api chi.Router) {
		api.Get("/retreats", h.ListRetreats)
		api.Get("/retreats/{slug}", h.GetRetreat)
		api.With(d.Limiter.Middleware).Post("/bookings", h.CreateBooking)

		// Guarded admin API
		api.Route("/admin", func(ag chi.Router) {
			ag.Use(d.Auth.RequireAdmin)

			ag.Post("/retreats", h.AdminCreateRetreat)
			ag.Get("/retreats/{id}/attendees", h.AdminRoster)
			ag.Get("/retreats/{id}/attendees.csv", h.AdminRosterCSV)
			ag.Get("/capacity", h.AdminCapacity)

			ag.Get("/bookings/{id}", h.GetBooking)
			ag.Post("/bookings/{id}/approve", h.AdminApprove)
			ag.Post("/bookings/{id}/checkin", h.AdminCheckIn)
			ag.Post("/bookings/{id}/undo-checkin", h.AdminUndoCheckIn)
			ag.Post("/bookings/{id}/cancel", h.AdminCancel)
			ag.Post("/bookings/{id}/reschedule", h.AdminReschedule)
			ag.Post("/bookings/{id}/payment", h.AdminPayment)

			ag.Post("/checkin/scan", h.ScanTicket)
			ag.Get("/checkin/lookup", h.LookupTicket)
		})
	})

	// Auth endpoints (public)
	r.Post("/admin/login", d.Auth.Login)
	r.Post("/admin/logout", d.Auth.Logout)

	return r
}
