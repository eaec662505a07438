// Package handlers exposes the booking and check-in services as a JSON API.
package handlers

import (
	"log/slog"

	"github.com/dmrc/retreats/internal/services"
)

type Handler struct {
	svc           *services.Service
	log           *slog.Logger
	publicBaseURL string
}

// New wires handlers to svc. publicBaseURL, when set, is encoded into QR
// tickets as a scan link; otherwise the request host is used.
func New(svc *services.Service, log *slog.Logger, publicBaseURL string) *Handler {
	return &Handler{svc: svc, log: log, publicBaseURL: publicBaseURL}
}
