package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmrc/retreats/internal/models"
)

const csvTime = "2006-01-02 15:04"

// GET /api/admin/retreats/{id}/attendees
func (h *Handler) AdminRoster(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	roster, err := h.svc.Roster(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// GET /api/admin/retreats/{id}/attendees.csv
func (h *Handler) AdminRosterCSV(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	roster, err := h.svc.Roster(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("attendees-%d-%s.csv", id, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{
		"Booked At", "Retreat", "Full Name", "Email", "Phone", "WhatsApp",
		"Family", "Status", "Payment", "Ticket", "Attended", "CheckedInAt",
	})
	for _, b := range roster.Bookings {
		ticket := ""
		if b.TicketCode != nil {
			ticket = *b.TicketCode
		}
		checkStr := ""
		if b.CheckedInAt != nil {
			checkStr = b.CheckedInAt.Format(csvTime)
		}
		attended := "no"
		if b.Attended {
			attended = "yes"
		}
		_ = cw.Write([]string{
			b.CreatedAt.Format(csvTime),
			b.RetreatTitle,
			b.FullName,
			b.Email,
			b.Phone,
			b.WhatsApp,
			familySummary(b.FamilyMembers),
			string(b.Status),
			string(b.PaymentStatus),
			ticket,
			attended,
			checkStr,
		})
	}
}

// familySummary renders members as "Name (relationship, age)" joined by " | ".
func familySummary(members []models.FamilyMember) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		var extra []string
		if m.Relationship != "" {
			extra = append(extra, m.Relationship)
		}
		if m.Age != "" {
			extra = append(extra, string(m.Age))
		}
		if len(extra) == 0 {
			parts = append(parts, m.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, strings.Join(extra, ", ")))
	}
	return strings.Join(parts, " | ")
}
