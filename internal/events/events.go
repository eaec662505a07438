// Package events carries booking lifecycle notifications to other systems.
package events

import (
	"context"
	"time"
)

const (
	BookingApproved      = "booking.approved"
	BookingCheckedIn     = "booking.checked_in"
	BookingCheckinUndone = "booking.checkin_undone"
	BookingCancelled     = "booking.cancelled"
	BookingNoShow        = "booking.no_show"
)

// Event is the payload published after a booking changes state.
type Event struct {
	Type       string    `json:"type"`
	BookingID  uint      `json:"bookingId"`
	RetreatID  uint      `json:"retreatId"`
	TicketCode string    `json:"ticketCode,omitempty"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
