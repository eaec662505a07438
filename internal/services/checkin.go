package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dmrc/retreats/internal/events"
	"github.com/dmrc/retreats/internal/models"
)

type CheckInOutcome string

const (
	CheckedIn        CheckInOutcome = "checked_in"
	AlreadyCheckedIn CheckInOutcome = "already_checked_in"
	NotApproved      CheckInOutcome = "not_approved"
)

// CheckInResult is the outcome of a check-in attempt. Only CheckedIn
// means this call changed the booking.
type CheckInResult struct {
	Outcome     CheckInOutcome
	Booking     *models.RetreatBooking
	CheckedInAt *time.Time
}

// bookingKey selects a booking either by ticket code or by id.
type bookingKey struct {
	id   uint
	code string
}

func (s *Service) loadByKey(ctx context.Context, key bookingKey) (*models.RetreatBooking, error) {
	if key.code == "" {
		return s.findBooking(ctx, key.id)
	}
	var b models.RetreatBooking
	if err := s.db.WithContext(ctx).Where("ticket_code = ?", key.code).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, storageErr("load booking by ticket", err)
	}
	return &b, nil
}

// checkIn is the single attendance transition behind both entry points.
// Only approved bookings can be checked in. The update is conditional on
// attended=false, so of two racing requests exactly one reports CheckedIn.
func (s *Service) checkIn(ctx context.Context, key bookingKey) (*CheckInResult, error) {
	b, err := s.loadByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if res := classify(b); res != nil {
		return res, nil
	}

	now := s.clock()
	res := s.db.WithContext(ctx).Model(&models.RetreatBooking{}).
		Where("id = ? AND attended = ? AND status = ?", b.ID, false, models.StatusApproved).
		Updates(map[string]any{"attended": true, "checked_in_at": now})
	if res.Error != nil {
		return nil, storageErr("check in", res.Error)
	}
	if b, err = s.findBooking(ctx, b.ID); err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 {
		// Lost a race; report whatever the winner left behind.
		if out := classify(b); out != nil {
			return out, nil
		}
		return nil, storageErr("check in", fmt.Errorf("booking %d changed concurrently", b.ID))
	}

	s.publish(ctx, events.BookingCheckedIn, b)
	return &CheckInResult{Outcome: CheckedIn, Booking: b, CheckedInAt: b.CheckedInAt}, nil
}

// classify returns a result for bookings that cannot be checked in, or nil.
func classify(b *models.RetreatBooking) *CheckInResult {
	switch {
	case b.Status != models.StatusApproved:
		return &CheckInResult{Outcome: NotApproved, Booking: b}
	case b.Attended:
		return &CheckInResult{Outcome: AlreadyCheckedIn, Booking: b, CheckedInAt: b.CheckedInAt}
	}
	return nil
}

// ScanTicket checks in the booking holding code. Unknown codes return
// ErrTicketNotFound; a repeat scan is reported, not rejected.
func (s *Service) ScanTicket(ctx context.Context, code string) (*CheckInResult, error) {
	code = NormalizeTicketCode(code)
	if code == "" {
		return nil, required("ticketCode")
	}
	return s.checkIn(ctx, bookingKey{code: code})
}

// ManualCheckIn checks in a booking by id. Unlike ScanTicket, a booking
// that is already checked in (or not approved) is a ConflictError.
func (s *Service) ManualCheckIn(ctx context.Context, id uint) (*models.RetreatBooking, error) {
	res, err := s.checkIn(ctx, bookingKey{id: id})
	if err != nil {
		return nil, err
	}
	switch res.Outcome {
	case NotApproved:
		return nil, &ConflictError{Reason: "booking is not approved", Booking: res.Booking}
	case AlreadyCheckedIn:
		return nil, &ConflictError{Reason: "booking is already checked in", Booking: res.Booking}
	}
	return res.Booking, nil
}

// UndoCheckIn clears attendance regardless of the current state.
func (s *Service) UndoCheckIn(ctx context.Context, id uint) (*models.RetreatBooking, error) {
	b, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	wasAttended := b.Attended

	err = s.db.WithContext(ctx).Model(&models.RetreatBooking{}).
		Where("id = ?", id).
		Updates(map[string]any{"attended": false, "checked_in_at": nil}).Error
	if err != nil {
		return nil, storageErr("undo check in", err)
	}
	if b, err = s.findBooking(ctx, id); err != nil {
		return nil, err
	}
	if wasAttended {
		s.publish(ctx, events.BookingCheckinUndone, b)
	}
	return b, nil
}

// TicketLookup is a read-only view of a ticket for pre-scan display.
type TicketLookup struct {
	Booking *models.RetreatBooking `json:"booking"`
	Retreat *RetreatSummary        `json:"retreat"`
}

// LookupTicket resolves a ticket code without changing anything.
func (s *Service) LookupTicket(ctx context.Context, code string) (*TicketLookup, error) {
	code = NormalizeTicketCode(code)
	if code == "" {
		return nil, required("code")
	}
	b, err := s.loadByKey(ctx, bookingKey{code: code})
	if err != nil {
		return nil, err
	}
	out := &TicketLookup{Booking: b}
	r, err := s.findRetreat(ctx, b.RetreatID)
	switch {
	case err == nil:
		sum := summarize(r)
		out.Retreat = &sum
	case !errors.Is(err, ErrRetreatNotFound):
		return nil, err
	}
	return out, nil
}
