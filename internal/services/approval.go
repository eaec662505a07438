package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dmrc/retreats/internal/events"
	"github.com/dmrc/retreats/internal/models"
)

// Approve admits a pending booking and issues its ticket code. Approving a
// booking that already holds a code returns that code unchanged, and
// approvedAt keeps its first value.
//
// The unique index on ticket_code is the collision guard: a duplicate-key
// failure retries with a fresh code, up to maxTicketTries times.
func (s *Service) Approve(ctx context.Context, id uint) (*models.RetreatBooking, string, error) {
	b, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if b.Status != models.StatusPending && b.Status != models.StatusApproved {
		return nil, "", &ConflictError{Reason: fmt.Sprintf("cannot approve a %s booking", b.Status), Booking: b}
	}

	if b.TicketCode != nil {
		if b.Status != models.StatusApproved {
			if _, err := s.markApproved(ctx, id, nil); err != nil {
				return nil, "", storageErr("approve booking", err)
			}
			if b, err = s.findBooking(ctx, id); err != nil {
				return nil, "", err
			}
		}
		return b, *b.TicketCode, nil
	}

	for attempt := 1; attempt <= maxTicketTries; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, "", storageErr("generate ticket code", err)
		}
		n, err := s.markApproved(ctx, id, &code)
		if err != nil {
			if isDuplicateKey(err) {
				s.log.Warn("ticket code collision, retrying", "booking_id", id, "attempt", attempt)
				continue
			}
			return nil, "", storageErr("approve booking", err)
		}

		// Zero rows means a concurrent approval assigned a code first;
		// either way the stored code is the one to return.
		if b, err = s.findBooking(ctx, id); err != nil {
			return nil, "", err
		}
		if b.TicketCode == nil {
			return nil, "", storageErr("approve booking", fmt.Errorf("booking %d has no ticket code after approval", id))
		}
		if n > 0 {
			s.publish(ctx, events.BookingApproved, b)
		}
		return b, *b.TicketCode, nil
	}
	return nil, "", storageErr("approve booking", ErrTicketCodesExhausted)
}

// markApproved sets status and approvedAt (first approval only). When code
// is non-nil it is assigned only if the booking has none yet.
func (s *Service) markApproved(ctx context.Context, id uint, code *string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.RetreatBooking{}).Where("id = ?", id)
	fields := map[string]any{
		"status":      models.StatusApproved,
		"approved_at": gorm.Expr("COALESCE(approved_at, ?)", s.clock()),
	}
	if code != nil {
		q = q.Where("ticket_code IS NULL")
		fields["ticket_code"] = *code
	}
	res := q.Updates(fields)
	return res.RowsAffected, res.Error
}
