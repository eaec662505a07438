package services

import (
	"context"

	"github.com/dmrc/retreats/internal/events"
	"github.com/dmrc/retreats/internal/models"
)

// CreateBooking validates a submission and stores it as pending.
// Availability is not checked here; the retreat's counts are advisory.
func (s *Service) CreateBooking(ctx context.Context, in BookingInput) (*models.RetreatBooking, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.findRetreat(ctx, in.RetreatID); err != nil {
		return nil, err
	}

	b := models.RetreatBooking{
		RetreatID:     in.RetreatID,
		RetreatTitle:  in.RetreatTitle,
		FullName:      in.Form.FullName,
		Email:         in.Form.Email,
		Phone:         in.Form.Phone,
		WhatsApp:      in.Form.WhatsApp,
		Note:          in.Note,
		FamilyMembers: in.Form.FamilyMembers,
		Status:        models.StatusPending,
		PaymentStatus: in.PaymentStatus,
	}
	if b.FamilyMembers == nil {
		b.FamilyMembers = []models.FamilyMember{}
	}
	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, storageErr("create booking", err)
	}
	return &b, nil
}

// CancelBooking marks a booking cancelled and clears its attendance.
// Cancelling twice is a no-op.
func (s *Service) CancelBooking(ctx context.Context, id uint) (*models.RetreatBooking, error) {
	b, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == models.StatusCancelled {
		return b, nil
	}

	now := s.clock()
	err = s.db.WithContext(ctx).Model(&models.RetreatBooking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        models.StatusCancelled,
			"cancelled_at":  now,
			"attended":      false,
			"checked_in_at": nil,
		}).Error
	if err != nil {
		return nil, storageErr("cancel booking", err)
	}
	if b, err = s.findBooking(ctx, id); err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCancelled, b)
	return b, nil
}

// RescheduleBooking moves a booking to another retreat's intake. The
// booking keeps its original retreat and is marked rescheduled.
func (s *Service) RescheduleBooking(ctx context.Context, id, targetRetreatID uint) (*models.RetreatBooking, error) {
	if targetRetreatID == 0 {
		return nil, required("retreatId")
	}
	b, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == models.StatusCancelled {
		return nil, &ConflictError{Reason: "booking is cancelled", Booking: b}
	}
	if _, err := s.findRetreat(ctx, targetRetreatID); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.RetreatBooking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":                   models.StatusRescheduled,
			"reschedule_to_retreat_id": targetRetreatID,
		}).Error
	if err != nil {
		return nil, storageErr("reschedule booking", err)
	}
	return s.findBooking(ctx, id)
}

// SetPaymentStatus records a manually confirmed payment state.
func (s *Service) SetPaymentStatus(ctx context.Context, id uint, status models.PaymentStatus) (*models.RetreatBooking, error) {
	if status == "" {
		return nil, required("paymentStatus")
	}
	if !status.Valid() {
		return nil, invalid("paymentStatus", "must be one of pending, paid, refunded, waived")
	}
	if _, err := s.findBooking(ctx, id); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Model(&models.RetreatBooking{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
	if err != nil {
		return nil, storageErr("update payment status", err)
	}
	return s.findBooking(ctx, id)
}
