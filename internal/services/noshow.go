package services

import (
	"context"
	"time"

	"github.com/dmrc/retreats/internal/events"
	"github.com/dmrc/retreats/internal/models"
)

const dateLayout = "2006-01-02"

// MarkNoShows closes out retreats that ended before asOf: approved bookings
// that never checked in become no_show. Retreats whose end date is not a
// YYYY-MM-DD string are skipped. It returns how many bookings changed.
func (s *Service) MarkNoShows(ctx context.Context, asOf time.Time) (int, error) {
	var retreats []models.Retreat
	if err := s.db.WithContext(ctx).Where("end_date <> ''").Find(&retreats).Error; err != nil {
		return 0, storageErr("list retreats", err)
	}
	today := asOf.UTC().Format(dateLayout)
	var ended []uint
	for _, r := range retreats {
		if _, err := time.Parse(dateLayout, r.EndDate); err != nil {
			continue
		}
		if r.EndDate < today {
			ended = append(ended, r.ID)
		}
	}
	if len(ended) == 0 {
		return 0, nil
	}

	var candidates []models.RetreatBooking
	err := s.db.WithContext(ctx).
		Where("retreat_id IN ? AND status = ? AND attended = ?", ended, models.StatusApproved, false).
		Find(&candidates).Error
	if err != nil {
		return 0, storageErr("list unattended bookings", err)
	}

	marked := 0
	for i := range candidates {
		b := &candidates[i]
		// Re-checked per row so a late check-in wins over the sweep.
		res := s.db.WithContext(ctx).Model(&models.RetreatBooking{}).
			Where("id = ? AND status = ? AND attended = ?", b.ID, models.StatusApproved, false).
			Update("status", models.StatusNoShow)
		if res.Error != nil {
			return marked, storageErr("mark no-show", res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		marked++
		b.Status = models.StatusNoShow
		s.publish(ctx, events.BookingNoShow, b)
	}
	return marked, nil
}
