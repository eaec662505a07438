package services

import (
	"context"

	"github.com/dmrc/retreats/internal/models"
)

// AttendeeStats tallies a retreat's bookings. Pending, Approved and
// Cancelled partition by status; Attended and Paid cut across it.
type AttendeeStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Cancelled int `json:"cancelled"`
	Attended  int `json:"attended"`
	Paid      int `json:"paid"`
}

// StatsCounter produces the stats block for a roster. The loaded bookings
// are passed in; an implementation keeping its own counters may ignore them.
type StatsCounter interface {
	Count(ctx context.Context, retreatID uint, bookings []models.RetreatBooking) (AttendeeStats, error)
}

// RecountStats recomputes every tally from the bookings on each call.
type RecountStats struct{}

func (RecountStats) Count(_ context.Context, _ uint, bookings []models.RetreatBooking) (AttendeeStats, error) {
	st := AttendeeStats{Total: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusApproved:
			st.Approved++
		case models.StatusCancelled:
			st.Cancelled++
		}
		if b.Attended {
			st.Attended++
		}
		if b.PaymentStatus == models.PaymentPaid {
			st.Paid++
		}
	}
	return st, nil
}

type RetreatSummary struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	Location          string `json:"location"`
	TotalAvailability int    `json:"totalAvailability"`
}

func summarize(r *models.Retreat) RetreatSummary {
	return RetreatSummary{
		ID:                r.ID,
		Title:             r.Title,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		Location:          r.Location,
		TotalAvailability: r.TotalAvailability,
	}
}

type Roster struct {
	Bookings []models.RetreatBooking `json:"bookings"`
	Retreat  RetreatSummary          `json:"retreat"`
	Stats    AttendeeStats           `json:"stats"`
}

// Roster lists a retreat's bookings newest first with their stats.
func (s *Service) Roster(ctx context.Context, retreatID uint) (*Roster, error) {
	r, err := s.findRetreat(ctx, retreatID)
	if err != nil {
		return nil, err
	}

	bookings := []models.RetreatBooking{}
	if err := s.db.WithContext(ctx).
		Where("retreat_id = ?", retreatID).
		Order("created_at DESC, id DESC").
		Find(&bookings).Error; err != nil {
		return nil, storageErr("list bookings", err)
	}

	st, err := s.stats.Count(ctx, retreatID, bookings)
	if err != nil {
		return nil, storageErr("count bookings", err)
	}
	return &Roster{Bookings: bookings, Retreat: summarize(r), Stats: st}, nil
}
