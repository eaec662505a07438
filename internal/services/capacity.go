package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmrc/retreats/internal/models"
)

const statsSelect = `retreat_id,
	COUNT(*) AS total,
	COALESCE(SUM(CASE WHEN status = 'pending'   THEN 1 ELSE 0 END), 0) AS pending,
	COALESCE(SUM(CASE WHEN status = 'approved'  THEN 1 ELSE 0 END), 0) AS approved,
	COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
	COALESCE(SUM(CASE WHEN attended             THEN 1 ELSE 0 END), 0) AS attended,
	COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN 1 ELSE 0 END), 0) AS paid`

type statsRow struct {
	RetreatID uint
	AttendeeStats
}

func aggregate(ctx context.Context, db *gorm.DB, retreatIDs []uint) (map[uint]AttendeeStats, error) {
	var rows []statsRow
	err := db.WithContext(ctx).Model(&models.RetreatBooking{}).
		Select(statsSelect).
		Where("retreat_id IN ?", retreatIDs).
		Group("retreat_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]AttendeeStats, len(rows))
	for _, r := range rows {
		out[r.RetreatID] = r.AttendeeStats
	}
	return out, nil
}

// AggregateStats counts in the database with one GROUP BY query instead of
// walking the loaded bookings.
type AggregateStats struct {
	DB *gorm.DB
}

func (a AggregateStats) Count(ctx context.Context, retreatID uint, _ []models.RetreatBooking) (AttendeeStats, error) {
	m, err := aggregate(ctx, a.DB, []uint{retreatID})
	if err != nil {
		return AttendeeStats{}, err
	}
	return m[retreatID], nil
}

// RetreatCapacity is one retreat's fill level. Remaining and FillPercent
// count approved bookings against total availability.
type RetreatCapacity struct {
	RetreatSummary
	Status      models.RetreatStatus `json:"status"`
	Stats       AttendeeStats        `json:"stats"`
	Remaining   int                  `json:"remaining"`
	FillPercent int                  `json:"fillPercent"`
}

// Capacity reports every retreat's fill level, in catalog order.
func (s *Service) Capacity(ctx context.Context) ([]RetreatCapacity, error) {
	var retreats []models.Retreat
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&retreats).Error; err != nil {
		return nil, storageErr("list retreats", err)
	}
	out := make([]RetreatCapacity, 0, len(retreats))
	if len(retreats) == 0 {
		return out, nil
	}

	ids := make([]uint, len(retreats))
	for i := range retreats {
		ids[i] = retreats[i].ID
	}
	stats, err := aggregate(ctx, s.db, ids)
	if err != nil {
		return nil, storageErr("aggregate bookings", err)
	}

	for i := range retreats {
		r := &retreats[i]
		st := stats[r.ID]
		c := RetreatCapacity{
			RetreatSummary: summarize(r),
			Status:         r.Status,
			Stats:          st,
			Remaining:      max(r.TotalAvailability-st.Approved, 0),
		}
		if r.TotalAvailability > 0 {
			c.FillPercent = st.Approved * 100 / r.TotalAvailability
		}
		out = append(out, c)
	}
	return out, nil
}
