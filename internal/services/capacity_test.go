package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrc/retreats/internal/models"
)

// seedMixed gives r one booking in each interesting state.
func seedMixed(t *testing.T, f *fixture, r *models.Retreat) {
	t.Helper()
	ctx := context.Background()

	f.booking(t, r)
	_, code := f.approved(t, r)
	paid, _ := f.approved(t, r)
	c := f.booking(t, r)

	_, err := f.svc.ScanTicket(ctx, code)
	require.NoError(t, err)
	_, err = f.svc.SetPaymentStatus(ctx, paid.ID, models.PaymentPaid)
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(ctx, c.ID)
	require.NoError(t, err)
}

// Both counters must agree on the same data.
func TestAggregateStats_MatchesRecount(t *testing.T) {
	f := newFixture(t)
	r := f.retreat(t, "Youth Fire Weekend", 120)
	other := f.retreat(t, "Couples Retreat", 40)
	seedMixed(t, f, r)
	f.booking(t, other)

	recount, err := f.svc.Roster(context.Background(), r.ID)
	require.NoError(t, err)

	agg := New(f.db, WithStats(AggregateStats{DB: f.db}))
	viaSQL, err := agg.Roster(context.Background(), r.ID)
	require.NoError(t, err)

	assert.Equal(t, AttendeeStats{Total: 4, Pending: 1, Approved: 2, Cancelled: 1, Attended: 1, Paid: 1}, recount.Stats)
	assert.Equal(t, recount.Stats, viaSQL.Stats)
}

func TestAggregateStats_NoBookings(t *testing.T) {
	f := newFixture(t)
	r := f.retreat(t, "Quiet Retreat", 10)

	st, err := AggregateStats{DB: f.db}.Count(context.Background(), r.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, AttendeeStats{}, st)
}

func TestCapacity(t *testing.T) {
	f := newFixture(t)
	busy := f.retreat(t, "Youth Fire Weekend", 4)
	empty := f.retreat(t, "Quiet Retreat", 0)
	seedMixed(t, f, busy)

	caps, err := f.svc.Capacity(context.Background())
	require.NoError(t, err)
	require.Len(t, caps, 2)

	assert.Equal(t, busy.ID, caps[0].ID)
	assert.Equal(t, 2, caps[0].Stats.Approved)
	assert.Equal(t, 2, caps[0].Remaining)
	assert.Equal(t, 50, caps[0].FillPercent)
	assert.Equal(t, models.RetreatOpen, caps[0].Status)

	assert.Equal(t, empty.ID, caps[1].ID)
	assert.Equal(t, 0, caps[1].Remaining)
	assert.Equal(t, 0, caps[1].FillPercent)
}

func TestCapacity_EmptyCatalog(t *testing.T) {
	f := newFixture(t)
	caps, err := f.svc.Capacity(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, caps)
	assert.Empty(t, caps)
}
