package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrc/retreats/internal/events"
	"github.com/dmrc/retreats/internal/models"
)

func TestApprove_IssuesTicket(t *testing.T) {
	f := newFixture(t)
	r := f.retreat(t, "Youth Fire Weekend", 120)
	b := f.booking(t, r)

	got, code, err := f.svc.Approve(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Regexp(t, ticketRE, code)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.TicketCode)
	assert.Equal(t, code, *got.TicketCode)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(f.clock.Now()))
	assert.False(t, got.Attended)

	require.Len(t, f.pub.evs, 1)
	ev := f.pub.evs[0]
	assert.Equal(t, events.BookingApproved, ev.Type)
	assert.Equal(t, b.ID, ev.BookingID)
	assert.Equal(t, r.ID, ev.RetreatID)
	assert.Equal(t, code, ev.TicketCode)
	assert.Equal(t, "jane@x.com", ev.Email)
}

func TestApprove_Idempotent(t *testing.T) {
	f := newFixture(t)
	r := f.retreat(t, "Youth Fire Weekend", 120)
	first, code, err := f.svc.Approve(context.Background(), f.booking(t, r).ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	again, code2, err := f.svc.Approve(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, code, code2)
	assert.True(t, first.ApprovedAt.Equal(*again.ApprovedAt), "approvedAt must keep its first value")
	assert.Equal(t, []string{events.BookingApproved}, f.pub.types())
}

func TestApprove_NotFound(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Approve(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestApprove_CancelledIsConflict(t *testing.T) {
	f := newFixture(t)
	r := f.retreat(t, "Youth Fire Weekend", 120)
	b := f.booking(t, r)
	_, err := f.svc.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Approve(context.Background(), b.ID)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	require.NotNil(t, cerr.Booking)
	assert.Equal(t, models.StatusCancelled, cerr.Booking.Status)
	assert.Nil(t, f.reload(t, b.ID).TicketCode)
}

// A generated code that another booking already holds is retried.
func TestApprove_RetriesOnCollision(t *testing.T) {
	codes := []string{"DMRC-AAAAAAAA", "DMRC-AAAAAAAA", "DMRC-BBBBBBBB"}
	gen := func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	f := newFixture(t, WithCodeGenerator(gen))
	r := f.retreat(t, "Youth Fire Weekend", 120)

	_, first, err := f.svc.Approve(context.Background(), f.booking(t, r).ID)
	require.NoError(t, err)
	assert.Equal(t, "DMRC-AAAAAAAA", first)

	b2 := f.booking(t, r)
	_, second, err := f.svc.Approve(context.Background(), b2.ID)
	require.NoError(t, err)
	assert.Equal(t, "DMRC-BBBBBBBB", second)
	assert.Empty(t, codes)
}

func TestApprove_CodesExhausted(t *testing.T) {
	gen := func() (string, error) { return "DMRC-SAMESAME", nil }
	f := newFixture(t, WithCodeGenerator(gen))
	r := f.retreat(t, "Youth Fire Weekend", 120)
	f.approved(t, r)

	b := f.booking(t, r)
	_, _, err := f.svc.Approve(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrTicketCodesExhausted)
	var serr *StorageError
	assert.ErrorAs(t, err, &serr)

	stored := f.reload(t, b.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.TicketCode)
}

func TestApprove_GeneratorFailure(t *testing.T) {
	boom := errors.New("entropy unavailable")
	f := newFixture(t, WithCodeGenerator(func() (string, error) { return "", boom }))
	r := f.retreat(t, "Youth Fire Weekend", 120)

	_, _, err := f.svc.Approve(context.Background(), f.booking(t, r).ID)
	assert.ErrorIs(t, err, boom)
}

// Publishing is best effort; a broker failure does not undo the approval.
func TestApprove_PublishFailureIgnored(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	r := f.retreat(t, "Youth Fire Weekend", 120)

	b, code, err := f.svc.Approve(context.Background(), f.booking(t, r).ID)
	require.NoError(t, err)
	assert.Equal(t, code, *f.reload(t, b.ID).TicketCode)
}
