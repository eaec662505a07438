package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmrc/retreats/internal/db"
	"github.com/dmrc/retreats/internal/events"
	"github.com/dmrc/retreats/internal/models"
)

// openTestDB returns an isolated in-file SQLite database in a temp directory.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_foreign_keys=on"
	gdb, err := db.Open(db.DriverSQLite, dsn)
	require.NoError(t, err)
	return gdb
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 7, 10, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu  sync.Mutex
	evs []events.Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.evs))
	for _, ev := range r.evs {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc   *Service
	db    *gorm.DB
	clock *fakeClock
	pub   *recorder
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{db: openTestDB(t), clock: newFakeClock(), pub: &recorder{}}
	base := []Option{
		WithClock(f.clock.Now),
		WithPublisher(f.pub),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	f.svc = New(f.db, append(base, opts...)...)
	return f
}

func (f *fixture) retreat(t *testing.T, title string, capacity int) *models.Retreat {
	t.Helper()
	r, err := f.svc.CreateRetreat(context.Background(), RetreatInput{
		Title:             title,
		StartDate:         "2026-08-14",
		EndDate:           "2026-08-16",
		Location:          "Naivasha",
		TotalAvailability: capacity,
	})
	require.NoError(t, err)
	return r
}

func validInput(r *models.Retreat) BookingInput {
	return BookingInput{
		RetreatID:    r.ID,
		RetreatTitle: r.Title,
		Form: &ContactForm{
			FullName: "Jane Doe",
			Email:    "jane@x.com",
			Phone:    "0712345678",
		},
	}
}

func (f *fixture) booking(t *testing.T, r *models.Retreat) *models.RetreatBooking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), validInput(r))
	require.NoError(t, err)
	return b
}

func (f *fixture) approved(t *testing.T, r *models.Retreat) (*models.RetreatBooking, string) {
	t.Helper()
	b, code, err := f.svc.Approve(context.Background(), f.booking(t, r).ID)
	require.NoError(t, err)
	return b, code
}

func (f *fixture) reload(t *testing.T, id uint) *models.RetreatBooking {
	t.Helper()
	var b models.RetreatBooking
	require.NoError(t, f.db.First(&b, id).Error)
	return &b
}
