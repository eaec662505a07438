package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dmrc/retreats/internal/events"
	"github.com/dmrc/retreats/internal/models"
)

// Service owns the booking lifecycle: submission, approval and ticketing,
// check-in, and the attendee roster. Every mutation is a single
// update-by-primary-key against the store.
type Service struct {
	db        *gorm.DB
	publisher events.Publisher
	stats     StatsCounter
	log       *slog.Logger
	now       func() time.Time
	newCode   func() (string, error)
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }
func WithStats(c StatsCounter) Option { return func(s *Service) { s.stats = c } }
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithCodeGenerator replaces NewTicketCode.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newCode = gen }
}

func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:        db,
		publisher: events.Nop{},
		stats:     RecountStats{},
		log:       slog.Default(),
		now:       time.Now,
		newCode:   NewTicketCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time { return s.now().UTC() }

func (s *Service) findBooking(ctx context.Context, id uint) (*models.RetreatBooking, error) {
	var b models.RetreatBooking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, storageErr("load booking", err)
	}
	return &b, nil
}

func (s *Service) findRetreat(ctx context.Context, id uint) (*models.Retreat, error) {
	var r models.Retreat
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRetreatNotFound
		}
		return nil, storageErr("load retreat", err)
	}
	return &r, nil
}

// GetBooking returns a booking by id.
func (s *Service) GetBooking(ctx context.Context, id uint) (*models.RetreatBooking, error) {
	return s.findBooking(ctx, id)
}

// publish is best effort: the state change is already committed.
func (s *Service) publish(ctx context.Context, typ string, b *models.RetreatBooking) {
	ev := events.Event{
		Type:       typ,
		BookingID:  b.ID,
		RetreatID:  b.RetreatID,
		FullName:   b.FullName,
		Email:      b.Email,
		OccurredAt: s.clock(),
	}
	if b.TicketCode != nil {
		ev.TicketCode = *b.TicketCode
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event failed", "type", typ, "booking_id", b.ID, "err", err)
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	le := strings.ToLower(err.Error())
	return strings.Contains(le, "unique constraint") || strings.Contains(le, "duplicate key")
}
