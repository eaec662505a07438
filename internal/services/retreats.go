package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/dmrc/retreats/internal/models"
)

type RetreatInput struct {
	Slug               string               `json:"slug"`
	Title              string               `json:"title"`
	StartDate          string               `json:"startDate"`
	EndDate            string               `json:"endDate"`
	Schedule           string               `json:"schedule"`
	Location           string               `json:"location"`
	TotalAvailability  int                  `json:"totalAvailability"`
	MaleAvailability   int                  `json:"maleAvailability"`
	FemaleAvailability int                  `json:"femaleAvailability"`
	Status             models.RetreatStatus `json:"status"`
	Price              float64              `json:"price"`
	IsPaid             bool                 `json:"isPaid"`
}

// Slugify lowercases s and joins its alphanumeric runs with '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// CreateRetreat adds a retreat to the catalog. The slug defaults to the
// slugified title and must be unique.
func (s *Service) CreateRetreat(ctx context.Context, in RetreatInput) (*models.Retreat, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, required("title")
	}
	slug := in.Slug
	if strings.TrimSpace(slug) == "" {
		slug = in.Title
	}
	slug = Slugify(slug)
	if slug == "" {
		return nil, invalid("slug", "must contain letters or digits")
	}
	switch {
	case in.TotalAvailability < 0:
		return nil, invalid("totalAvailability", "must not be negative")
	case in.MaleAvailability < 0:
		return nil, invalid("maleAvailability", "must not be negative")
	case in.FemaleAvailability < 0:
		return nil, invalid("femaleAvailability", "must not be negative")
	case in.Price < 0:
		return nil, invalid("price", "must not be negative")
	}
	if in.Status == "" {
		in.Status = models.RetreatOpen
	} else if !in.Status.Valid() {
		return nil, invalid("status", "must be one of Registration Open, Waitlist, Closed")
	}

	r := models.Retreat{
		Slug:               slug,
		Title:              in.Title,
		StartDate:          strings.TrimSpace(in.StartDate),
		EndDate:            strings.TrimSpace(in.EndDate),
		Schedule:           strings.TrimSpace(in.Schedule),
		Location:           strings.TrimSpace(in.Location),
		TotalAvailability:  in.TotalAvailability,
		MaleAvailability:   in.MaleAvailability,
		FemaleAvailability: in.FemaleAvailability,
		Status:             in.Status,
		Price:              in.Price,
		IsPaid:             in.IsPaid,
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, &ConflictError{Reason: "slug " + slug + " is already in use"}
		}
		return nil, storageErr("create retreat", err)
	}
	return &r, nil
}

func (s *Service) GetRetreat(ctx context.Context, id uint) (*models.Retreat, error) {
	return s.findRetreat(ctx, id)
}

func (s *Service) GetRetreatBySlug(ctx context.Context, slug string) (*models.Retreat, error) {
	var r models.Retreat
	if err := s.db.WithContext(ctx).Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRetreatNotFound
		}
		return nil, storageErr("load retreat", err)
	}
	return &r, nil
}

// ListRetreats returns the catalog, optionally filtered by status.
func (s *Service) ListRetreats(ctx context.Context, status models.RetreatStatus) ([]models.Retreat, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "must be one of Registration Open, Waitlist, Closed")
	}
	q := s.db.WithContext(ctx).Order("id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := []models.Retreat{}
	if err := q.Find(&out).Error; err != nil {
		return nil, storageErr("list retreats", err)
	}
	return out, nil
}
