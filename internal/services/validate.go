package services

import (
	"net/mail"
	"strings"

	"github.com/dmrc/retreats/internal/models"
)

const minPhoneLen = 5

// ContactForm is the attendee part of a booking submission.
type ContactForm struct {
	FullName      string                `json:"fullName"`
	Email         string                `json:"email"`
	Phone         string                `json:"phone"`
	WhatsApp      string                `json:"whatsapp"`
	FamilyMembers []models.FamilyMember `json:"familyMembers"`
}

// BookingInput is a booking submission as received from the public site.
type BookingInput struct {
	RetreatID     uint                 `json:"retreatId"`
	RetreatTitle  string               `json:"retreatTitle"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Note          string               `json:"note"`
	Form          *ContactForm         `json:"form"`
}

// NormEmail lowercases and validates a bare address (no display name).
func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return e, false
	}
	return e, true
}

// normalize trims every free-text field and checks the submission.
// It reports the first problem found.
func (in *BookingInput) normalize() error {
	in.RetreatTitle = strings.TrimSpace(in.RetreatTitle)
	in.Note = strings.TrimSpace(in.Note)

	if in.RetreatID == 0 {
		return required("retreatId")
	}
	if in.RetreatTitle == "" {
		return required("retreatTitle")
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = models.PaymentPending
	} else if !in.PaymentStatus.Valid() {
		return invalid("paymentStatus", "must be one of pending, paid, refunded, waived")
	}
	if in.Form == nil {
		return required("form")
	}

	f := in.Form
	f.FullName = strings.TrimSpace(f.FullName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.WhatsApp = strings.TrimSpace(f.WhatsApp)

	if f.FullName == "" {
		return required("form.fullName")
	}
	if strings.TrimSpace(f.Email) == "" {
		return required("form.email")
	}
	email, ok := NormEmail(f.Email)
	if !ok {
		return invalid("form.email", "is not a valid email address")
	}
	f.Email = email
	if f.Phone == "" {
		return required("form.phone")
	}
	if len(f.Phone) < minPhoneLen {
		return invalid("form.phone", "must be at least 5 characters")
	}

	for i := range f.FamilyMembers {
		m := &f.FamilyMembers[i]
		m.Name = strings.TrimSpace(m.Name)
		m.Relationship = strings.TrimSpace(m.Relationship)
		m.Age = models.Age(strings.TrimSpace(string(m.Age)))
	}
	return nil
}
