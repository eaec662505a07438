package models

import (
	"time"

	"gorm.io/datatypes"
)

type RetreatStatus string

const (
	RetreatOpen     RetreatStatus = "Registration Open"
	RetreatWaitlist RetreatStatus = "Waitlist"
	RetreatClosed   RetreatStatus = "Closed"
)

func (s RetreatStatus) Valid() bool {
	switch s {
	case RetreatOpen, RetreatWaitlist, RetreatClosed:
		return true
	}
	return false
}

// Retreat is a scheduled event that bookings are made against.
// TotalAvailability is the capacity ceiling; the male/female counts are
// tracked separately and need not add up to it.
type Retreat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Slug      string `gorm:"uniqueIndex;not null" json:"slug"`
	Title     string `gorm:"not null" json:"title"`
	StartDate string `json:"startDate"` // schedule strings as entered by admins
	EndDate   string `json:"endDate"`
	Schedule  string `json:"schedule,omitempty"`
	Location  string `json:"location"`

	TotalAvailability  int `gorm:"not null;default:0" json:"totalAvailability"`
	MaleAvailability   int `gorm:"not null;default:0" json:"maleAvailability"`
	FemaleAvailability int `gorm:"not null;default:0" json:"femaleAvailability"`

	Status RetreatStatus `gorm:"type:varchar(32);not null;default:'Registration Open'" json:"status"`
	Price  float64       `json:"price"`
	IsPaid bool          `json:"isPaid"`
}

type BookingStatus string

const (
	StatusPending     BookingStatus = "pending"
	StatusApproved    BookingStatus = "approved"
	StatusCancelled   BookingStatus = "cancelled"
	StatusRescheduled BookingStatus = "rescheduled"
	StatusAttended    BookingStatus = "attended"
	StatusNoShow      BookingStatus = "no_show"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentWaived   PaymentStatus = "waived"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentWaived:
		return true
	}
	return false
}

// RetreatBooking is one attendee's request to join a retreat.
// RetreatTitle is a snapshot taken at booking time.
type RetreatBooking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RetreatID    uint     `gorm:"not null;index" json:"retreatId"`
	Retreat      *Retreat `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RetreatTitle string   `gorm:"not null" json:"retreatTitle"`

	FullName string `gorm:"not null" json:"fullName"`
	Email    string `gorm:"not null" json:"email"`
	Phone    string `gorm:"not null" json:"phone"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Note     string `json:"note,omitempty"`

	FamilyMembers datatypes.JSONSlice[FamilyMember] `json:"familyMembers"`

	Status        BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"paymentStatus"`
	Attended      bool          `gorm:"not null;default:false" json:"attended"`

	TicketCode *string `gorm:"uniqueIndex" json:"ticketCode"` // nil until approved

	ApprovedAt  *time.Time `json:"approvedAt"`
	CheckedInAt *time.Time `json:"checkedInAt"`
	CancelledAt *time.Time `json:"cancelledAt"`

	RescheduleToRetreatID *uint `json:"rescheduleToRetreatId,omitempty"`
}
