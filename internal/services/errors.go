package services

import (
	"errors"
	"fmt"

	"github.com/dmrc/retreats/internal/models"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrRetreatNotFound = errors.New("retreat not found")
	ErrTicketNotFound  = errors.New("ticket not found")

	// ErrTicketCodesExhausted means every generated code collided.
	ErrTicketCodesExhausted = errors.New("could not allocate a unique ticket code")
)

// Validation error codes.
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeInvalid     = "invalid"
)

// ValidationError reports malformed input. Nothing was written.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Code: CodeRequired, Message: "is required"}
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Code: CodeInvalid, Message: msg}
}

// ConflictError rejects an operation because of the booking's current state.
// Booking holds that state so callers can display it.
type ConflictError struct {
	Reason  string
	Booking *models.RetreatBooking
}

func (e *ConflictError) Error() string { return e.Reason }

// StorageError wraps a persistence failure. Its text is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
