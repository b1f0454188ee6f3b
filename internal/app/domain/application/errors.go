package application

import (
	"errors"
	"strings"
)

// Sentinel errors surfaced by the signup handlers. Collaborator failures
// (store, issuer, mailer) are never wrapped into these; they propagate as-is.
var (
	// ErrInvalidEmail is returned when a signup email fails format validation.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrLocked is returned when an update payload itself claims to be locked.
	ErrLocked = errors.New("application is locked")

	// ErrNotFound is returned when the targeted application is not in the store.
	ErrNotFound = errors.New("application not found")

	// ErrMissingFields anchors MissingFieldsError for errors.Is checks.
	ErrMissingFields = errors.New("missing required fields")
)

// MissingFieldsError reports which required profile fields were absent from a
// validated update, in the fixed RequiredFields order.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// NewMissingFieldsError builds the error for the given ordered field list.
func NewMissingFieldsError(fields []string) *MissingFieldsError {
	return &MissingFieldsError{Fields: fields}
}

// IsMissingFields reports whether err is a missing-fields validation failure.
func IsMissingFields(err error) bool {
	return errors.Is(err, ErrMissingFields)
}

// IsNotFound reports whether err means the application does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
