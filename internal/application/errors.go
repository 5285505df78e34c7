package application

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports the earliest occurrence of a requested series that
// would double-book the staff member. It is raised before any write happens.
type ConflictError struct {
	StaffID         string
	OccurrenceStart time.Time
	OccurrenceEnd   time.Time
	WithBookingID   string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("staff %s already has a booking overlapping %s", c.StaffID, c.OccurrenceStart.Format(time.RFC3339))
}
