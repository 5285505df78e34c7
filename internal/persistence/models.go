package persistence

import (
	"time"

	"github.com/example/booking-scheduler/internal/booking"
)

// Service is the read-only slice of a service catalog entry the scheduler
// needs: its owning business and its duration.
type Service struct {
	ID           string
	BusinessID   string
	Name         string
	DurationMins int
	PriceCents   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecurringSeries groups the bookings generated from one recurrence rule.
// A series is written once, together with its first batch of bookings, and
// only read afterwards.
type RecurringSeries struct {
	ID            string
	BusinessID    string
	CustomerID    string
	ServiceID     string
	StaffID       *string
	TimeOfDay     string
	Weekdays      []time.Weekday
	IntervalWeeks int
	TotalCount    int
	EndsAt        *time.Time
	Notes         *string
	CreatedAt     time.Time
}

// Booking is a single appointment, optionally belonging to a series.
type Booking struct {
	ID         string
	SeriesID   *string
	BusinessID string
	CustomerID string
	ServiceID  string
	StaffID    *string
	Start      time.Time
	End        time.Time
	Status     booking.Status
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reminder is a pending notification scheduled ahead of a booking's start.
type Reminder struct {
	ID          string
	BookingID   string
	ScheduledAt time.Time
	Status      booking.ReminderStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
