package persistence

import (
	"context"
	"time"

	"github.com/example/booking-scheduler/internal/booking"
)

// ServiceRepository exposes read access to the service catalog.
type ServiceRepository interface {
	GetService(ctx context.Context, businessID, serviceID string) (Service, error)
	CreateService(ctx context.Context, service Service) error
}

// SeriesRepository stores recurring series and their booking batches.
type SeriesRepository interface {
	// CreateSeriesBatch persists the series, its bookings, and its reminders
	// in one transaction. A failure leaves no partial rows behind.
	CreateSeriesBatch(ctx context.Context, series RecurringSeries, bookings []Booking, reminders []Reminder) error
	GetSeries(ctx context.Context, businessID, seriesID string) (RecurringSeries, error)
	// ListSeriesBookings returns the series' bookings ordered by start time
	// ascending.
	ListSeriesBookings(ctx context.Context, seriesID string) ([]Booking, error)
}

// BookingRepository stores individual bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	// ListOverlapping returns bookings for the business and staff member in
	// one of the given statuses whose interval intersects [start, end).
	ListOverlapping(ctx context.Context, businessID, staffID string, start, end time.Time, statuses []booking.Status) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status booking.Status, updatedAt time.Time) error
}

// ReminderRepository stores booking reminders.
type ReminderRepository interface {
	// CancelPendingForBooking flips every pending reminder attached to the
	// booking to cancelled and reports how many rows changed.
	CancelPendingForBooking(ctx context.Context, bookingID string, updatedAt time.Time) (int, error)
	// ListDue returns pending reminders scheduled at or before the reference
	// instant, ordered by scheduled time ascending.
	ListDue(ctx context.Context, reference time.Time) ([]Reminder, error)
	MarkSent(ctx context.Context, reminderID string, updatedAt time.Time) error
}
