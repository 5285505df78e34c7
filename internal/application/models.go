package application

import (
	"time"

	"github.com/example/booking-scheduler/internal/booking"
	"github.com/example/booking-scheduler/internal/recurrence"
)

// Service is the catalog entry a series is booked against. Only the
// attributes the scheduler reads are modelled; the catalog itself is managed
// elsewhere.
type Service struct {
	ID           string
	BusinessID   string
	Name         string
	DurationMins int
}

// SeriesInput captures caller provided recurring series fields.
type SeriesInput struct {
	CustomerID    string
	ServiceID     string
	StaffID       *string
	StartDate     time.Time
	TimeOfDay     recurrence.TimeOfDay
	Weekdays      []time.Weekday
	IntervalWeeks int
	// TotalCount is the requested occurrence count. The persisted series
	// records the realized count, which the hard cap or the end bound may
	// shrink. Zero means unset.
	TotalCount int
	EndsAt     *time.Time
	Notes      *string
}

// Series represents a persisted recurring series together with its bookings.
type Series struct {
	ID            string
	BusinessID    string
	CustomerID    string
	ServiceID     string
	StaffID       *string
	TimeOfDay     recurrence.TimeOfDay
	Weekdays      []time.Weekday
	IntervalWeeks int
	// TotalCount equals the number of bookings actually created.
	TotalCount int
	EndsAt     *time.Time
	Notes      *string
	CreatedAt  time.Time
	// Bookings is ordered by start time ascending.
	Bookings []Booking
}

// Booking represents a single appointment within (or outside) a series.
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
}

// Reminder is scheduled ahead of a booking's start and delivered out-of-band.
type Reminder struct {
	ID          string
	BookingID   string
	ScheduledAt time.Time
	Status      booking.ReminderStatus
}

// CreateSeriesParams wraps the data required to create a recurring series.
type CreateSeriesParams struct {
	BusinessID string
	Input      SeriesInput
}

// CancelScope selects which bookings of a series a cancellation touches.
// The three variants form a closed set; a scope that requires a booking
// reference carries it structurally.
type CancelScope interface {
	cancelScope()
}

// ScopeSingle cancels one booking of the series.
type ScopeSingle struct {
	BookingID string
}

// ScopeFuture cancels the referenced booking and every later one.
type ScopeFuture struct {
	BookingID string
}

// ScopeAll cancels every remaining booking of the series.
type ScopeAll struct{}

func (ScopeSingle) cancelScope() {}
func (ScopeFuture) cancelScope() {}
func (ScopeAll) cancelScope()    {}

// CalendarAction distinguishes the calendar sync operations a booking can
// trigger.
type CalendarAction string

const (
	// CalendarActionCreate pushes a new booking to the external calendar.
	CalendarActionCreate CalendarAction = "create"
	// CalendarActionCancel removes a cancelled booking from the external calendar.
	CalendarActionCancel CalendarAction = "cancel"
)
