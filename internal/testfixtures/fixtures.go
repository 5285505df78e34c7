package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/booking-scheduler/internal/application"
	"github.com/example/booking-scheduler/internal/booking"
)

var (
	serviceCounter uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It is a Sunday, which makes week-anchoring arithmetic easy to read in
// tests.
func ReferenceTime() time.Time {
	return referenceTime
}

// ServiceOption configures a generated service fixture.
type ServiceOption func(*application.Service)

// NewServiceFixture returns a deterministic service with optional overrides.
func NewServiceFixture(opts ...ServiceOption) application.Service {
	idx := atomic.AddUint64(&serviceCounter, 1)
	service := application.Service{
		ID:           fmt.Sprintf("service-%03d", idx),
		BusinessID:   "business-1",
		Name:         fmt.Sprintf("Service %03d", idx),
		DurationMins: 60,
	}
	for _, opt := range opts {
		opt(&service)
	}
	return service
}

// WithServiceID overrides the generated service id.
func WithServiceID(id string) ServiceOption {
	return func(s *application.Service) { s.ID = id }
}

// WithServiceBusiness overrides the owning business.
func WithServiceBusiness(businessID string) ServiceOption {
	return func(s *application.Service) { s.BusinessID = businessID }
}

// WithServiceDuration overrides the duration in minutes.
func WithServiceDuration(mins int) ServiceOption {
	return func(s *application.Service) { s.DurationMins = mins }
}

// BookingOption configures a generated booking fixture.
type BookingOption func(*application.Booking)

// NewBookingFixture returns a deterministic confirmed booking one hour long,
// with optional overrides.
func NewBookingFixture(opts ...BookingOption) application.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	b := application.Booking{
		ID:         fmt.Sprintf("booking-%03d", idx),
		BusinessID: "business-1",
		CustomerID: "customer-1",
		ServiceID:  "service-1",
		Start:      start,
		End:        start.Add(time.Hour),
		Status:     booking.StatusConfirmed,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// WithBookingID overrides the generated booking id.
func WithBookingID(id string) BookingOption {
	return func(b *application.Booking) { b.ID = id }
}

// WithBookingSeries attaches the booking to a series.
func WithBookingSeries(seriesID string) BookingOption {
	return func(b *application.Booking) { b.SeriesID = &seriesID }
}

// WithBookingStaff assigns a staff member.
func WithBookingStaff(staffID string) BookingOption {
	return func(b *application.Booking) { b.StaffID = &staffID }
}

// WithBookingStatus overrides the status.
func WithBookingStatus(status booking.Status) BookingOption {
	return func(b *application.Booking) { b.Status = status }
}

// WithBookingWindow pins the booking interval.
func WithBookingWindow(start, end time.Time) BookingOption {
	return func(b *application.Booking) {
		b.Start = start
		b.End = end
	}
}
