package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/booking-scheduler/internal/application"
	"github.com/example/booking-scheduler/internal/booking"
	"github.com/example/booking-scheduler/internal/scheduler"
)

// MemoryStore is an in-memory application.BookingStore and dispatch store
// used by service tests and by anything that needs storage without a
// database. Writes are guarded by a mutex; the series batch write is
// all-or-nothing like the real store.
type MemoryStore struct {
	mu        sync.RWMutex
	services  map[string]application.Service
	series    map[string]application.Series
	bookings  map[string]application.Booking
	reminders map[string]application.Reminder

	// CreateSeriesErr, when set, fails the batch write before anything is
	// stored.
	CreateSeriesErr error
	// UpdateStatusErr, when set, fails booking status updates.
	UpdateStatusErr error
	// OverlapErr, when set, fails overlap queries.
	OverlapErr error

	// CreateSeriesCalls counts batch write attempts.
	CreateSeriesCalls int
	// OverlapQueries records the occurrence windows the store was asked about.
	OverlapQueries []scheduler.Interval
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		services:  make(map[string]application.Service),
		series:    make(map[string]application.Series),
		bookings:  make(map[string]application.Booking),
		reminders: make(map[string]application.Reminder),
	}
}

// AddService seeds a service catalog entry.
func (m *MemoryStore) AddService(service application.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[service.ID] = service
}

// AddBooking seeds a booking.
func (m *MemoryStore) AddBooking(b application.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
}

// AddSeries seeds a series together with its bookings.
func (m *MemoryStore) AddSeries(series application.Series) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bookings := series.Bookings
	series.Bookings = nil
	m.series[series.ID] = series
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
}

// AddReminder seeds a reminder.
func (m *MemoryStore) AddReminder(r application.Reminder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders[r.ID] = r
}

// GetService implements application.BookingStore.
func (m *MemoryStore) GetService(ctx context.Context, businessID, serviceID string) (application.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	service, ok := m.services[serviceID]
	if !ok || service.BusinessID != businessID {
		return application.Service{}, application.ErrNotFound
	}
	return service, nil
}

// FindOverlappingBookings implements application.BookingStore. Only bookings
// in a cancellable (active) status occupy staff time.
func (m *MemoryStore) FindOverlappingBookings(ctx context.Context, businessID, staffID string, start, end time.Time) ([]application.Booking, error) {
	m.mu.Lock()
	m.OverlapQueries = append(m.OverlapQueries, scheduler.Interval{Start: start, End: end})
	err := m.OverlapErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	window := scheduler.Interval{Start: start, End: end}
	matches := make([]application.Booking, 0)
	for _, b := range m.bookings {
		if b.BusinessID != businessID || b.StaffID == nil || *b.StaffID != staffID {
			continue
		}
		if !b.Status.Cancellable() {
			continue
		}
		if scheduler.Overlaps(window, scheduler.Interval{Start: b.Start, End: b.End}) {
			matches = append(matches, b)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Start.Before(matches[j].Start) })
	return matches, nil
}

// CreateSeries implements application.BookingStore. The batch is stored
// atomically or not at all.
func (m *MemoryStore) CreateSeries(ctx context.Context, series application.Series, bookings []application.Booking, reminders []application.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateSeriesCalls++
	if m.CreateSeriesErr != nil {
		return m.CreateSeriesErr
	}
	series.Bookings = nil
	m.series[series.ID] = series
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
	for _, r := range reminders {
		m.reminders[r.ID] = r
	}
	return nil
}

// GetSeries implements application.BookingStore. Bookings come back ordered
// by start time ascending.
func (m *MemoryStore) GetSeries(ctx context.Context, businessID, seriesID string) (application.Series, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	series, ok := m.series[seriesID]
	if !ok || series.BusinessID != businessID {
		return application.Series{}, application.ErrNotFound
	}
	for _, b := range m.bookings {
		if b.SeriesID != nil && *b.SeriesID == seriesID {
			series.Bookings = append(series.Bookings, b)
		}
	}
	sort.Slice(series.Bookings, func(i, j int) bool {
		return series.Bookings[i].Start.Before(series.Bookings[j].Start)
	})
	return series, nil
}

// UpdateBookingStatus implements application.BookingStore.
func (m *MemoryStore) UpdateBookingStatus(ctx context.Context, bookingID string, status booking.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	b, ok := m.bookings[bookingID]
	if !ok {
		return application.ErrNotFound
	}
	b.Status = status
	m.bookings[bookingID] = b
	return nil
}

// CancelPendingReminders implements application.BookingStore.
func (m *MemoryStore) CancelPendingReminders(ctx context.Context, bookingID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := 0
	for id, r := range m.reminders {
		if r.BookingID == bookingID && r.Status == booking.ReminderPending {
			r.Status = booking.ReminderCancelled
			m.reminders[id] = r
			changed++
		}
	}
	return changed, nil
}

// ListDueReminders implements the dispatcher store.
func (m *MemoryStore) ListDueReminders(ctx context.Context, reference time.Time) ([]application.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	due := make([]application.Reminder, 0)
	for _, r := range m.reminders {
		if r.Status == booking.ReminderPending && !r.ScheduledAt.After(reference) {
			due = append(due, r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	return due, nil
}

// GetBooking implements the dispatcher store.
func (m *MemoryStore) GetBooking(ctx context.Context, bookingID string) (application.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return application.Booking{}, application.ErrNotFound
	}
	return b, nil
}

// MarkReminderSent implements the dispatcher store.
func (m *MemoryStore) MarkReminderSent(ctx context.Context, reminderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[reminderID]
	if !ok {
		return application.ErrNotFound
	}
	r.Status = booking.ReminderSent
	m.reminders[reminderID] = r
	return nil
}

// BookingByID returns a stored booking for assertions.
func (m *MemoryStore) BookingByID(id string) (application.Booking, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	return b, ok
}

// RemindersForBooking returns the booking's reminders for assertions.
func (m *MemoryStore) RemindersForBooking(bookingID string) []application.Reminder {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]application.Reminder, 0)
	for _, r := range m.reminders {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BookingCount reports how many bookings are stored.
func (m *MemoryStore) BookingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// SeriesCount reports how many series are stored.
func (m *MemoryStore) SeriesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.series)
}
