package cli

import (
	"context"
	"time"

	"github.com/example/booking-scheduler/internal/application"
	"github.com/example/booking-scheduler/internal/booking"
	"github.com/example/booking-scheduler/internal/persistence"
	"github.com/example/booking-scheduler/internal/persistence/sqlite"
	"github.com/example/booking-scheduler/internal/recurrence"
)

// storeAdapter bridges the application-facing store interfaces onto the
// SQLite repositories.
type storeAdapter struct {
	services  *sqlite.ServiceRepository
	series    *sqlite.SeriesRepository
	bookings  *sqlite.BookingRepository
	reminders *sqlite.ReminderRepository
	now       func() time.Time
}

func newStoreAdapter(pool *sqlite.ConnectionPool, now func() time.Time) *storeAdapter {
	if now == nil {
		now = time.Now
	}
	return &storeAdapter{
		services:  sqlite.NewServiceRepository(pool),
		series:    sqlite.NewSeriesRepository(pool),
		bookings:  sqlite.NewBookingRepository(pool),
		reminders: sqlite.NewReminderRepository(pool),
		now:       now,
	}
}

func (a *storeAdapter) GetService(ctx context.Context, businessID, serviceID string) (application.Service, error) {
	service, err := a.services.GetService(ctx, businessID, serviceID)
	if err != nil {
		return application.Service{}, err
	}
	return application.Service{
		ID:           service.ID,
		BusinessID:   service.BusinessID,
		Name:         service.Name,
		DurationMins: service.DurationMins,
	}, nil
}

func (a *storeAdapter) FindOverlappingBookings(ctx context.Context, businessID, staffID string, start, end time.Time) ([]application.Booking, error) {
	rows, err := a.bookings.ListOverlapping(ctx, businessID, staffID, start, end, booking.CancellableStatuses())
	if err != nil {
		return nil, err
	}
	out := make([]application.Booking, len(rows))
	for i, row := range rows {
		out[i] = toApplicationBooking(row)
	}
	return out, nil
}

func (a *storeAdapter) CreateSeries(ctx context.Context, series application.Series, bookings []application.Booking, reminders []application.Reminder) error {
	now := a.now()
	storedSeries := persistence.RecurringSeries{
		ID:            series.ID,
		BusinessID:    series.BusinessID,
		CustomerID:    series.CustomerID,
		ServiceID:     series.ServiceID,
		StaffID:       series.StaffID,
		TimeOfDay:     series.TimeOfDay.String(),
		Weekdays:      series.Weekdays,
		IntervalWeeks: series.IntervalWeeks,
		TotalCount:    series.TotalCount,
		EndsAt:        series.EndsAt,
		Notes:         series.Notes,
		CreatedAt:     series.CreatedAt,
	}

	storedBookings := make([]persistence.Booking, len(bookings))
	for i, b := range bookings {
		storedBookings[i] = persistence.Booking{
			ID:         b.ID,
			SeriesID:   b.SeriesID,
			BusinessID: b.BusinessID,
			CustomerID: b.CustomerID,
			ServiceID:  b.ServiceID,
			StaffID:    b.StaffID,
			Start:      b.Start,
			End:        b.End,
			Status:     b.Status,
			Notes:      b.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	storedReminders := make([]persistence.Reminder, len(reminders))
	for i, r := range reminders {
		storedReminders[i] = persistence.Reminder{
			ID:          r.ID,
			BookingID:   r.BookingID,
			ScheduledAt: r.ScheduledAt,
			Status:      r.Status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return a.series.CreateSeriesBatch(ctx, storedSeries, storedBookings, storedReminders)
}

func (a *storeAdapter) GetSeries(ctx context.Context, businessID, seriesID string) (application.Series, error) {
	stored, err := a.series.GetSeries(ctx, businessID, seriesID)
	if err != nil {
		return application.Series{}, err
	}

	timeOfDay, err := recurrence.ParseTimeOfDay(stored.TimeOfDay)
	if err != nil {
		return application.Series{}, err
	}

	series := application.Series{
		ID:            stored.ID,
		BusinessID:    stored.BusinessID,
		CustomerID:    stored.CustomerID,
		ServiceID:     stored.ServiceID,
		StaffID:       stored.StaffID,
		TimeOfDay:     timeOfDay,
		Weekdays:      stored.Weekdays,
		IntervalWeeks: stored.IntervalWeeks,
		TotalCount:    stored.TotalCount,
		EndsAt:        stored.EndsAt,
		Notes:         stored.Notes,
		CreatedAt:     stored.CreatedAt,
	}

	rows, err := a.series.ListSeriesBookings(ctx, seriesID)
	if err != nil {
		return application.Series{}, err
	}
	series.Bookings = make([]application.Booking, len(rows))
	for i, row := range rows {
		series.Bookings[i] = toApplicationBooking(row)
	}
	return series, nil
}

func (a *storeAdapter) UpdateBookingStatus(ctx context.Context, bookingID string, status booking.Status) error {
	return a.bookings.UpdateBookingStatus(ctx, bookingID, status, a.now())
}

func (a *storeAdapter) CancelPendingReminders(ctx context.Context, bookingID string) (int, error) {
	return a.reminders.CancelPendingForBooking(ctx, bookingID, a.now())
}

func (a *storeAdapter) ListDueReminders(ctx context.Context, reference time.Time) ([]application.Reminder, error) {
	rows, err := a.reminders.ListDue(ctx, reference)
	if err != nil {
		return nil, err
	}
	out := make([]application.Reminder, len(rows))
	for i, row := range rows {
		out[i] = application.Reminder{
			ID:          row.ID,
			BookingID:   row.BookingID,
			ScheduledAt: row.ScheduledAt,
			Status:      row.Status,
		}
	}
	return out, nil
}

func (a *storeAdapter) GetBooking(ctx context.Context, bookingID string) (application.Booking, error) {
	row, err := a.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(row), nil
}

func (a *storeAdapter) MarkReminderSent(ctx context.Context, reminderID string) error {
	return a.reminders.MarkSent(ctx, reminderID, a.now())
}

func toApplicationBooking(b persistence.Booking) application.Booking {
	return application.Booking{
		ID:         b.ID,
		SeriesID:   b.SeriesID,
		BusinessID: b.BusinessID,
		CustomerID: b.CustomerID,
		ServiceID:  b.ServiceID,
		StaffID:    b.StaffID,
		Start:      b.Start,
		End:        b.End,
		Status:     b.Status,
		Notes:      b.Notes,
	}
}
