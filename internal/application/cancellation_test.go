package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/booking-scheduler/internal/application"
	"github.com/example/booking-scheduler/internal/booking"
	"github.com/example/booking-scheduler/internal/recurrence"
	"github.com/example/booking-scheduler/internal/testfixtures"
)

func mustTimeOfDay(value string) recurrence.TimeOfDay {
	tod, err := recurrence.ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return tod
}

// seedCancelSeries stores a four-booking series: three confirmed weekly
// Tuesday slots plus one already completed earlier booking.
func seedCancelSeries(store *testfixtures.MemoryStore) application.Series {
	window := func(day int) (time.Time, time.Time) {
		start := time.Date(2026, time.March, day, 14, 0, 0, 0, time.UTC)
		return start, start.Add(time.Hour)
	}
	b1s, b1e := window(3)
	b2s, b2e := window(10)
	b3s, b3e := window(17)
	completedStart := time.Date(2026, time.February, 24, 14, 0, 0, 0, time.UTC)

	series := application.Series{
		ID:            "series-1",
		BusinessID:    "business-1",
		CustomerID:    "customer-1",
		ServiceID:     "service-1",
		TimeOfDay:     mustTimeOfDay("14:00"),
		Weekdays:      []time.Weekday{time.Tuesday},
		IntervalWeeks: 1,
		TotalCount:    4,
		Bookings: []application.Booking{
			testfixtures.NewBookingFixture(
				testfixtures.WithBookingID("b4"),
				testfixtures.WithBookingSeries("series-1"),
				testfixtures.WithBookingStatus(booking.StatusCompleted),
				testfixtures.WithBookingWindow(completedStart, completedStart.Add(time.Hour)),
			),
			testfixtures.NewBookingFixture(
				testfixtures.WithBookingID("b1"),
				testfixtures.WithBookingSeries("series-1"),
				testfixtures.WithBookingWindow(b1s, b1e),
			),
			testfixtures.NewBookingFixture(
				testfixtures.WithBookingID("b2"),
				testfixtures.WithBookingSeries("series-1"),
				testfixtures.WithBookingWindow(b2s, b2e),
			),
			testfixtures.NewBookingFixture(
				testfixtures.WithBookingID("b3"),
				testfixtures.WithBookingSeries("series-1"),
				testfixtures.WithBookingWindow(b3s, b3e),
			),
		},
	}
	store.AddSeries(series)

	for i, bookingID := range []string{"b1", "b2", "b3"} {
		start := []time.Time{b1s, b2s, b3s}[i]
		store.AddReminder(application.Reminder{
			ID:          "reminder-" + bookingID,
			BookingID:   bookingID,
			ScheduledAt: start.Add(-application.ReminderLead),
			Status:      booking.ReminderPending,
		})
	}
	return series
}

func statusOf(t *testing.T, store *testfixtures.MemoryStore, id string) booking.Status {
	t.Helper()
	b, ok := store.BookingByID(id)
	if !ok {
		t.Fatalf("booking %s not found", id)
	}
	return b.Status
}

func TestSeriesService_CancelSeries_Single(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedCancelSeries(store)
	svc, _, calendar := newTestService(t, store)

	count, err := svc.CancelSeries(context.Background(), "business-1", "series-1", application.ScopeSingle{BookingID: "b2"})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("cancelled %d bookings, expected 1", count)
	}

	if got := statusOf(t, store, "b2"); got != booking.StatusCancelled {
		t.Fatalf("b2 status is %s, expected cancelled", got)
	}
	for _, id := range []string{"b1", "b3"} {
		if got := statusOf(t, store, id); got != booking.StatusConfirmed {
			t.Fatalf("%s status is %s, expected untouched confirmed", id, got)
		}
	}
	reminders := store.RemindersForBooking("b2")
	if len(reminders) != 1 || reminders[0].Status != booking.ReminderCancelled {
		t.Fatalf("b2 reminder not cancelled: %+v", reminders)
	}
	if got := store.RemindersForBooking("b3"); got[0].Status != booking.ReminderPending {
		t.Fatalf("b3 reminder status is %s, expected pending", got[0].Status)
	}
	if len(calendar.syncs) != 1 || calendar.syncs[0] != "b2:cancel" {
		t.Fatalf("unexpected calendar syncs %v", calendar.syncs)
	}
}

func TestSeriesService_CancelSeries_Future(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedCancelSeries(store)
	svc, _, _ := newTestService(t, store)

	count, err := svc.CancelSeries(context.Background(), "business-1", "series-1", application.ScopeFuture{BookingID: "b2"})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("cancelled %d bookings, expected 2", count)
	}

	if got := statusOf(t, store, "b1"); got != booking.StatusConfirmed {
		t.Fatalf("b1 status is %s, expected confirmed", got)
	}
	for _, id := range []string{"b2", "b3"} {
		if got := statusOf(t, store, id); got != booking.StatusCancelled {
			t.Fatalf("%s status is %s, expected cancelled", id, got)
		}
	}
	if got := statusOf(t, store, "b4"); got != booking.StatusCompleted {
		t.Fatalf("b4 status is %s, completed bookings must stay completed", got)
	}
}

func TestSeriesService_CancelSeries_All(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedCancelSeries(store)
	svc, _, _ := newTestService(t, store)

	count, err := svc.CancelSeries(context.Background(), "business-1", "series-1", application.ScopeAll{})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	// The completed booking is skipped silently.
	if count != 3 {
		t.Fatalf("cancelled %d bookings, expected 3", count)
	}

	for _, id := range []string{"b1", "b2", "b3"} {
		if got := statusOf(t, store, id); got != booking.StatusCancelled {
			t.Fatalf("%s status is %s, expected cancelled", id, got)
		}
	}
	if got := statusOf(t, store, "b4"); got != booking.StatusCompleted {
		t.Fatalf("b4 status is %s, expected completed", got)
	}
}

func TestSeriesService_CancelSeries_AllSkipsEveryTerminalStatus(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	start := time.Date(2026, time.March, 3, 14, 0, 0, 0, time.UTC)
	series := application.Series{
		ID:         "series-1",
		BusinessID: "business-1",
		CustomerID: "customer-1",
		ServiceID:  "service-1",
		Bookings: []application.Booking{
			testfixtures.NewBookingFixture(
				testfixtures.WithBookingID("done"),
				testfixtures.WithBookingSeries("series-1"),
				testfixtures.WithBookingStatus(booking.StatusCompleted),
				testfixtures.WithBookingWindow(start, start.Add(time.Hour)),
			),
			testfixtures.NewBookingFixture(
				testfixtures.WithBookingID("gone"),
				testfixtures.WithBookingSeries("series-1"),
				testfixtures.WithBookingStatus(booking.StatusCancelled),
				testfixtures.WithBookingWindow(start.Add(24*time.Hour), start.Add(25*time.Hour)),
			),
			testfixtures.NewBookingFixture(
				testfixtures.WithBookingID("absent"),
				testfixtures.WithBookingSeries("series-1"),
				testfixtures.WithBookingStatus(booking.StatusNoShow),
				testfixtures.WithBookingWindow(start.Add(48*time.Hour), start.Add(49*time.Hour)),
			),
		},
	}
	store.AddSeries(series)
	svc, _, _ := newTestService(t, store)

	count, err := svc.CancelSeries(context.Background(), "business-1", "series-1", application.ScopeAll{})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("cancelled %d bookings, expected 0 for an all-terminal series", count)
	}
	if got := statusOf(t, store, "gone"); got != booking.StatusCancelled {
		t.Fatalf("already cancelled booking changed to %s", got)
	}
}

func TestSeriesService_CancelSeries_SingleUnknownBookingIsNoop(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedCancelSeries(store)
	svc, _, _ := newTestService(t, store)

	count, err := svc.CancelSeries(context.Background(), "business-1", "series-1", application.ScopeSingle{BookingID: "not-in-series"})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("cancelled %d bookings, expected 0", count)
	}
}

func TestSeriesService_CancelSeries_ScopeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		scope application.CancelScope
	}{
		{name: "single without booking id", scope: application.ScopeSingle{}},
		{name: "future without booking id", scope: application.ScopeFuture{}},
		{name: "future with foreign booking id", scope: application.ScopeFuture{BookingID: "not-in-series"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := testfixtures.NewMemoryStore()
			seedCancelSeries(store)
			svc, _, _ := newTestService(t, store)

			_, err := svc.CancelSeries(context.Background(), "business-1", "series-1", tc.scope)
			var vErr *application.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors["booking_id"]; !ok {
				t.Fatalf("expected booking_id error, got %v", vErr.FieldErrors)
			}
			if got := statusOf(t, store, "b1"); got != booking.StatusConfirmed {
				t.Fatalf("b1 status changed to %s on a rejected request", got)
			}
		})
	}
}

func TestSeriesService_CancelSeries_UnknownSeries(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	svc, _, _ := newTestService(t, store)

	_, err := svc.CancelSeries(context.Background(), "business-1", "missing", application.ScopeAll{})
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeriesService_CancelSeries_ScopedToBusiness(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedCancelSeries(store)
	svc, _, _ := newTestService(t, store)

	_, err := svc.CancelSeries(context.Background(), "other-business", "series-1", application.ScopeAll{})
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign business, got %v", err)
	}
	if got := statusOf(t, store, "b1"); got != booking.StatusConfirmed {
		t.Fatalf("b1 status changed to %s across businesses", got)
	}
}

func TestSeriesService_CancelSeries_StorageFailureStopsEarly(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedCancelSeries(store)
	store.UpdateStatusErr = errors.New("write failed")
	svc, _, _ := newTestService(t, store)

	count, err := svc.CancelSeries(context.Background(), "business-1", "series-1", application.ScopeAll{})
	if err == nil {
		t.Fatal("expected storage error to propagate")
	}
	if count != 0 {
		t.Fatalf("reported %d cancellations despite the failure", count)
	}
}

func TestSeriesService_CancelSeries_CalendarFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedCancelSeries(store)
	notifications := &notificationRecorder{}
	calendar := &calendarRecorder{err: errors.New("calendar down")}
	ids := testfixtures.NewIDGenerator("id")
	clock := testfixtures.NewClock(time.Time{})
	svc := application.NewSeriesService(store, notifications, calendar, ids.NextFunc(), clock.NowFunc())

	count, err := svc.CancelSeries(context.Background(), "business-1", "series-1", application.ScopeAll{})
	if err != nil {
		t.Fatalf("calendar failure must not fail the call: %v", err)
	}
	if count != 3 {
		t.Fatalf("cancelled %d bookings, expected 3", count)
	}
}
