package application_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/booking-scheduler/internal/application"
	"github.com/example/booking-scheduler/internal/booking"
	"github.com/example/booking-scheduler/internal/testfixtures"
)

type notificationRecorder struct {
	mu            sync.Mutex
	confirmations []string
	reminders     []string
	err           error
}

func (n *notificationRecorder) SendBookingConfirmation(ctx context.Context, b application.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.confirmations = append(n.confirmations, b.ID)
	return nil
}

func (n *notificationRecorder) SendBookingReminder(ctx context.Context, b application.Booking, r application.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.reminders = append(n.reminders, r.ID)
	return nil
}

type calendarRecorder struct {
	mu    sync.Mutex
	syncs []string
	err   error
}

func (c *calendarRecorder) SyncBooking(ctx context.Context, b application.Booking, action application.CalendarAction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.syncs = append(c.syncs, b.ID+":"+string(action))
	return nil
}

func newTestService(t *testing.T, store *testfixtures.MemoryStore) (*application.SeriesService, *notificationRecorder, *calendarRecorder) {
	t.Helper()
	notifications := &notificationRecorder{}
	calendar := &calendarRecorder{}
	ids := testfixtures.NewIDGenerator("id")
	clock := testfixtures.NewClock(time.Time{})
	svc := application.NewSeriesService(store, notifications, calendar, ids.NextFunc(), clock.NowFunc())
	return svc, notifications, calendar
}

func seedService(store *testfixtures.MemoryStore) application.Service {
	service := testfixtures.NewServiceFixture(
		testfixtures.WithServiceID("service-1"),
		testfixtures.WithServiceDuration(60),
	)
	store.AddService(service)
	return service
}

func baseInput() application.SeriesInput {
	return application.SeriesInput{
		CustomerID: "customer-1",
		ServiceID:  "service-1",
		// 2026-03-03 is a Tuesday; the fixture clock reads 2026-03-01 09:00 UTC.
		StartDate:     time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		TimeOfDay:     mustTimeOfDay("14:00"),
		Weekdays:      []time.Weekday{time.Tuesday},
		IntervalWeeks: 1,
		TotalCount:    4,
	}
}

func TestSeriesService_CreateSeries_PersistsRealizedBatch(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	svc, notifications, calendar := newTestService(t, store)

	series, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      baseInput(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if series.TotalCount != 4 {
		t.Fatalf("total count is %d, expected 4", series.TotalCount)
	}
	if len(series.Bookings) != 4 {
		t.Fatalf("expected 4 bookings, got %d", len(series.Bookings))
	}
	for i, b := range series.Bookings {
		if b.Status != booking.StatusConfirmed {
			t.Fatalf("booking %d has status %s, expected confirmed", i, b.Status)
		}
		if b.End.Sub(b.Start) != time.Hour {
			t.Fatalf("booking %d duration is %s, expected 1h", i, b.End.Sub(b.Start))
		}
		if b.SeriesID == nil || *b.SeriesID != series.ID {
			t.Fatalf("booking %d is not linked to the series", i)
		}
		reminders := store.RemindersForBooking(b.ID)
		if len(reminders) != 1 {
			t.Fatalf("booking %d has %d reminders, expected 1", i, len(reminders))
		}
		if want := b.Start.Add(-application.ReminderLead); !reminders[0].ScheduledAt.Equal(want) {
			t.Fatalf("reminder scheduled at %s, expected %s", reminders[0].ScheduledAt, want)
		}
		if reminders[0].Status != booking.ReminderPending {
			t.Fatalf("reminder status is %s, expected pending", reminders[0].Status)
		}
	}

	if len(notifications.confirmations) != 4 {
		t.Fatalf("expected 4 confirmations, got %d", len(notifications.confirmations))
	}
	if len(calendar.syncs) != 4 {
		t.Fatalf("expected 4 calendar creates, got %d", len(calendar.syncs))
	}
	for _, entry := range calendar.syncs {
		if !strings.HasSuffix(entry, ":create") {
			t.Fatalf("unexpected calendar action in %q", entry)
		}
	}
}

func TestSeriesService_CreateSeries_SkipsPastReminders(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	svc, _, _ := newTestService(t, store)

	// First occurrence lands within the reminder lead window relative to the
	// clock (2026-03-01 09:00), so only the second occurrence earns one.
	input := baseInput()
	input.StartDate = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	input.TimeOfDay = mustTimeOfDay("08:00")
	input.Weekdays = []time.Weekday{time.Monday}
	input.TotalCount = 2

	series, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      input,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if got := store.RemindersForBooking(series.Bookings[0].ID); len(got) != 0 {
		t.Fatalf("first booking should have no reminder, got %d", len(got))
	}
	if got := store.RemindersForBooking(series.Bookings[1].ID); len(got) != 1 {
		t.Fatalf("second booking should have one reminder, got %d", len(got))
	}
}

func TestSeriesService_CreateSeries_RealizedCountBeatsRequested(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	svc, _, _ := newTestService(t, store)

	input := baseInput()
	input.TotalCount = 10
	until := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)
	input.EndsAt = &until

	series, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      input,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Only 03-03 and 03-10 fit under the bound.
	if series.TotalCount != 2 {
		t.Fatalf("total count is %d, expected the realized 2", series.TotalCount)
	}
	if len(series.Bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(series.Bookings))
	}
}

func TestSeriesService_CreateSeries_PastStartDate(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	svc, _, _ := newTestService(t, store)

	input := baseInput()
	input.StartDate = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      input,
	})

	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["start_date"]; !ok {
		t.Fatalf("expected start_date error, got %v", vErr.FieldErrors)
	}
	if len(store.OverlapQueries) != 0 {
		t.Fatal("conflict check ran before start date validation")
	}
	if store.CreateSeriesCalls != 0 {
		t.Fatal("storage write attempted despite validation failure")
	}
}

func TestSeriesService_CreateSeries_UnknownService(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	svc, _, _ := newTestService(t, store)

	_, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      baseInput(),
	})

	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["service_id"]; !ok {
		t.Fatalf("expected service_id error, got %v", vErr.FieldErrors)
	}
}

func TestSeriesService_CreateSeries_ServiceScopedToBusiness(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	store.AddService(testfixtures.NewServiceFixture(
		testfixtures.WithServiceID("service-1"),
		testfixtures.WithServiceBusiness("other-business"),
	))
	svc, _, _ := newTestService(t, store)

	_, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      baseInput(),
	})

	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["service_id"]; !ok {
		t.Fatalf("expected service_id error, got %v", vErr.FieldErrors)
	}
}

func TestSeriesService_CreateSeries_ZeroOccurrences(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	svc, _, _ := newTestService(t, store)

	input := baseInput()
	until := input.StartDate.Add(-24 * time.Hour)
	input.EndsAt = &until

	_, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      input,
	})

	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["schedule"]; !ok {
		t.Fatalf("expected schedule error, got %v", vErr.FieldErrors)
	}
	if store.CreateSeriesCalls != 0 {
		t.Fatal("storage write attempted for empty expansion")
	}
}

func TestSeriesService_CreateSeries_StaffConflictAbortsBeforeWrite(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	// Existing staff booking overlapping the second occurrence (03-10 14:00).
	store.AddBooking(testfixtures.NewBookingFixture(
		testfixtures.WithBookingID("existing-1"),
		testfixtures.WithBookingStaff("staff-1"),
		testfixtures.WithBookingWindow(
			time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC),
			time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC),
		),
	))
	svc, _, _ := newTestService(t, store)

	staffID := "staff-1"
	input := baseInput()
	input.StaffID = &staffID

	_, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      input,
	})

	var cErr *application.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	want := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)
	if !cErr.OccurrenceStart.Equal(want) {
		t.Fatalf("conflict reports %s, expected %s", cErr.OccurrenceStart, want)
	}
	if cErr.WithBookingID != "existing-1" {
		t.Fatalf("conflict reports booking %q, expected existing-1", cErr.WithBookingID)
	}
	if store.CreateSeriesCalls != 0 {
		t.Fatal("storage write attempted despite the conflict")
	}
	if store.SeriesCount() != 0 {
		t.Fatal("a series was persisted despite the conflict")
	}
	// The check stops at the conflicting occurrence: two queries, not four.
	if len(store.OverlapQueries) != 2 {
		t.Fatalf("expected fail-fast after 2 overlap queries, got %d", len(store.OverlapQueries))
	}
}

func TestSeriesService_CreateSeries_TerminalBookingsDoNotConflict(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	store.AddBooking(testfixtures.NewBookingFixture(
		testfixtures.WithBookingStaff("staff-1"),
		testfixtures.WithBookingStatus(booking.StatusCancelled),
		testfixtures.WithBookingWindow(
			time.Date(2026, time.March, 3, 14, 0, 0, 0, time.UTC),
			time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC),
		),
	))
	svc, _, _ := newTestService(t, store)

	staffID := "staff-1"
	input := baseInput()
	input.StaffID = &staffID

	if _, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      input,
	}); err != nil {
		t.Fatalf("cancelled booking should not block the slot: %v", err)
	}
}

func TestSeriesService_CreateSeries_NoStaffSkipsConflictCheck(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	svc, _, _ := newTestService(t, store)

	if _, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      baseInput(),
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(store.OverlapQueries) != 0 {
		t.Fatalf("expected no overlap queries without staff, got %d", len(store.OverlapQueries))
	}
}

func TestSeriesService_CreateSeries_StorageFailureLeavesNothing(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	store.CreateSeriesErr = errors.New("disk full")
	svc, notifications, _ := newTestService(t, store)

	_, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      baseInput(),
	})
	if err == nil {
		t.Fatal("expected storage error")
	}
	if store.BookingCount() != 0 || store.SeriesCount() != 0 {
		t.Fatal("partial state persisted after storage failure")
	}
	if len(notifications.confirmations) != 0 {
		t.Fatal("side effects ran despite storage failure")
	}
}

func TestSeriesService_CreateSeries_SinkFailuresDoNotFailTheCall(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	notifications := &notificationRecorder{err: errors.New("smtp down")}
	calendar := &calendarRecorder{err: errors.New("calendar down")}
	ids := testfixtures.NewIDGenerator("id")
	clock := testfixtures.NewClock(time.Time{})
	svc := application.NewSeriesService(store, notifications, calendar, ids.NextFunc(), clock.NowFunc())

	series, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      baseInput(),
	})
	if err != nil {
		t.Fatalf("sink failures must not fail the call: %v", err)
	}
	if series.TotalCount != 4 {
		t.Fatalf("total count is %d, expected 4", series.TotalCount)
	}
}

func TestSeriesService_GetSeries(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	seedService(store)
	svc, _, _ := newTestService(t, store)

	created, err := svc.CreateSeries(context.Background(), application.CreateSeriesParams{
		BusinessID: "business-1",
		Input:      baseInput(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.GetSeries(context.Background(), "business-1", created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Bookings) != 4 {
		t.Fatalf("expected 4 bookings, got %d", len(got.Bookings))
	}
	for i := 1; i < len(got.Bookings); i++ {
		if got.Bookings[i].Start.Before(got.Bookings[i-1].Start) {
			t.Fatalf("bookings not ordered ascending at %d", i)
		}
	}

	if _, err := svc.GetSeries(context.Background(), "business-1", "missing"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetSeries(context.Background(), "other-business", created.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("series must be scoped to its business, got %v", err)
	}
}
