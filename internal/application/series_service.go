package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/booking-scheduler/internal/booking"
	"github.com/example/booking-scheduler/internal/persistence"
	"github.com/example/booking-scheduler/internal/recurrence"
	"github.com/example/booking-scheduler/internal/scheduler"
)

// ReminderLead is how far ahead of a booking's start its reminder is
// scheduled. Reminders whose instant is already in the past at creation time
// are not created at all.
const ReminderLead = 24 * time.Hour

// BookingStore captures the persistence interactions needed by the series
// service.
type BookingStore interface {
	GetService(ctx context.Context, businessID, serviceID string) (Service, error)
	// FindOverlappingBookings returns the business+staff bookings in a
	// cancellable (active) status whose interval intersects [start, end).
	FindOverlappingBookings(ctx context.Context, businessID, staffID string, start, end time.Time) ([]Booking, error)
	// CreateSeries persists the series, its bookings, and its reminders
	// atomically. No partial batch is ever observable.
	CreateSeries(ctx context.Context, series Series, bookings []Booking, reminders []Reminder) error
	// GetSeries returns the series with its bookings ordered by start time
	// ascending.
	GetSeries(ctx context.Context, businessID, seriesID string) (Series, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status booking.Status) error
	// CancelPendingReminders flips the booking's pending reminders to
	// cancelled and reports how many rows changed.
	CancelPendingReminders(ctx context.Context, bookingID string) (int, error)
}

// NotificationSink delivers customer-facing messages. Calls are best-effort:
// the series service logs failures and moves on.
type NotificationSink interface {
	SendBookingConfirmation(ctx context.Context, b Booking) error
	SendBookingReminder(ctx context.Context, b Booking, r Reminder) error
}

// CalendarSyncSink mirrors bookings into an external calendar. Calls are
// best-effort in the same way.
type CalendarSyncSink interface {
	SyncBooking(ctx context.Context, b Booking, action CalendarAction) error
}

// SeriesService orchestrates recurrence expansion, conflict detection, and
// the atomic series write, and resolves cancellation scopes.
type SeriesService struct {
	store         BookingStore
	notifications NotificationSink
	calendar      CalendarSyncSink
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewSeriesService wires dependencies for series operations.
func NewSeriesService(store BookingStore, notifications NotificationSink, calendar CalendarSyncSink, idGenerator func() string, now func() time.Time) *SeriesService {
	return NewSeriesServiceWithLogger(store, notifications, calendar, idGenerator, now, nil)
}

// NewSeriesServiceWithLogger constructs a series service with a specified logger.
func NewSeriesServiceWithLogger(store BookingStore, notifications NotificationSink, calendar CalendarSyncSink, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SeriesService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SeriesService{
		store:         store,
		notifications: notifications,
		calendar:      calendar,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *SeriesService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SeriesService", operation, attrs...)
}

// CreateSeries validates the request, expands the recurrence rule, verifies
// the staff member is free across every occurrence, and persists the series
// with its bookings and reminders in one transaction. Confirmation and
// calendar sync run after commit and never fail the call.
func (s *SeriesService) CreateSeries(ctx context.Context, params CreateSeriesParams) (series Series, err error) {
	if s == nil {
		return Series{}, fmt.Errorf("SeriesService is nil")
	}
	if s.store == nil {
		return Series{}, fmt.Errorf("booking store not configured")
	}

	input := params.Input
	logger := s.loggerWith(ctx, "CreateSeries",
		"business_id", params.BusinessID,
		"customer_id", input.CustomerID,
		"service_id", input.ServiceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create series", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("series_id", series.ID, "booking_count", series.TotalCount).InfoContext(ctx, "series created")
	}()

	vErr := &ValidationError{}
	validateSeriesCore(params.BusinessID, input, vErr)
	if vErr.HasErrors() {
		return Series{}, vErr
	}

	service, err := s.store.GetService(ctx, params.BusinessID, input.ServiceID)
	if err != nil {
		if isNotFoundError(err) {
			vErr.add("service_id", "service does not exist for this business")
			return Series{}, vErr
		}
		return Series{}, mapStoreError(err)
	}

	now := s.now()
	if !input.StartDate.After(now) {
		vErr.add("start_date", "start date must be in the future")
		return Series{}, vErr
	}

	occurrences, err := recurrence.Expand(recurrence.Rule{
		Start:         input.StartDate,
		TimeOfDay:     input.TimeOfDay,
		Weekdays:      input.Weekdays,
		IntervalWeeks: input.IntervalWeeks,
		Count:         input.TotalCount,
		Until:         input.EndsAt,
	})
	if err != nil {
		return Series{}, mapRecurrenceError(err)
	}
	if len(occurrences) == 0 {
		vErr.add("schedule", "recurrence rule produces no occurrences")
		return Series{}, vErr
	}

	duration := time.Duration(service.DurationMins) * time.Minute
	if input.StaffID != nil {
		if cErr := s.checkStaffConflicts(ctx, params.BusinessID, *input.StaffID, occurrences, duration); cErr != nil {
			return Series{}, cErr
		}
	}

	series = Series{
		ID:            s.idGenerator(),
		BusinessID:    params.BusinessID,
		CustomerID:    input.CustomerID,
		ServiceID:     input.ServiceID,
		StaffID:       input.StaffID,
		TimeOfDay:     input.TimeOfDay,
		Weekdays:      input.Weekdays,
		IntervalWeeks: input.IntervalWeeks,
		TotalCount:    len(occurrences),
		EndsAt:        input.EndsAt,
		Notes:         input.Notes,
		CreatedAt:     now,
	}

	bookings := make([]Booking, 0, len(occurrences))
	reminders := make([]Reminder, 0, len(occurrences))
	for _, start := range occurrences {
		b := Booking{
			ID:         s.idGenerator(),
			SeriesID:   &series.ID,
			BusinessID: params.BusinessID,
			CustomerID: input.CustomerID,
			ServiceID:  input.ServiceID,
			StaffID:    input.StaffID,
			Start:      start,
			End:        start.Add(duration),
			Status:     booking.StatusConfirmed,
			Notes:      input.Notes,
		}
		bookings = append(bookings, b)

		remindAt := start.Add(-ReminderLead)
		if remindAt.After(now) {
			reminders = append(reminders, Reminder{
				ID:          s.idGenerator(),
				BookingID:   b.ID,
				ScheduledAt: remindAt,
				Status:      booking.ReminderPending,
			})
		}
	}

	if err := s.store.CreateSeries(ctx, series, bookings, reminders); err != nil {
		return Series{}, mapStoreError(err)
	}
	series.Bookings = bookings

	s.dispatchPostCommit(ctx, logger, series.ID, bookings)

	return series, nil
}

// GetSeries returns the series with its bookings ordered by start time
// ascending.
func (s *SeriesService) GetSeries(ctx context.Context, businessID, seriesID string) (Series, error) {
	if s == nil {
		return Series{}, fmt.Errorf("SeriesService is nil")
	}
	if s.store == nil {
		return Series{}, fmt.Errorf("booking store not configured")
	}

	series, err := s.store.GetSeries(ctx, businessID, seriesID)
	if err != nil {
		return Series{}, mapStoreError(err)
	}
	sort.SliceStable(series.Bookings, func(i, j int) bool {
		return series.Bookings[i].Start.Before(series.Bookings[j].Start)
	})
	return series, nil
}

// CancelSeries resolves the scope against the series' bookings and cancels
// the resulting set one booking at a time. Bookings already in a terminal
// status are skipped silently. The returned count covers only bookings that
// actually transitioned.
func (s *SeriesService) CancelSeries(ctx context.Context, businessID, seriesID string, scope CancelScope) (cancelled int, err error) {
	if s == nil {
		return 0, fmt.Errorf("SeriesService is nil")
	}
	if s.store == nil {
		return 0, fmt.Errorf("booking store not configured")
	}

	logger := s.loggerWith(ctx, "CancelSeries",
		"business_id", businessID,
		"series_id", seriesID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel series", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("cancelled_count", cancelled).InfoContext(ctx, "series cancellation applied")
	}()

	series, err := s.store.GetSeries(ctx, businessID, seriesID)
	if err != nil {
		return 0, mapStoreError(err)
	}

	targets, err := resolveCancelScope(series, scope)
	if err != nil {
		return 0, err
	}

	for _, b := range targets {
		if err := s.store.UpdateBookingStatus(ctx, b.ID, booking.StatusCancelled); err != nil {
			return cancelled, mapStoreError(err)
		}
		if _, err := s.store.CancelPendingReminders(ctx, b.ID); err != nil {
			return cancelled, mapStoreError(err)
		}
		if s.calendar != nil {
			if syncErr := s.calendar.SyncBooking(ctx, b, CalendarActionCancel); syncErr != nil {
				logger.WarnContext(ctx, "calendar sync delete failed", "booking_id", b.ID, "error", syncErr)
			}
		}
		cancelled++
	}

	return cancelled, nil
}

// checkStaffConflicts walks the occurrences in chronological order and stops
// at the first one the staff member is already booked for. The ordering makes
// the reported conflict the earliest one temporally.
func (s *SeriesService) checkStaffConflicts(ctx context.Context, businessID, staffID string, occurrences []time.Time, duration time.Duration) error {
	for _, start := range occurrences {
		end := start.Add(duration)
		existing, err := s.store.FindOverlappingBookings(ctx, businessID, staffID, start, end)
		if err != nil {
			return mapStoreError(err)
		}
		if len(existing) == 0 {
			continue
		}

		busy := make([]scheduler.Interval, len(existing))
		ids := make([]string, len(existing))
		for i, b := range existing {
			busy[i] = scheduler.Interval{Start: b.Start, End: b.End}
			ids[i] = b.ID
		}
		candidate := []scheduler.Interval{{Start: start, End: end}}
		if conflict := scheduler.FirstConflict(staffID, candidate, busy, ids); conflict != nil {
			return &ConflictError{
				StaffID:         conflict.StaffID,
				OccurrenceStart: conflict.OccurrenceStart,
				OccurrenceEnd:   conflict.OccurrenceEnd,
				WithBookingID:   conflict.WithBookingID,
			}
		}
	}
	return nil
}

// dispatchPostCommit runs the per-booking side effects after the transaction
// committed. Failures are logged with correlating ids and never propagate.
func (s *SeriesService) dispatchPostCommit(ctx context.Context, logger *slog.Logger, seriesID string, bookings []Booking) {
	for _, b := range bookings {
		if s.notifications != nil {
			if err := s.notifications.SendBookingConfirmation(ctx, b); err != nil {
				logger.WarnContext(ctx, "booking confirmation failed", "series_id", seriesID, "booking_id", b.ID, "error", err)
			}
		}
		if s.calendar != nil {
			if err := s.calendar.SyncBooking(ctx, b, CalendarActionCreate); err != nil {
				logger.WarnContext(ctx, "calendar sync create failed", "series_id", seriesID, "booking_id", b.ID, "error", err)
			}
		}
	}
}

// resolveCancelScope computes the cancellable set for the scope. Terminal
// bookings never enter the set.
func resolveCancelScope(series Series, scope CancelScope) ([]Booking, error) {
	ordered := make([]Booking, len(series.Bookings))
	copy(ordered, series.Bookings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	switch sc := scope.(type) {
	case ScopeSingle:
		if sc.BookingID == "" {
			return nil, scopeValidationError("booking_id", "booking id is required for single cancellation")
		}
		for _, b := range ordered {
			if b.ID == sc.BookingID && b.Status.Cancellable() {
				return []Booking{b}, nil
			}
		}
		return nil, nil
	case ScopeFuture:
		if sc.BookingID == "" {
			return nil, scopeValidationError("booking_id", "booking id is required for future cancellation")
		}
		var reference *Booking
		for i := range ordered {
			if ordered[i].ID == sc.BookingID {
				reference = &ordered[i]
				break
			}
		}
		if reference == nil {
			return nil, scopeValidationError("booking_id", "booking does not belong to this series")
		}
		targets := make([]Booking, 0, len(ordered))
		for _, b := range ordered {
			if !b.Start.Before(reference.Start) && b.Status.Cancellable() {
				targets = append(targets, b)
			}
		}
		return targets, nil
	case ScopeAll:
		targets := make([]Booking, 0, len(ordered))
		for _, b := range ordered {
			if b.Status.Cancellable() {
				targets = append(targets, b)
			}
		}
		return targets, nil
	default:
		return nil, fmt.Errorf("unsupported cancellation scope %T", scope)
	}
}

func scopeValidationError(field, message string) error {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}

func validateSeriesCore(businessID string, input SeriesInput, vErr *ValidationError) {
	if businessID == "" {
		vErr.add("business_id", "business id is required")
	}
	if input.CustomerID == "" {
		vErr.add("customer_id", "customer id is required")
	}
	if input.ServiceID == "" {
		vErr.add("service_id", "service id is required")
	}
	if input.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	if input.StaffID != nil && *input.StaffID == "" {
		vErr.add("staff_id", "staff id must not be empty when provided")
	}
}

func mapRecurrenceError(err error) error {
	vErr := &ValidationError{}
	switch {
	case errors.Is(err, recurrence.ErrInvalidInterval):
		vErr.add("interval_weeks", "interval must be at least one week")
	case errors.Is(err, recurrence.ErrNoWeekdays):
		vErr.add("days_of_week", "at least one weekday is required")
	case errors.Is(err, recurrence.ErrInvalidWeekday):
		vErr.add("days_of_week", "weekdays must be between 0 (Sunday) and 6 (Saturday)")
	case errors.Is(err, recurrence.ErrInvalidTimeOfDay):
		vErr.add("time_of_day", "time of day must be within 00:00..23:59")
	default:
		return err
	}
	return vErr
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) || errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("schedule", "related records are missing or invalid")
		return vErr
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
