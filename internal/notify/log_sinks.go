// Package notify ships log-only reference implementations of the delivery
// sinks. Real delivery (email, SMS, calendar APIs) lives outside this module;
// these implementations make the wiring runnable and observable.
package notify

import (
	"context"
	"log/slog"

	"github.com/example/booking-scheduler/internal/application"
)

// LogNotificationSink records notification sends on a logger.
type LogNotificationSink struct {
	logger *slog.Logger
}

// NewLogNotificationSink constructs a sink writing to the given logger.
func NewLogNotificationSink(logger *slog.Logger) *LogNotificationSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotificationSink{logger: logger}
}

// SendBookingConfirmation logs a confirmation send.
func (s *LogNotificationSink) SendBookingConfirmation(ctx context.Context, b application.Booking) error {
	s.logger.InfoContext(ctx, "booking confirmation",
		"booking_id", b.ID,
		"customer_id", b.CustomerID,
		"start", b.Start,
	)
	return nil
}

// SendBookingReminder logs a reminder send.
func (s *LogNotificationSink) SendBookingReminder(ctx context.Context, b application.Booking, r application.Reminder) error {
	s.logger.InfoContext(ctx, "booking reminder",
		"booking_id", b.ID,
		"reminder_id", r.ID,
		"start", b.Start,
	)
	return nil
}

// LogCalendarSyncSink records calendar sync requests on a logger.
type LogCalendarSyncSink struct {
	logger *slog.Logger
}

// NewLogCalendarSyncSink constructs a sink writing to the given logger.
func NewLogCalendarSyncSink(logger *slog.Logger) *LogCalendarSyncSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogCalendarSyncSink{logger: logger}
}

// SyncBooking logs a calendar sync request.
func (s *LogCalendarSyncSink) SyncBooking(ctx context.Context, b application.Booking, action application.CalendarAction) error {
	s.logger.InfoContext(ctx, "calendar sync",
		"booking_id", b.ID,
		"action", string(action),
		"start", b.Start,
	)
	return nil
}
