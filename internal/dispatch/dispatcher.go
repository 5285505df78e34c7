// Package dispatch sweeps due booking reminders and hands them to the
// notification sink. Delivery itself stays behind the sink interface; the
// dispatcher only drives the pending -> sent transition.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/booking-scheduler/internal/application"
)

// Store captures the persistence operations the dispatcher needs.
type Store interface {
	// ListDueReminders returns pending reminders scheduled at or before the
	// reference instant, ordered by scheduled time ascending.
	ListDueReminders(ctx context.Context, reference time.Time) ([]application.Reminder, error)
	GetBooking(ctx context.Context, bookingID string) (application.Booking, error)
	MarkReminderSent(ctx context.Context, reminderID string) error
}

// Dispatcher periodically sweeps due reminders.
type Dispatcher struct {
	store         Store
	notifications application.NotificationSink
	now           func() time.Time
	logger        *slog.Logger
}

// New constructs a dispatcher. A nil now falls back to time.Now.
func New(store Store, notifications application.NotificationSink, now func() time.Time, logger *slog.Logger) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{store: store, notifications: notifications, now: now, logger: logger}
}

// Run sweeps on the given interval until the context is cancelled. The first
// sweep happens immediately rather than one interval in.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("dispatch interval must be positive, got %s", interval)
	}

	d.Sweep(ctx)

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() { d.Sweep(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}
	c.Start()

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return ctx.Err()
}

// Sweep processes every reminder due at the current instant. Send failures
// are logged and the reminder stays pending for the next sweep; storage
// failures on one reminder do not stop the rest of the batch.
func (d *Dispatcher) Sweep(ctx context.Context) {
	reference := d.now()
	reminders, err := d.store.ListDueReminders(ctx, reference)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to list due reminders", "error", err)
		return
	}

	for _, reminder := range reminders {
		logger := d.logger.With("reminder_id", reminder.ID, "booking_id", reminder.BookingID)

		b, err := d.store.GetBooking(ctx, reminder.BookingID)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load booking for reminder", "error", err)
			continue
		}
		if err := d.notifications.SendBookingReminder(ctx, b, reminder); err != nil {
			logger.WarnContext(ctx, "reminder send failed, leaving pending", "error", err)
			continue
		}
		if err := d.store.MarkReminderSent(ctx, reminder.ID); err != nil {
			logger.ErrorContext(ctx, "failed to mark reminder sent", "error", err)
			continue
		}
		logger.InfoContext(ctx, "reminder dispatched")
	}
}
