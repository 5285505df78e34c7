package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/booking-scheduler/internal/booking"
	"github.com/example/booking-scheduler/internal/persistence"
)

// ReminderRepository implements persistence.ReminderRepository using SQLite.
type ReminderRepository struct {
	pool *ConnectionPool
}

// NewReminderRepository creates a new SQLite reminder repository.
func NewReminderRepository(pool *ConnectionPool) *ReminderRepository {
	return &ReminderRepository{pool: pool}
}

// CancelPendingForBooking flips every pending reminder attached to the
// booking to cancelled. Reminders are never deleted.
func (r *ReminderRepository) CancelPendingForBooking(ctx context.Context, bookingID string, updatedAt time.Time) (int, error) {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE reminders SET status = ?, updated_at = ? WHERE booking_id = ? AND status = ?",
		string(booking.ReminderCancelled),
		encodeTime(updatedAt),
		bookingID,
		string(booking.ReminderPending),
	)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, mapError(err)
	}
	return int(affected), nil
}

// ListDue returns pending reminders scheduled at or before the reference
// instant, ordered by scheduled time ascending.
func (r *ReminderRepository) ListDue(ctx context.Context, reference time.Time) ([]persistence.Reminder, error) {
	query := `
		SELECT id, booking_id, scheduled_at, status, created_at, updated_at
		FROM reminders
		WHERE status = ? AND scheduled_at <= ?
		ORDER BY scheduled_at ASC, id ASC
	`
	rows, err := r.pool.db.QueryContext(ctx, query, string(booking.ReminderPending), encodeTime(reference))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	reminders := make([]persistence.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reminders, nil
}

// MarkSent transitions a reminder to sent.
func (r *ReminderRepository) MarkSent(ctx context.Context, reminderID string, updatedAt time.Time) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE reminders SET status = ?, updated_at = ? WHERE id = ?",
		string(booking.ReminderSent), encodeTime(updatedAt), reminderID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func insertReminderTx(tx *sql.Tx, rem persistence.Reminder, now time.Time) error {
	if rem.CreatedAt.IsZero() {
		rem.CreatedAt = now
	}
	if rem.UpdatedAt.IsZero() {
		rem.UpdatedAt = rem.CreatedAt
	}
	query := `
		INSERT INTO reminders (id, booking_id, scheduled_at, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		rem.ID,
		rem.BookingID,
		encodeTime(rem.ScheduledAt),
		string(rem.Status),
		encodeTime(rem.CreatedAt),
		encodeTime(rem.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func scanReminder(row rowScanner) (persistence.Reminder, error) {
	var (
		rem         persistence.Reminder
		scheduledAt string
		status      string
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&rem.ID, &rem.BookingID, &scheduledAt, &status, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Reminder{}, mapError(err)
	}
	rem.Status = booking.ReminderStatus(status)
	if rem.ScheduledAt, err = decodeTime(scheduledAt); err != nil {
		return persistence.Reminder{}, err
	}
	if rem.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Reminder{}, err
	}
	if rem.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Reminder{}, err
	}
	return rem, nil
}
