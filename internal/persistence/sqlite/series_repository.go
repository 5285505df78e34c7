package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/booking-scheduler/internal/persistence"
)

// SeriesRepository implements persistence.SeriesRepository using SQLite.
type SeriesRepository struct {
	pool *ConnectionPool
}

// NewSeriesRepository creates a new SQLite series repository.
func NewSeriesRepository(pool *ConnectionPool) *SeriesRepository {
	return &SeriesRepository{pool: pool}
}

// CreateSeriesBatch persists the series, its bookings, and its reminders in a
// single transaction. Any failure rolls everything back.
func (r *SeriesRepository) CreateSeriesBatch(ctx context.Context, series persistence.RecurringSeries, bookings []persistence.Booking, reminders []persistence.Reminder) error {
	if series.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if series.CreatedAt.IsZero() {
		series.CreatedAt = now
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO recurring_series (id, business_id, customer_id, service_id, staff_id, time_of_day, weekdays, interval_weeks, total_count, ends_at, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.Exec(query,
			series.ID,
			series.BusinessID,
			series.CustomerID,
			series.ServiceID,
			encodeOptionalString(series.StaffID),
			series.TimeOfDay,
			encodeWeekdays(series.Weekdays),
			series.IntervalWeeks,
			series.TotalCount,
			encodeOptionalTime(series.EndsAt),
			encodeOptionalString(series.Notes),
			encodeTime(series.CreatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		for _, b := range bookings {
			if err := insertBookingTx(tx, b, now); err != nil {
				return err
			}
		}
		for _, rem := range reminders {
			if err := insertReminderTx(tx, rem, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSeries retrieves a series scoped to a business.
func (r *SeriesRepository) GetSeries(ctx context.Context, businessID, seriesID string) (persistence.RecurringSeries, error) {
	query := `
		SELECT id, business_id, customer_id, service_id, staff_id, time_of_day, weekdays, interval_weeks, total_count, ends_at, notes, created_at
		FROM recurring_series
		WHERE id = ? AND business_id = ?
	`
	row := r.pool.db.QueryRowContext(ctx, query, seriesID, businessID)

	var (
		series    persistence.RecurringSeries
		staffID   sql.NullString
		weekdays  string
		endsAt    sql.NullString
		notes     sql.NullString
		createdAt string
	)
	err := row.Scan(
		&series.ID,
		&series.BusinessID,
		&series.CustomerID,
		&series.ServiceID,
		&staffID,
		&series.TimeOfDay,
		&weekdays,
		&series.IntervalWeeks,
		&series.TotalCount,
		&endsAt,
		&notes,
		&createdAt,
	)
	if err != nil {
		return persistence.RecurringSeries{}, mapError(err)
	}

	series.StaffID = decodeOptionalString(staffID)
	series.Notes = decodeOptionalString(notes)
	if series.Weekdays, err = decodeWeekdays(weekdays); err != nil {
		return persistence.RecurringSeries{}, err
	}
	if series.EndsAt, err = decodeOptionalTime(endsAt); err != nil {
		return persistence.RecurringSeries{}, err
	}
	if series.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.RecurringSeries{}, err
	}

	return series, nil
}

// ListSeriesBookings returns the series' bookings ordered by start time ascending.
func (r *SeriesRepository) ListSeriesBookings(ctx context.Context, seriesID string) ([]persistence.Booking, error) {
	query := `
		SELECT id, series_id, business_id, customer_id, service_id, staff_id, start_time, end_time, status, notes, created_at, updated_at
		FROM bookings
		WHERE series_id = ?
		ORDER BY start_time ASC, id ASC
	`
	rows, err := r.pool.db.QueryContext(ctx, query, seriesID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	bookings := make([]persistence.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}
