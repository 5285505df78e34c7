package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/booking-scheduler/internal/booking"
	"github.com/example/booking-scheduler/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// CreateBooking inserts a standalone booking.
func (r *BookingRepository) CreateBooking(ctx context.Context, b persistence.Booking) error {
	if b.ID == "" {
		return persistence.ErrConstraintViolation
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return insertBookingTx(tx, b, time.Now().UTC())
	})
}

// GetBooking retrieves a booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	query := `
		SELECT id, series_id, business_id, customer_id, service_id, staff_id, start_time, end_time, status, notes, created_at, updated_at
		FROM bookings
		WHERE id = ?
	`
	row := r.pool.db.QueryRowContext(ctx, query, id)
	b, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, err
	}
	return b, nil
}

// ListOverlapping returns the business+staff bookings in one of the given
// statuses intersecting the half-open window [start, end), ordered by start
// time ascending.
func (r *BookingRepository) ListOverlapping(ctx context.Context, businessID, staffID string, start, end time.Time, statuses []booking.Status) ([]persistence.Booking, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, series_id, business_id, customer_id, service_id, staff_id, start_time, end_time, status, notes, created_at, updated_at
		FROM bookings
		WHERE business_id = ? AND staff_id = ?
		  AND start_time < ? AND end_time > ?
		  AND status IN (` + placeholders(len(statuses)) + `)
		ORDER BY start_time ASC, id ASC
	`
	args := make([]any, 0, 4+len(statuses))
	args = append(args, businessID, staffID, encodeTime(end), encodeTime(start))
	for _, status := range statuses {
		args = append(args, string(status))
	}

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
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

// UpdateBookingStatus transitions a booking to the given status.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, bookingID string, status booking.Status, updatedAt time.Time) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?",
		string(status), encodeTime(updatedAt), bookingID,
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

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = append(out, '?')
	}
	return string(out)
}

func insertBookingTx(tx *sql.Tx, b persistence.Booking, now time.Time) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	query := `
		INSERT INTO bookings (id, series_id, business_id, customer_id, service_id, staff_id, start_time, end_time, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		b.ID,
		encodeOptionalString(b.SeriesID),
		b.BusinessID,
		b.CustomerID,
		b.ServiceID,
		encodeOptionalString(b.StaffID),
		encodeTime(b.Start),
		encodeTime(b.End),
		string(b.Status),
		encodeOptionalString(b.Notes),
		encodeTime(b.CreatedAt),
		encodeTime(b.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		b         persistence.Booking
		seriesID  sql.NullString
		staffID   sql.NullString
		startTime string
		endTime   string
		status    string
		notes     sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&b.ID,
		&seriesID,
		&b.BusinessID,
		&b.CustomerID,
		&b.ServiceID,
		&staffID,
		&startTime,
		&endTime,
		&status,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}

	b.SeriesID = decodeOptionalString(seriesID)
	b.StaffID = decodeOptionalString(staffID)
	b.Status = booking.Status(status)
	b.Notes = decodeOptionalString(notes)
	if b.Start, err = decodeTime(startTime); err != nil {
		return persistence.Booking{}, err
	}
	if b.End, err = decodeTime(endTime); err != nil {
		return persistence.Booking{}, err
	}
	if b.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if b.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	return b, nil
}
