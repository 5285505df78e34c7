package sqlite

import (
	"context"
	"fmt"
)

// schema holds the DDL statements applied by Migrate. Statements are
// idempotent so the migration can run at every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS services (
		id            TEXT PRIMARY KEY,
		business_id   TEXT NOT NULL,
		name          TEXT NOT NULL,
		duration_mins INTEGER NOT NULL CHECK (duration_mins > 0),
		price_cents   INTEGER NOT NULL DEFAULT 0 CHECK (price_cents >= 0),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_services_business ON services (business_id)`,
	`CREATE TABLE IF NOT EXISTS recurring_series (
		id             TEXT PRIMARY KEY,
		business_id    TEXT NOT NULL,
		customer_id    TEXT NOT NULL,
		service_id     TEXT NOT NULL REFERENCES services (id),
		staff_id       TEXT,
		time_of_day    TEXT NOT NULL,
		weekdays       TEXT NOT NULL,
		interval_weeks INTEGER NOT NULL CHECK (interval_weeks >= 1),
		total_count    INTEGER NOT NULL CHECK (total_count >= 1),
		ends_at        TEXT,
		notes          TEXT,
		created_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_series_business ON recurring_series (business_id)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id          TEXT PRIMARY KEY,
		series_id   TEXT REFERENCES recurring_series (id),
		business_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		service_id  TEXT NOT NULL REFERENCES services (id),
		staff_id    TEXT,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		status      TEXT NOT NULL,
		notes       TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_staff_window ON bookings (business_id, staff_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_series ON bookings (series_id)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id           TEXT PRIMARY KEY,
		booking_id   TEXT NOT NULL REFERENCES bookings (id),
		scheduled_at TEXT NOT NULL,
		status       TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders (status, scheduled_at)`,
}

// Migrate applies the schema to the connected database.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
