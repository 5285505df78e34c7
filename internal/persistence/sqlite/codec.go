package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamps are stored as RFC3339 text normalized to UTC so that column
// order comparisons match chronological order.

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func decodeTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode timestamp %q: %w", value, err)
	}
	return t, nil
}

func encodeOptionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func decodeOptionalTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := decodeTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func decodeOptionalString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

// Weekday sets are stored as a comma separated list of integers, Sunday=0.

func encodeWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, day := range days {
		parts[i] = strconv.Itoa(int(day))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(value string) ([]time.Weekday, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("failed to decode weekday %q: %w", part, err)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}
