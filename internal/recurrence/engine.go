package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// MaxOccurrences is the hard cap applied to every expansion regardless of the
// requested count.
const MaxOccurrences = 52

// ErrInvalidInterval indicates the week interval is below one.
var ErrInvalidInterval = errors.New("recurrence: interval must be at least one week")

// ErrNoWeekdays indicates the rule selects no weekdays.
var ErrNoWeekdays = errors.New("recurrence: at least one weekday is required")

// ErrInvalidWeekday indicates a weekday outside Sunday..Saturday.
var ErrInvalidWeekday = errors.New("recurrence: weekday must be between Sunday and Saturday")

// ErrInvalidTimeOfDay indicates an out-of-range hour or minute.
var ErrInvalidTimeOfDay = errors.New("recurrence: time of day must be within 00:00..23:59")

// TimeOfDay is the wall-clock instant every occurrence of a rule is pinned
// to. No timezone conversion happens here; occurrences inherit the location
// of the rule's start.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" value such as "14:00".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var tod TimeOfDay
	if _, err := fmt.Sscanf(value, "%d:%d", &tod.Hour, &tod.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("recurrence: parse time of day %q: %w", value, err)
	}
	if !tod.valid() {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return tod, nil
}

// String renders the time of day as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// Rule describes a weekly recurrence pattern for a booking series.
type Rule struct {
	// Start anchors the expansion. Only its date component participates in
	// week anchoring; TimeOfDay supplies the clock time of every occurrence.
	// Candidates strictly before Start are discarded.
	Start time.Time
	// TimeOfDay is applied to every occurrence.
	TimeOfDay TimeOfDay
	// Weekdays selects the days within each week block. Treated as a set:
	// duplicates are removed and the remainder sorted ascending.
	Weekdays []time.Weekday
	// IntervalWeeks is the gap between week blocks. Must be >= 1.
	IntervalWeeks int
	// Count caps the number of occurrences at min(Count, MaxOccurrences).
	// Zero or negative means unset, leaving only the hard cap.
	Count int
	// Until is an inclusive upper bound. The first candidate beyond it stops
	// expansion immediately; later weekdays are not scanned.
	Until *time.Time
}

// Expand turns a rule into its ordered occurrence instants.
//
// The expansion anchors to the Sunday of the calendar week containing
// Start, then walks week blocks IntervalWeeks apart, emitting one candidate
// per selected weekday in ascending order. Results are strictly ascending,
// contain no duplicates, and never exceed MaxOccurrences entries. Expand is
// deterministic and performs no I/O.
func Expand(rule Rule) ([]time.Time, error) {
	if rule.IntervalWeeks < 1 {
		return nil, ErrInvalidInterval
	}
	if !rule.TimeOfDay.valid() {
		return nil, ErrInvalidTimeOfDay
	}

	weekdays, err := normalizeWeekdays(rule.Weekdays)
	if err != nil {
		return nil, err
	}

	limit := MaxOccurrences
	if rule.Count > 0 && rule.Count < limit {
		limit = rule.Count
	}

	loc := rule.Start.Location()
	anchor := weekAnchor(rule.Start)
	occurrences := make([]time.Time, 0, limit)

	for len(occurrences) < limit {
		year, month, day := anchor.Date()
		for _, weekday := range weekdays {
			candidate := time.Date(year, month, day+int(weekday), rule.TimeOfDay.Hour, rule.TimeOfDay.Minute, 0, 0, loc)
			if candidate.Before(rule.Start) {
				continue
			}
			if rule.Until != nil && candidate.After(*rule.Until) {
				return occurrences, nil
			}
			occurrences = append(occurrences, candidate)
			if len(occurrences) == limit {
				return occurrences, nil
			}
		}
		anchor = anchor.AddDate(0, 0, rule.IntervalWeeks*7)
	}

	return occurrences, nil
}

// weekAnchor returns midnight on the Sunday of the week containing t.
func weekAnchor(t time.Time) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

func normalizeWeekdays(weekdays []time.Weekday) ([]time.Weekday, error) {
	var seen [7]bool
	for _, day := range weekdays {
		if day < time.Sunday || day > time.Saturday {
			return nil, ErrInvalidWeekday
		}
		seen[day] = true
	}
	normalized := make([]time.Weekday, 0, len(weekdays))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if seen[day] {
			normalized = append(normalized, day)
		}
	}
	if len(normalized) == 0 {
		return nil, ErrNoWeekdays
	}
	return normalized, nil
}
