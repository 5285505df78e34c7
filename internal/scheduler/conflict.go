package scheduler

import "time"

// Interval is a half-open [Start, End) time span occupied by a booking.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Conflict describes a staff double-booking detected for one candidate
// occurrence. OccurrenceStart is the earliest conflicting candidate, which
// makes error messages deterministic regardless of how the check is driven.
type Conflict struct {
	StaffID         string
	OccurrenceStart time.Time
	OccurrenceEnd   time.Time
	WithBookingID   string
}

// FirstConflict scans candidate intervals in order against the existing
// intervals and returns the earliest conflicting candidate, or nil when the
// whole set is clear. The scan is fail-fast: intervals after the first hit
// are never examined. existingIDs pairs with existing index-wise and may be
// nil when booking identities are not of interest.
func FirstConflict(staffID string, candidates []Interval, existing []Interval, existingIDs []string) *Conflict {
	for _, candidate := range candidates {
		for i, busy := range existing {
			if !Overlaps(candidate, busy) {
				continue
			}
			conflict := &Conflict{
				StaffID:         staffID,
				OccurrenceStart: candidate.Start,
				OccurrenceEnd:   candidate.End,
			}
			if i < len(existingIDs) {
				conflict.WithBookingID = existingIDs[i]
			}
			return conflict
		}
	}
	return nil
}
