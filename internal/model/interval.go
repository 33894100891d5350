package model

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether Start is strictly before End.
func (i Interval) Valid() bool { return i.Start.Before(i.End) }

// Overlaps applies the half-open overlap test: other.Start < i.End and
// other.End > i.Start.  Intervals that merely touch do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return other.Start.Before(i.End) && other.End.After(i.Start)
}
