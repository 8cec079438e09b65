package scheduling

import (
	"errors"
	"time"
)

// ErrEndBeforeStart is returned when an interval would close before it opened.
var ErrEndBeforeStart = errors.New("end date is before start date")

// Interval is a validity range of whole dates. A nil To means the interval is
// still active; otherwise it is closed and includes To.
type Interval struct {
	From time.Time
	To   *time.Time
}

// NewInterval normalises both bounds to dates and rejects inverted ranges.
func NewInterval(from time.Time, to *time.Time) (Interval, error) {
	iv := Interval{From: DateOf(from)}
	if to != nil {
		end := DateOf(*to)
		if end.Before(iv.From) {
			return Interval{}, ErrEndBeforeStart
		}
		iv.To = &end
	}
	return iv, nil
}

// Active reports whether the interval has no end.
func (iv Interval) Active() bool {
	return iv.To == nil
}

// Covers reports whether d falls inside the interval, both bounds inclusive.
func (iv Interval) Covers(d time.Time) bool {
	day := DateOf(d)
	if day.Before(DateOf(iv.From)) {
		return false
	}
	return iv.To == nil || !day.After(DateOf(*iv.To))
}

// Overlaps reports whether the two intervals share at least one date.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.To != nil && DateOf(*iv.To).Before(DateOf(other.From)) {
		return false
	}
	if other.To != nil && DateOf(*other.To).Before(DateOf(iv.From)) {
		return false
	}
	return true
}

// Close returns the interval ended at end.
func (iv Interval) Close(end time.Time) (Interval, error) {
	return NewInterval(iv.From, &end)
}
