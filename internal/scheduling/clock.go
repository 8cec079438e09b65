package scheduling

import "time"

// Clock supplies the default "today" for operations that omit a date.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Today returns the current date in the clock's location, as a UTC-midnight date.
func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// FixedClock always returns the same date.
type FixedClock struct {
	Date time.Time
}

func (c FixedClock) Today() time.Time {
	return DateOf(c.Date)
}
