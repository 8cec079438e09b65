package scheduling

import (
	"sort"
	"time"
)

// Load is the weekly credit a slot contributes while its interval is valid.
type Load struct {
	Interval Interval
	Minutes  int
}

// PeakLoad returns the highest total of loads valid on the same date, looking
// only at dates from `from` onwards. Totals only rise when an interval starts,
// so it is enough to evaluate `from` and every later start date.
func PeakLoad(loads []Load, from time.Time) int {
	from = DateOf(from)
	points := []time.Time{from}
	for _, l := range loads {
		start := DateOf(l.Interval.From)
		if start.After(from) {
			points = append(points, start)
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })

	peak := 0
	for _, p := range points {
		total := 0
		for _, l := range loads {
			if l.Interval.Covers(p) {
				total += l.Minutes
			}
		}
		if total > peak {
			peak = total
		}
	}
	return peak
}
