package scheduling

import "fmt"

// DefaultEquivalentMinutes is the credit of a catalog slot that does not declare one.
const DefaultEquivalentMinutes = 45

// Span is a weekly time range on one weekday, in minutes since midnight.
type Span struct {
	Weekday Weekday
	Start   int
	End     int
}

// NewSpan parses raw catalog values into a Span.
func NewSpan(weekday, start, end string) (Span, error) {
	day, err := ParseWeekday(weekday)
	if err != nil {
		return Span{}, err
	}
	startMin, err := ToMinutes(start)
	if err != nil {
		return Span{}, err
	}
	endMin, err := ToMinutes(end)
	if err != nil {
		return Span{}, err
	}
	return Span{Weekday: day, Start: startMin, End: endMin}, nil
}

// Duration is the literal length of the span in minutes.
func (s Span) Duration() int {
	return s.End - s.Start
}

// Overlaps applies the half-open same-weekday rule.
func (s Span) Overlaps(other Span) bool {
	return Overlaps(s.Weekday, s.Start, s.End, other.Weekday, other.Start, other.End)
}

// SameAs reports an exact weekday, start and end match.
func (s Span) SameAs(other Span) bool {
	return s.Weekday == other.Weekday && s.Start == other.Start && s.End == other.End
}

func (s Span) String() string {
	return fmt.Sprintf("%s %s-%s", s.Weekday, FormatMinutes(s.Start), FormatMinutes(s.End))
}

// EquivalentOrDefault resolves a nullable equivalent-minutes column.
func EquivalentOrDefault(minutes *int) int {
	if minutes == nil || *minutes <= 0 {
		return DefaultEquivalentMinutes
	}
	return *minutes
}
