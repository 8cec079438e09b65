// Package scheduling holds the pure rules of the assignment engine: weekday and
// time-of-day parsing, weekly slot overlap, placement policy and validity intervals.
package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the wire format for validity dates.
const DateLayout = "2006-01-02"

// Weekday is a canonical weekday token.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

var weekdayOrder = map[Weekday]int{
	Monday: 1, Tuesday: 2, Wednesday: 3, Thursday: 4, Friday: 5, Saturday: 6, Sunday: 7,
}

// Index returns 1 for Monday through 7 for Sunday, and 0 for unknown tokens.
func (d Weekday) Index() int {
	return weekdayOrder[d]
}

var weekdayTokens = map[string]Weekday{
	"MONDAY":    Monday,
	"TUESDAY":   Tuesday,
	"WEDNESDAY": Wednesday,
	"THURSDAY":  Thursday,
	"FRIDAY":    Friday,
	"SATURDAY":  Saturday,
	"SUNDAY":    Sunday,
	"LUNES":     Monday,
	"MARTES":    Tuesday,
	"MIERCOLES": Wednesday,
	"JUEVES":    Thursday,
	"VIERNES":   Friday,
	"SABADO":    Saturday,
	"DOMINGO":   Sunday,
}

// MalformedTimeError reports a time-of-day that is not HH:MM.
type MalformedTimeError struct {
	Value string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed time %q: expected HH:MM", e.Value)
}

// ParseWeekday accepts English or Spanish weekday names regardless of case or accents.
func ParseWeekday(token string) (Weekday, error) {
	day, ok := weekdayTokens[normalizeToken(token)]
	if !ok {
		return "", fmt.Errorf("unknown weekday %q", token)
	}
	return day, nil
}

// ToMinutes converts "HH:MM" (optionally "HH:MM:SS") into minutes since midnight.
func ToMinutes(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &MalformedTimeError{Value: value}
	}
	hours, err := parseBounded(parts[0], 23)
	if err != nil {
		return 0, &MalformedTimeError{Value: value}
	}
	minutes, err := parseBounded(parts[1], 59)
	if err != nil {
		return 0, &MalformedTimeError{Value: value}
	}
	if len(parts) == 3 {
		if _, err := parseBounded(parts[2], 59); err != nil {
			return 0, &MalformedTimeError{Value: value}
		}
	}
	return hours*60 + minutes, nil
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether two weekly ranges collide. Ranges are half-open, so a
// range ending exactly when the other begins does not overlap it.
func Overlaps(dayA Weekday, startA, endA int, dayB Weekday, startB, endB int) bool {
	return dayA == dayB && startA < endB && endA > startB
}

// ParseDate parses a YYYY-MM-DD date at UTC midnight.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return d, nil
}

// ParseOptionalDate returns nil for an empty value.
func ParseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseBounded reads exactly two ASCII digits no greater than max.
func parseBounded(raw string, max int) (int, error) {
	if len(raw) != 2 || !isDigit(raw[0]) || !isDigit(raw[1]) {
		return 0, fmt.Errorf("bad component %q", raw)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n > max {
		return 0, fmt.Errorf("bad component %q", raw)
	}
	return n, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func normalizeToken(token string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(token))
	if err != nil {
		folded = token
	}
	return strings.ToUpper(folded)
}
