package scheduling

import (
	"fmt"
	"strings"
)

// GradeGroup partitions grades for placement and student mobility.
type GradeGroup string

const (
	GroupPrimary   GradeGroup = "PRIMARY"
	GroupSecondary GradeGroup = "SECONDARY"
)

// Shift is the institution-level working day (jornada).
type Shift string

const (
	ShiftMorning   Shift = "MORNING"
	ShiftAfternoon Shift = "AFTERNOON"
	ShiftMixed     Shift = "MIXED"
)

// Policy rules named by a PolicyViolation.
const (
	RuleWeekday   = "weekday"
	RuleBand      = "band"
	RuleDuration  = "duration"
	RuleSlotRange = "slot_range"
	RuleShift     = "shift"
)

// Band is a time-of-day window, [Start, End] in minutes since midnight.
type Band struct {
	Start int
	End   int
}

var (
	MorningBand   = Band{Start: 6 * 60, End: 13 * 60}
	AfternoonBand = Band{Start: 13 * 60, End: 18 * 60}
)

// Contains reports whether the span lies entirely inside the band.
func (b Band) Contains(s Span) bool {
	return s.Start >= b.Start && s.End <= b.End
}

func (b Band) String() string {
	return FormatMinutes(b.Start) + "-" + FormatMinutes(b.End)
}

// GroupOf returns the grade group of a grade. Only grades 4, 5, 9 and 10 are grouped.
func GroupOf(grade int) (GradeGroup, bool) {
	switch grade {
	case 4, 5:
		return GroupPrimary, true
	case 9, 10:
		return GroupSecondary, true
	default:
		return "", false
	}
}

// ParseShift accepts English or Spanish shift names.
func ParseShift(token string) (Shift, error) {
	switch normalizeToken(token) {
	case "MORNING", "MANANA":
		return ShiftMorning, nil
	case "AFTERNOON", "TARDE":
		return ShiftAfternoon, nil
	case "MIXED", "MIXTA", "MIXTO":
		return ShiftMixed, nil
	}
	return "", fmt.Errorf("unknown shift %q", token)
}

// PolicyViolation reports a slot outside the allowed window.
type PolicyViolation struct {
	Rule    string
	Message string
}

func (e *PolicyViolation) Error() string {
	return e.Message
}

// GroupRule is the per-group row of the placement matrix.
type GroupRule struct {
	Weekdays       []Weekday
	CapMinutes     int
	MaxSlotMinutes int
	// HomeBand is the band used when the institution works in the morning.
	HomeBand Band
}

// Window is the placement allowed for one classroom.
type Window struct {
	Group          GradeGroup
	Weekdays       []Weekday
	Bands          []Band
	CapMinutes     int
	MaxSlotMinutes int
}

// Validate checks a candidate span against the window.
func (w Window) Validate(s Span) error {
	if s.End <= s.Start {
		return &PolicyViolation{Rule: RuleSlotRange, Message: fmt.Sprintf("slot %s ends before it starts", s)}
	}
	if !w.allowsWeekday(s.Weekday) {
		return &PolicyViolation{Rule: RuleWeekday, Message: fmt.Sprintf("%s grades cannot be scheduled on %s", strings.ToLower(string(w.Group)), s.Weekday)}
	}
	if !w.allowsBand(s) {
		bands := make([]string, 0, len(w.Bands))
		for _, b := range w.Bands {
			bands = append(bands, b.String())
		}
		return &PolicyViolation{Rule: RuleBand, Message: fmt.Sprintf("slot %s is outside the allowed band %s", s, strings.Join(bands, ", "))}
	}
	if w.MaxSlotMinutes > 0 && s.Duration() > w.MaxSlotMinutes {
		return &PolicyViolation{Rule: RuleDuration, Message: fmt.Sprintf("slot %s lasts %d minutes, max is %d", s, s.Duration(), w.MaxSlotMinutes)}
	}
	return nil
}

func (w Window) allowsWeekday(day Weekday) bool {
	for _, d := range w.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

func (w Window) allowsBand(s Span) bool {
	for _, b := range w.Bands {
		if b.Contains(s) {
			return true
		}
	}
	return false
}

// PolicyTable is the explicit grade-group by shift placement matrix.
type PolicyTable struct {
	Rules map[GradeGroup]GroupRule
	// Fallback applies to grades outside every group.
	Fallback GradeGroup
}

// NewPolicyTable builds the placement matrix. Primary grades always work in the
// institution's shift band. Secondary grades take the opposite band unless
// secondaryFollowsShift is set.
func NewPolicyTable(secondaryFollowsShift bool) PolicyTable {
	weekdays := []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
	secondaryHome := AfternoonBand
	if secondaryFollowsShift {
		secondaryHome = MorningBand
	}
	return PolicyTable{
		Rules: map[GradeGroup]GroupRule{
			GroupPrimary: {
				Weekdays:       weekdays,
				CapMinutes:     120,
				MaxSlotMinutes: 120,
				HomeBand:       MorningBand,
			},
			GroupSecondary: {
				Weekdays:       append(append([]Weekday{}, weekdays...), Saturday),
				CapMinutes:     180,
				MaxSlotMinutes: 180,
				HomeBand:       secondaryHome,
			},
		},
		Fallback: GroupSecondary,
	}
}

// AllowedWindow computes the window for a grade under an institution shift.
func (p PolicyTable) AllowedWindow(grade int, shift Shift) Window {
	group, ok := GroupOf(grade)
	if !ok {
		group = p.Fallback
	}
	rule := p.Rules[group]

	var bands []Band
	switch shift {
	case ShiftAfternoon:
		bands = []Band{opposite(rule.HomeBand)}
	case ShiftMixed:
		bands = []Band{MorningBand, AfternoonBand}
	default:
		bands = []Band{rule.HomeBand}
	}

	return Window{
		Group:          group,
		Weekdays:       rule.Weekdays,
		Bands:          bands,
		CapMinutes:     rule.CapMinutes,
		MaxSlotMinutes: rule.MaxSlotMinutes,
	}
}

func opposite(b Band) Band {
	if b == MorningBand {
		return AfternoonBand
	}
	return MorningBand
}
