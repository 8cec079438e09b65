package models

import "time"

// IntervalKind names the three kinds of dated assignment.
type IntervalKind string

const (
	IntervalClassroomSchedule IntervalKind = "classroom-schedule"
	IntervalTutor             IntervalKind = "tutor"
	IntervalStudent           IntervalKind = "student"
)

// Valid reports whether k is a known kind.
func (k IntervalKind) Valid() bool {
	switch k {
	case IntervalClassroomSchedule, IntervalTutor, IntervalStudent:
		return true
	}
	return false
}

// ClassroomScheduleAssignment places a catalog slot in a classroom for a date range.
type ClassroomScheduleAssignment struct {
	ID          string     `db:"id" json:"id"`
	ClassroomID string     `db:"classroom_id" json:"classroom_id"`
	SlotID      string     `db:"slot_id" json:"slot_id"`
	ValidFrom   time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo     *time.Time `db:"valid_to" json:"valid_to,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ClassroomSlot joins a classroom schedule assignment with its catalog slot.
type ClassroomSlot struct {
	AssignmentID      string     `db:"assignment_id" json:"assignment_id"`
	ClassroomID       string     `db:"classroom_id" json:"classroom_id"`
	SlotID            string     `db:"slot_id" json:"slot_id"`
	Weekday           string     `db:"weekday" json:"weekday"`
	StartTime         string     `db:"start_time" json:"start_time"`
	EndTime           string     `db:"end_time" json:"end_time"`
	EquivalentMinutes *int       `db:"equivalent_minutes" json:"equivalent_minutes,omitempty"`
	ValidFrom         time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo           *time.Time `db:"valid_to" json:"valid_to,omitempty"`
}

// TutorAssignment links a tutor to a classroom for a date range.
type TutorAssignment struct {
	ID           string     `db:"id" json:"id"`
	ClassroomID  string     `db:"classroom_id" json:"classroom_id"`
	TutorID      string     `db:"tutor_id" json:"tutor_id"`
	ValidFrom    time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo      *time.Time `db:"valid_to" json:"valid_to,omitempty"`
	ChangeReason *string    `db:"change_reason" json:"change_reason,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// StudentAssignment links a student to a classroom for a date range.
type StudentAssignment struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	ClassroomID string     `db:"classroom_id" json:"classroom_id"`
	ValidFrom   time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo     *time.Time `db:"valid_to" json:"valid_to,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// IntervalRow is the lifecycle view shared by every assignment table.
type IntervalRow struct {
	ID        string     `db:"id" json:"id"`
	ValidFrom time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo   *time.Time `db:"valid_to" json:"valid_to,omitempty"`
}

// IntervalClose describes how to end an interval. Reason is only stored for tutor assignments.
type IntervalClose struct {
	ID     string
	End    time.Time
	Reason *string
}

// MoveResult reports both halves of a student move.
type MoveResult struct {
	Closed IntervalRow       `json:"closed"`
	Opened StudentAssignment `json:"opened"`
}

// TutorChangeResult reports both halves of a tutor change.
type TutorChangeResult struct {
	Closed IntervalRow     `json:"closed"`
	Opened TutorAssignment `json:"opened"`
}
