package models

import "time"

// TimetableEntry is one weekly slot a tutor teaches.
type TimetableEntry struct {
	ClassroomID       string `db:"classroom_id" json:"classroom_id"`
	ClassroomName     string `db:"classroom_name" json:"classroom_name"`
	SlotID            string `db:"slot_id" json:"slot_id"`
	Weekday           string `db:"weekday" json:"weekday"`
	StartTime         string `db:"start_time" json:"start_time"`
	EndTime           string `db:"end_time" json:"end_time"`
	EquivalentMinutes int    `db:"equivalent_minutes" json:"equivalent_minutes"`
}

// TutorTimetable is the weekly timetable of a tutor as of a date.
type TutorTimetable struct {
	TutorID      string           `json:"tutor_id"`
	Date         time.Time        `json:"date"`
	Entries      []TimetableEntry `json:"entries"`
	TotalMinutes int              `json:"total_minutes"`
}

// ClassroomStudent is a student enrolled in a classroom on a given date.
type ClassroomStudent struct {
	AssignmentID string     `db:"id" json:"assignment_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	ValidFrom    time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo      *time.Time `db:"valid_to" json:"valid_to,omitempty"`
}
