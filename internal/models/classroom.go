package models

import "time"

// Institution owns classrooms and defines their working shift.
type Institution struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Shift string `db:"shift" json:"shift"`
}

// Classroom is a group of students of one grade at an institution site.
type Classroom struct {
	ID            string    `db:"id" json:"id"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	SiteID        *string   `db:"site_id" json:"site_id,omitempty"`
	Name          string    `db:"name" json:"name"`
	Grade         int       `db:"grade" json:"grade"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ClassroomProfile carries the attributes placement policy needs.
type ClassroomProfile struct {
	ID              string `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	Grade           int    `db:"grade" json:"grade"`
	InstitutionID   string `db:"institution_id" json:"institution_id"`
	InstitutionName string `db:"institution_name" json:"institution_name"`
	Shift           string `db:"shift" json:"shift"`
}

// ScheduleSlot is an immutable catalog entry for a weekly time slot.
type ScheduleSlot struct {
	ID                string  `db:"id" json:"id"`
	Weekday           string  `db:"weekday" json:"weekday"`
	StartTime         string  `db:"start_time" json:"start_time"`
	EndTime           string  `db:"end_time" json:"end_time"`
	EquivalentMinutes *int    `db:"equivalent_minutes" json:"equivalent_minutes,omitempty"`
	Continuous        bool    `db:"continuous" json:"continuous"`
	Label             *string `db:"label" json:"label,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
