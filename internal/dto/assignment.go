package dto

// AssignClassroomSlotRequest places a catalog slot in a classroom.
type AssignClassroomSlotRequest struct {
	ClassroomID string `json:"classroom_id" validate:"required"`
	SlotID      string `json:"slot_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

// AssignTutorRequest links a tutor to a classroom.
type AssignTutorRequest struct {
	TutorID     string `json:"tutor_id" validate:"required"`
	ClassroomID string `json:"classroom_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ChangeTutorRequest replaces the current tutor of a classroom.
type ChangeTutorRequest struct {
	ClassroomID     string `json:"classroom_id" validate:"required"`
	NewTutorID      string `json:"new_tutor_id" validate:"required"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	Reason          string `json:"reason" validate:"omitempty,max=255"`
	OldAssignmentID string `json:"old_assignment_id" validate:"required"`
	OldEndDate      string `json:"old_end_date" validate:"omitempty,datetime=2006-01-02"`
}

// AssignStudentRequest places a student in a classroom.
type AssignStudentRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	ClassroomID string `json:"classroom_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// MoveStudentRequest moves a student between classrooms of the same grade group.
// An empty close date closes the origin today.
type MoveStudentRequest struct {
	StudentID       string `json:"student_id" validate:"required"`
	FromClassroomID string `json:"from_classroom_id" validate:"required"`
	ToClassroomID   string `json:"to_classroom_id" validate:"required,nefield=FromClassroomID"`
	CloseDate       string `json:"close_date" validate:"omitempty,datetime=2006-01-02"`
	NewStartDate    string `json:"new_start_date" validate:"required,datetime=2006-01-02"`
	NewEndDate      string `json:"new_end_date" validate:"omitempty,datetime=2006-01-02"`
}

// CloseIntervalRequest ends an active interval. An empty end date means today.
type CloseIntervalRequest struct {
	EndDate string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Reason  string `json:"reason" validate:"omitempty,max=255"`
}
