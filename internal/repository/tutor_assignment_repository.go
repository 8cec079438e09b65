package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/globalenglish-api/internal/models"
)

const tutorAssignmentTable = "tutor_classroom_history"

// TutorAssignmentRepository persists tutor to classroom assignments.
type TutorAssignmentRepository struct {
	db *sqlx.DB
}

// NewTutorAssignmentRepository constructs the repository.
func NewTutorAssignmentRepository(db *sqlx.DB) *TutorAssignmentRepository {
	return &TutorAssignmentRepository{db: db}
}

func (r *TutorAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID returns a single assignment.
func (r *TutorAssignmentRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TutorAssignment, error) {
	const query = `SELECT id, classroom_id, tutor_id, valid_from, valid_to, change_reason, created_at FROM tutor_classroom_history WHERE id = $1`
	var assignment models.TutorAssignment
	if err := sqlx.GetContext(ctx, r.exec(exec), &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find tutor assignment: %w", err)
	}
	return &assignment, nil
}

// ListForClassroomSince returns the classroom's assignments still valid on or after date.
func (r *TutorAssignmentRepository) ListForClassroomSince(ctx context.Context, exec sqlx.ExtContext, classroomID string, date time.Time) ([]models.TutorAssignment, error) {
	const query = `SELECT id, classroom_id, tutor_id, valid_from, valid_to, change_reason, created_at
FROM tutor_classroom_history
WHERE classroom_id = $1 AND (valid_to IS NULL OR valid_to >= $2)
ORDER BY valid_from ASC`
	var assignments []models.TutorAssignment
	if err := sqlx.SelectContext(ctx, r.exec(exec), &assignments, query, classroomID, date); err != nil {
		return nil, fmt.Errorf("list classroom tutor assignments: %w", err)
	}
	return assignments, nil
}

// ListForTutorSince returns the tutor's assignments still valid on or after date.
func (r *TutorAssignmentRepository) ListForTutorSince(ctx context.Context, exec sqlx.ExtContext, tutorID string, date time.Time) ([]models.TutorAssignment, error) {
	const query = `SELECT id, classroom_id, tutor_id, valid_from, valid_to, change_reason, created_at
FROM tutor_classroom_history
WHERE tutor_id = $1 AND (valid_to IS NULL OR valid_to >= $2)
ORDER BY valid_from ASC`
	var assignments []models.TutorAssignment
	if err := sqlx.SelectContext(ctx, r.exec(exec), &assignments, query, tutorID, date); err != nil {
		return nil, fmt.Errorf("list tutor assignments: %w", err)
	}
	return assignments, nil
}

// ListHistory returns every tutor the classroom has had, newest first.
func (r *TutorAssignmentRepository) ListHistory(ctx context.Context, classroomID string) ([]models.TutorAssignment, error) {
	const query = `SELECT id, classroom_id, tutor_id, valid_from, valid_to, change_reason, created_at
FROM tutor_classroom_history
WHERE classroom_id = $1
ORDER BY valid_from DESC`
	var assignments []models.TutorAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, classroomID); err != nil {
		return nil, fmt.Errorf("list tutor history: %w", err)
	}
	return assignments, nil
}

// Timetable returns the weekly slots of every classroom the tutor teaches on date.
func (r *TutorAssignmentRepository) Timetable(ctx context.Context, tutorID string, date time.Time) ([]models.TimetableEntry, error) {
	const query = `
SELECT th.classroom_id, c.name AS classroom_name, s.id AS slot_id, s.weekday, s.start_time, s.end_time,
       COALESCE(s.equivalent_minutes, 45) AS equivalent_minutes
FROM tutor_classroom_history th
JOIN classrooms c ON c.id = th.classroom_id
JOIN classroom_schedule_history ch ON ch.classroom_id = th.classroom_id
JOIN schedule_slots s ON s.id = ch.slot_id
WHERE th.tutor_id = $1
  AND th.valid_from <= $2 AND (th.valid_to IS NULL OR th.valid_to >= $2)
  AND ch.valid_from <= $2 AND (ch.valid_to IS NULL OR ch.valid_to >= $2)
ORDER BY s.start_time ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, tutorID, date); err != nil {
		return nil, fmt.Errorf("load tutor timetable: %w", err)
	}
	return entries, nil
}

// Create inserts a new assignment.
func (r *TutorAssignmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.TutorAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO tutor_classroom_history (id, classroom_id, tutor_id, valid_from, valid_to, change_reason, created_at)
		VALUES (:id, :classroom_id, :tutor_id, :valid_from, :valid_to, :change_reason, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, assignment); err != nil {
		return fmt.Errorf("create tutor assignment: %w", err)
	}
	return nil
}

// LockInterval locks an assignment row for the rest of the transaction.
func (r *TutorAssignmentRepository) LockInterval(ctx context.Context, exec sqlx.ExtContext, id string) (*models.IntervalRow, error) {
	return lockIntervalRow(ctx, r.exec(exec), tutorAssignmentTable, id)
}

// CloseInterval ends an open assignment, keeping the change reason when one is given.
func (r *TutorAssignmentRepository) CloseInterval(ctx context.Context, exec sqlx.ExtContext, params models.IntervalClose) error {
	const query = `UPDATE tutor_classroom_history SET valid_to = $2, change_reason = COALESCE($3, change_reason)
WHERE id = $1 AND valid_to IS NULL`
	result, err := r.exec(exec).ExecContext(ctx, query, params.ID, params.End, params.Reason)
	if err != nil {
		return fmt.Errorf("close tutor assignment: %w", err)
	}
	return checkAffected(result, tutorAssignmentTable)
}
