package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/globalenglish-api/internal/models"
)

const studentAssignmentTable = "student_classroom_history"

// StudentAssignmentRepository persists student to classroom assignments.
type StudentAssignmentRepository struct {
	db *sqlx.DB
}

// NewStudentAssignmentRepository constructs the repository.
func NewStudentAssignmentRepository(db *sqlx.DB) *StudentAssignmentRepository {
	return &StudentAssignmentRepository{db: db}
}

func (r *StudentAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListForStudent returns every assignment of the student, oldest first.
func (r *StudentAssignmentRepository) ListForStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) ([]models.StudentAssignment, error) {
	const query = `SELECT id, student_id, classroom_id, valid_from, valid_to, created_at
FROM student_classroom_history
WHERE student_id = $1
ORDER BY valid_from ASC`
	var assignments []models.StudentAssignment
	if err := sqlx.SelectContext(ctx, r.exec(exec), &assignments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student assignments: %w", err)
	}
	return assignments, nil
}

// ListByClassroomOn returns the students enrolled in the classroom on date.
func (r *StudentAssignmentRepository) ListByClassroomOn(ctx context.Context, classroomID string, date time.Time) ([]models.ClassroomStudent, error) {
	const query = `SELECT id, student_id, valid_from, valid_to
FROM student_classroom_history
WHERE classroom_id = $1 AND valid_from <= $2 AND (valid_to IS NULL OR valid_to >= $2)
ORDER BY valid_from ASC`
	var students []models.ClassroomStudent
	if err := r.db.SelectContext(ctx, &students, query, classroomID, date); err != nil {
		return nil, fmt.Errorf("list classroom students: %w", err)
	}
	return students, nil
}

// Create inserts a new assignment.
func (r *StudentAssignmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.StudentAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_classroom_history (id, student_id, classroom_id, valid_from, valid_to, created_at)
		VALUES (:id, :student_id, :classroom_id, :valid_from, :valid_to, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, assignment); err != nil {
		return fmt.Errorf("create student assignment: %w", err)
	}
	return nil
}

// LockInterval locks an assignment row for the rest of the transaction.
func (r *StudentAssignmentRepository) LockInterval(ctx context.Context, exec sqlx.ExtContext, id string) (*models.IntervalRow, error) {
	return lockIntervalRow(ctx, r.exec(exec), studentAssignmentTable, id)
}

// CloseInterval ends an open assignment.
func (r *StudentAssignmentRepository) CloseInterval(ctx context.Context, exec sqlx.ExtContext, params models.IntervalClose) error {
	return closeIntervalRow(ctx, r.exec(exec), studentAssignmentTable, params)
}
