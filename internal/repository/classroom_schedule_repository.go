package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/globalenglish-api/internal/models"
)

const classroomScheduleTable = "classroom_schedule_history"

const classroomSlotColumns = `
SELECT h.id AS assignment_id, h.classroom_id, h.slot_id, s.weekday, s.start_time, s.end_time,
       s.equivalent_minutes, h.valid_from, h.valid_to
FROM classroom_schedule_history h
JOIN schedule_slots s ON s.id = h.slot_id`

// ClassroomScheduleRepository persists the dated slot assignments of classrooms.
type ClassroomScheduleRepository struct {
	db *sqlx.DB
}

// NewClassroomScheduleRepository constructs the repository.
func NewClassroomScheduleRepository(db *sqlx.DB) *ClassroomScheduleRepository {
	return &ClassroomScheduleRepository{db: db}
}

func (r *ClassroomScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListSince returns the classroom's slots that are still valid on or after date:
// every open assignment plus closed ones ending on or after date.
func (r *ClassroomScheduleRepository) ListSince(ctx context.Context, exec sqlx.ExtContext, classroomID string, date time.Time) ([]models.ClassroomSlot, error) {
	query := classroomSlotColumns + `
WHERE h.classroom_id = $1 AND (h.valid_to IS NULL OR h.valid_to >= $2)
ORDER BY h.valid_from ASC, s.start_time ASC`
	var slots []models.ClassroomSlot
	if err := sqlx.SelectContext(ctx, r.exec(exec), &slots, query, classroomID, date); err != nil {
		return nil, fmt.Errorf("list classroom slots: %w", err)
	}
	return slots, nil
}

// ListHistory returns every slot assignment of the classroom, newest first.
func (r *ClassroomScheduleRepository) ListHistory(ctx context.Context, classroomID string) ([]models.ClassroomSlot, error) {
	query := classroomSlotColumns + `
WHERE h.classroom_id = $1
ORDER BY h.valid_from DESC, s.start_time ASC`
	var slots []models.ClassroomSlot
	if err := r.db.SelectContext(ctx, &slots, query, classroomID); err != nil {
		return nil, fmt.Errorf("list classroom schedule history: %w", err)
	}
	return slots, nil
}

// Create inserts a new assignment.
func (r *ClassroomScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.ClassroomScheduleAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO classroom_schedule_history (id, classroom_id, slot_id, valid_from, valid_to, created_at)
		VALUES (:id, :classroom_id, :slot_id, :valid_from, :valid_to, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, assignment); err != nil {
		return fmt.Errorf("create classroom schedule assignment: %w", err)
	}
	return nil
}

// LockInterval locks an assignment row for the rest of the transaction.
func (r *ClassroomScheduleRepository) LockInterval(ctx context.Context, exec sqlx.ExtContext, id string) (*models.IntervalRow, error) {
	return lockIntervalRow(ctx, r.exec(exec), classroomScheduleTable, id)
}

// CloseInterval ends an open assignment.
func (r *ClassroomScheduleRepository) CloseInterval(ctx context.Context, exec sqlx.ExtContext, params models.IntervalClose) error {
	return closeIntervalRow(ctx, r.exec(exec), classroomScheduleTable, params)
}
