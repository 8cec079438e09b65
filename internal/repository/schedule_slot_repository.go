package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/globalenglish-api/internal/models"
)

// ScheduleSlotRepository reads the weekly slot catalog.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository constructs the repository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

func (r *ScheduleSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID returns a catalog slot.
func (r *ScheduleSlotRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ScheduleSlot, error) {
	const query = `SELECT id, weekday, start_time, end_time, equivalent_minutes, continuous, label FROM schedule_slots WHERE id = $1`
	var slot models.ScheduleSlot
	if err := sqlx.GetContext(ctx, r.exec(exec), &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find schedule slot: %w", err)
	}
	return &slot, nil
}
