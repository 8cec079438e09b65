package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/globalenglish-api/internal/models"
)

// ClassroomRepository reads classroom attributes used by placement policy.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

func (r *ClassroomRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindProfile returns the classroom grade together with its institution shift.
func (r *ClassroomRepository) FindProfile(ctx context.Context, exec sqlx.ExtContext, classroomID string) (*models.ClassroomProfile, error) {
	const query = `
SELECT c.id, c.name, c.grade, c.institution_id, i.name AS institution_name, i.shift
FROM classrooms c
JOIN institutions i ON i.id = c.institution_id
WHERE c.id = $1`
	var profile models.ClassroomProfile
	if err := sqlx.GetContext(ctx, r.exec(exec), &profile, query, classroomID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find classroom profile: %w", err)
	}
	return &profile, nil
}
