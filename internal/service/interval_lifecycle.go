package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/internal/scheduling"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

type intervalStore interface {
	LockInterval(ctx context.Context, exec sqlx.ExtContext, id string) (*models.IntervalRow, error)
	CloseInterval(ctx context.Context, exec sqlx.ExtContext, params models.IntervalClose) error
}

type unitOfWork interface {
	Run(ctx context.Context, keys []string, fn func(exec sqlx.ExtContext) error) error
}

// ReassignPlan is a close-then-open sequence executed atomically.
type ReassignPlan struct {
	Close func(exec sqlx.ExtContext) error
	Check func(exec sqlx.ExtContext) error
	Open  func(exec sqlx.ExtContext) error
}

// IntervalLifecycle closes validity intervals and composes atomic reassignments.
type IntervalLifecycle struct {
	uow    unitOfWork
	stores map[models.IntervalKind]intervalStore
	clock  scheduling.Clock
	logger *zap.Logger
}

// NewIntervalLifecycle wires the lifecycle to the three interval stores.
func NewIntervalLifecycle(uow unitOfWork, schedules, tutors, students intervalStore, clock scheduling.Clock, logger *zap.Logger) *IntervalLifecycle {
	if clock == nil {
		clock = scheduling.SystemClock{Location: time.UTC}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntervalLifecycle{
		uow: uow,
		stores: map[models.IntervalKind]intervalStore{
			models.IntervalClassroomSchedule: schedules,
			models.IntervalTutor:             tutors,
			models.IntervalStudent:           students,
		},
		clock:  clock,
		logger: logger,
	}
}

// Today returns the lifecycle's current date.
func (l *IntervalLifecycle) Today() time.Time {
	return l.clock.Today()
}

// Close ends an active interval inside the caller's transaction. A nil end
// means today. Closing an interval that is already closed or does not exist
// fails with NOT_ACTIVE.
func (l *IntervalLifecycle) Close(ctx context.Context, exec sqlx.ExtContext, kind models.IntervalKind, id string, end *time.Time, reason *string) (*models.IntervalRow, error) {
	store, ok := l.stores[kind]
	if !ok || store == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown interval kind %q", kind))
	}
	ids := map[string]string{"assignment_id": id, "interval_kind": string(kind)}

	row, err := store.LockInterval(ctx, exec, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, reject(appErrors.ErrNotActive, &models.AssignmentRejection{
				Message:   fmt.Sprintf("%s assignment %s does not exist", kind, id),
				EntityIDs: ids,
			})
		}
		return nil, internalError(err, "failed to load interval")
	}
	if row.ValidTo != nil {
		return nil, reject(appErrors.ErrNotActive, &models.AssignmentRejection{
			Message:   fmt.Sprintf("%s assignment %s already closed on %s", kind, id, row.ValidTo.Format(scheduling.DateLayout)),
			EntityIDs: ids,
		})
	}

	closeOn := l.clock.Today()
	if end != nil {
		closeOn = scheduling.DateOf(*end)
	}
	closed, err := scheduling.Interval{From: row.ValidFrom}.Close(closeOn)
	if err != nil {
		return nil, validationError(err, fmt.Sprintf("end date %s is before the interval start %s",
			closeOn.Format(scheduling.DateLayout), scheduling.DateOf(row.ValidFrom).Format(scheduling.DateLayout)))
	}

	if err := store.CloseInterval(ctx, exec, models.IntervalClose{ID: id, End: *closed.To, Reason: reason}); err != nil {
		if err == sql.ErrNoRows {
			return nil, reject(appErrors.ErrNotActive, &models.AssignmentRejection{
				Message:   fmt.Sprintf("%s assignment %s is no longer active", kind, id),
				EntityIDs: ids,
			})
		}
		return nil, internalError(err, "failed to close interval")
	}

	l.logger.Debug("interval closed",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.Time("valid_to", *closed.To),
	)
	return &models.IntervalRow{ID: row.ID, ValidFrom: row.ValidFrom, ValidTo: closed.To}, nil
}

// CloseInterval closes an interval in its own unit of work.
func (l *IntervalLifecycle) CloseInterval(ctx context.Context, kind models.IntervalKind, id string, end *time.Time, reason *string) (*models.IntervalRow, error) {
	var closed *models.IntervalRow
	err := l.Run(ctx, nil, func(exec sqlx.ExtContext) error {
		row, err := l.Close(ctx, exec, kind, id, end, reason)
		if err != nil {
			return err
		}
		closed = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// Run executes fn in a unit of work holding the given entity locks.
func (l *IntervalLifecycle) Run(ctx context.Context, keys []string, fn func(exec sqlx.ExtContext) error) error {
	return asAppError(l.uow.Run(ctx, keys, fn), "assignment transaction failed")
}

// Reassign closes the old interval, checks the replacement and opens it in one
// unit of work. Any failure leaves the old interval untouched.
func (l *IntervalLifecycle) Reassign(ctx context.Context, keys []string, plan ReassignPlan) error {
	return l.Run(ctx, keys, func(exec sqlx.ExtContext) error {
		if plan.Close != nil {
			if err := plan.Close(exec); err != nil {
				return err
			}
		}
		if plan.Check != nil {
			if err := plan.Check(exec); err != nil {
				return err
			}
		}
		if plan.Open != nil {
			return plan.Open(exec)
		}
		return nil
	})
}
