package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/globalenglish-api/internal/models"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

func TestCloseIntervalTwiceIsNotActive(t *testing.T) {
	e := newEngine(t, "2025-02-10")
	id := e.store.placeStudent("c3", "s-1", "2025-01-01", nil)
	ctx := context.Background()

	row, err := e.lifecycle.CloseInterval(ctx, models.IntervalStudent, id, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, row.ValidTo)
	assert.Equal(t, day("2025-02-10"), *row.ValidTo)

	_, err = e.lifecycle.CloseInterval(ctx, models.IntervalStudent, id, dayPtr("2025-02-11"), nil)
	requireRejection(t, err, appErrors.ErrNotActive)
	assert.Equal(t, day("2025-02-10"), *e.store.students[0].ValidTo)
}

func TestCloseIntervalEndBeforeStart(t *testing.T) {
	e := newEngine(t, "2025-02-10")
	id := e.store.placeTutor("c1", "tutor-t", "2025-02-01", nil)

	_, err := e.lifecycle.CloseInterval(context.Background(), models.IntervalTutor, id, dayPtr("2025-01-31"), nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, e.store.tutors[0].ValidTo)
}

func TestCloseIntervalSameDayAsStart(t *testing.T) {
	e := newEngine(t, "2025-02-10")
	id := e.store.placeSlot("c1", "slot-1", "2025-02-01", nil)

	row, err := e.lifecycle.CloseInterval(context.Background(), models.IntervalClassroomSchedule, id, dayPtr("2025-02-01"), nil)
	require.NoError(t, err)
	assert.Equal(t, day("2025-02-01"), *row.ValidTo)
}

func TestCloseIntervalUnknown(t *testing.T) {
	e := newEngine(t, "2025-02-10")
	ctx := context.Background()

	_, err := e.lifecycle.CloseInterval(ctx, models.IntervalTutor, "missing", nil, nil)
	rejection := requireRejection(t, err, appErrors.ErrNotActive)
	require.NotNil(t, rejection)
	assert.Equal(t, "missing", rejection.EntityIDs["assignment_id"])

	_, err = e.lifecycle.CloseInterval(ctx, models.IntervalStudent, "missing", nil, nil)
	requireRejection(t, err, appErrors.ErrNotActive)

	_, err = e.lifecycle.CloseInterval(ctx, models.IntervalKind("room"), "x", nil, nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCloseIntervalStoresReason(t *testing.T) {
	e := newEngine(t, "2025-02-10")
	id := e.store.placeTutor("c1", "tutor-t", "2025-01-01", nil)
	reason := "medical leave"

	_, err := e.lifecycle.CloseInterval(context.Background(), models.IntervalTutor, id, nil, &reason)
	require.NoError(t, err)
	require.NotNil(t, e.store.tutors[0].ChangeReason)
	assert.Equal(t, reason, *e.store.tutors[0].ChangeReason)
}

func TestReassignRollsBackOnFailedCheck(t *testing.T) {
	e := newEngine(t, "2025-02-10")
	id := e.store.placeStudent("c3", "s-1", "2025-01-01", nil)
	opened := false

	err := e.lifecycle.Reassign(context.Background(), []string{"student:s-1"}, ReassignPlan{
		Close: func(exec sqlx.ExtContext) error {
			_, err := e.lifecycle.Close(context.Background(), exec, models.IntervalStudent, id, nil, nil)
			return err
		},
		Check: func(exec sqlx.ExtContext) error {
			return appErrors.Clone(appErrors.ErrOverlapConflict, "destination busy")
		},
		Open: func(exec sqlx.ExtContext) error {
			opened = true
			return nil
		},
	})
	requireRejection(t, err, appErrors.ErrOverlapConflict)
	assert.False(t, opened)
	assert.Nil(t, e.store.students[0].ValidTo)
	assert.Equal(t, [][]string{{"student:s-1"}}, e.uow.keys)
}

func TestRunWrapsStorageFailures(t *testing.T) {
	e := newEngine(t, "2025-02-10")
	err := e.lifecycle.Run(context.Background(), nil, func(exec sqlx.ExtContext) error {
		return errors.New("connection reset")
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}
