package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/globalenglish-api/internal/dto"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

func seedMobility(e *engine) {
	e.store.addClassroom("c3", 9, "AFTERNOON")
	e.store.addClassroom("c10", 10, "AFTERNOON")
	e.store.addClassroom("c4", 4, "MORNING")
	e.store.addClassroom("c5", 5, "MORNING")
}

func TestStudentAssignmentServiceMoveScenario(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	seedMobility(e)
	e.store.placeStudent("c3", "s-1", "2025-01-15", nil)
	ctx := context.Background()

	result, err := e.students.Move(ctx, dto.MoveStudentRequest{
		StudentID:       "s-1",
		FromClassroomID: "c3",
		ToClassroomID:   "c10",
		CloseDate:       "2025-02-28",
		NewStartDate:    "2025-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, day("2025-02-28"), *result.Closed.ValidTo)
	assert.Equal(t, "c10", result.Opened.ClassroomID)
	assert.Nil(t, result.Opened.ValidTo)

	_, err = e.students.Move(ctx, dto.MoveStudentRequest{
		StudentID:       "s-1",
		FromClassroomID: "c10",
		ToClassroomID:   "c4",
		CloseDate:       "2025-04-30",
		NewStartDate:    "2025-05-01",
	})
	requireRejection(t, err, appErrors.ErrGradeGroupMismatch)
	require.Len(t, e.store.openStudents("s-1"), 1)
	assert.Equal(t, "c10", e.store.openStudents("s-1")[0].ClassroomID)
}

func TestStudentAssignmentServiceMoveDefaultsCloseDateToToday(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	seedMobility(e)
	e.store.placeStudent("c3", "s-1", "2025-01-15", nil)
	ctx := context.Background()

	result, err := e.students.Move(ctx, dto.MoveStudentRequest{
		StudentID:       "s-1",
		FromClassroomID: "c3",
		ToClassroomID:   "c10",
		NewStartDate:    "2025-02-02",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Closed.ValidTo)
	assert.Equal(t, day("2025-02-01"), *result.Closed.ValidTo)
	assert.Equal(t, day("2025-02-02"), result.Opened.ValidFrom)

	e.store.placeStudent("c5", "s-2", "2025-01-15", nil)
	_, err = e.students.Move(ctx, dto.MoveStudentRequest{
		StudentID:       "s-2",
		FromClassroomID: "c5",
		ToClassroomID:   "c4",
		NewStartDate:    "2025-02-01",
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	require.Len(t, e.store.openStudents("s-2"), 1)
}

func TestStudentAssignmentServiceMoveAcrossGroupsAlwaysFails(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	seedMobility(e)
	e.store.placeStudent("c5", "s-1", "2025-01-15", nil)

	_, err := e.students.Move(context.Background(), dto.MoveStudentRequest{
		StudentID:       "s-1",
		FromClassroomID: "c5",
		ToClassroomID:   "c3",
		CloseDate:       "2025-02-28",
		NewStartDate:    "2025-03-01",
	})
	requireRejection(t, err, appErrors.ErrGradeGroupMismatch)
	assert.Nil(t, e.store.students[0].ValidTo)
}

func TestStudentAssignmentServiceMoveValidation(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	seedMobility(e)
	e.store.placeStudent("c3", "s-1", "2025-01-15", nil)
	ctx := context.Background()

	_, err := e.students.Move(ctx, dto.MoveStudentRequest{
		StudentID: "s-1", FromClassroomID: "c3", ToClassroomID: "c10", CloseDate: "2025-02-28", NewStartDate: "2025-02-28",
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = e.students.Move(ctx, dto.MoveStudentRequest{
		StudentID: "s-1", FromClassroomID: "c3", ToClassroomID: "c3", CloseDate: "2025-02-28", NewStartDate: "2025-03-01",
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = e.students.Move(ctx, dto.MoveStudentRequest{
		StudentID: "s-1", FromClassroomID: "c3", ToClassroomID: "c10", CloseDate: "2025-01-10", NewStartDate: "2025-03-01",
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, e.store.students[0].ValidTo)
}

func TestStudentAssignmentServiceMoveWithoutOrigin(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	seedMobility(e)

	_, err := e.students.Move(context.Background(), dto.MoveStudentRequest{
		StudentID: "s-1", FromClassroomID: "c3", ToClassroomID: "c10", CloseDate: "2025-02-28", NewStartDate: "2025-03-01",
	})
	requireRejection(t, err, appErrors.ErrNotActive)
}

func TestStudentAssignmentServiceMoveDestinationOverlap(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	seedMobility(e)
	e.store.placeStudent("c3", "s-1", "2025-01-15", nil)
	e.store.placeStudent("c10", "s-1", "2025-06-01", dayPtr("2025-06-30"))

	_, err := e.students.Move(context.Background(), dto.MoveStudentRequest{
		StudentID: "s-1", FromClassroomID: "c3", ToClassroomID: "c10", CloseDate: "2025-02-28", NewStartDate: "2025-03-01",
	})
	requireRejection(t, err, appErrors.ErrOverlapConflict)
	assert.Nil(t, e.store.students[0].ValidTo)
	assert.Len(t, e.store.students, 2)
}

func TestStudentSingleActiveAssignment(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	seedMobility(e)
	ctx := context.Background()

	_, err := e.students.Assign(ctx, dto.AssignStudentRequest{StudentID: "s-1", ClassroomID: "c3", StartDate: "2025-02-01"})
	require.NoError(t, err)
	for _, room := range []string{"c3", "c10", "c4"} {
		_, err := e.students.Assign(ctx, dto.AssignStudentRequest{StudentID: "s-1", ClassroomID: room, StartDate: "2025-03-01"})
		requireRejection(t, err, appErrors.ErrAlreadyAssigned)
	}
	assert.Len(t, e.store.openStudents("s-1"), 1)
	assert.Equal(t, [][]string{{"student:s-1"}, {"student:s-1"}, {"student:s-1"}, {"student:s-1"}}, e.uow.keys)
}

func TestStudentAssignmentServiceCloseAndList(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	seedMobility(e)
	ctx := context.Background()

	assignment, err := e.students.Assign(ctx, dto.AssignStudentRequest{StudentID: "s-1", ClassroomID: "c3", StartDate: "2025-01-10"})
	require.NoError(t, err)
	_, err = e.students.Assign(ctx, dto.AssignStudentRequest{StudentID: "s-2", ClassroomID: "c3", StartDate: "2025-02-05"})
	require.NoError(t, err)

	students, err := e.students.ClassroomStudents(ctx, "c3", "")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "s-1", students[0].StudentID)

	_, err = e.students.Close(ctx, assignment.ID, dto.CloseIntervalRequest{EndDate: "2025-02-10"})
	require.NoError(t, err)
	_, err = e.students.Close(ctx, assignment.ID, dto.CloseIntervalRequest{EndDate: "2025-02-10"})
	requireRejection(t, err, appErrors.ErrNotActive)

	students, err = e.students.ClassroomStudents(ctx, "c3", "2025-02-11")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "s-2", students[0].StudentID)

	_, err = e.students.ClassroomStudents(ctx, "c3", "11-02-2025")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
