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

func TestClassroomScheduleServiceAssign(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	e.store.addClassroom("room-c", 4, "MORNING")
	e.store.addSlot("mon-0700", "MONDAY", "07:00", "08:30", intPtr(90))
	e.cache.entries["timetable:tutor:t-1:2025-02-01"] = "stale"

	assignment, err := e.schedules.Assign(context.Background(), dto.AssignClassroomSlotRequest{
		ClassroomID: "room-c",
		SlotID:      "mon-0700",
		StartDate:   "2025-02-03",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)
	assert.Equal(t, day("2025-02-03"), assignment.ValidFrom)
	assert.Nil(t, assignment.ValidTo)
	require.Len(t, e.store.schedules, 1)
	assert.Equal(t, [][]string{{"classroom:room-c"}}, e.uow.keys)
	assert.Contains(t, e.cache.invalidated, timetableCachePattern)
	assert.Empty(t, e.cache.entries)
}

func TestClassroomScheduleServiceCapacityNeverExceeded(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	e.store.addClassroom("room-c", 4, "MORNING")
	e.store.addSlot("mon", "MONDAY", "07:00", "08:00", nil)
	e.store.addSlot("tue", "TUESDAY", "07:00", "08:00", nil)
	e.store.addSlot("wed", "WEDNESDAY", "07:00", "08:00", nil)
	e.store.addSlot("thu", "THURSDAY", "07:00", "08:00", nil)
	ctx := context.Background()

	accepted := 0
	for _, slot := range []string{"mon", "tue", "wed", "thu"} {
		_, err := e.schedules.Assign(ctx, dto.AssignClassroomSlotRequest{ClassroomID: "room-c", SlotID: slot, StartDate: "2025-02-03"})
		if err != nil {
			requireRejection(t, err, appErrors.ErrCapacityExceeded)
			continue
		}
		accepted++
	}
	assert.Equal(t, 2, accepted)
	assert.Len(t, e.store.schedules, 2)
}

func TestClassroomScheduleServiceValidation(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	ctx := context.Background()

	_, err := e.schedules.Assign(ctx, dto.AssignClassroomSlotRequest{ClassroomID: "room-c", SlotID: "mon"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = e.schedules.Assign(ctx, dto.AssignClassroomSlotRequest{ClassroomID: "room-c", SlotID: "mon", StartDate: "03/02/2025"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, e.uow.keys)
}

func TestClassroomScheduleServiceStorageFailure(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	e.store.addClassroom("room-c", 4, "MORNING")
	e.store.addSlot("mon", "MONDAY", "07:00", "08:00", nil)
	e.store.createErr = errors.New("connection refused")

	_, err := e.schedules.Assign(context.Background(), dto.AssignClassroomSlotRequest{ClassroomID: "room-c", SlotID: "mon", StartDate: "2025-02-03"})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Empty(t, e.store.schedules)
}

func TestClassroomScheduleServiceCloseAndHistory(t *testing.T) {
	e := newEngine(t, "2025-02-01")
	e.store.addClassroom("room-c", 4, "MORNING")
	e.store.addSlot("mon", "MONDAY", "07:00", "08:00", nil)
	id := e.store.placeSlot("room-c", "mon", "2025-01-01", nil)
	ctx := context.Background()

	row, err := e.schedules.Close(ctx, id, dto.CloseIntervalRequest{EndDate: "2025-01-31"})
	require.NoError(t, err)
	assert.Equal(t, day("2025-01-31"), *row.ValidTo)

	_, err = e.schedules.Close(ctx, id, dto.CloseIntervalRequest{})
	requireRejection(t, err, appErrors.ErrNotActive)

	history, err := e.schedules.History(ctx, "room-c")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "MONDAY", history[0].Weekday)

	_, err = e.schedules.History(ctx, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
