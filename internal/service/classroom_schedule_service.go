package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/globalenglish-api/internal/dto"
	"github.com/noah-isme/globalenglish-api/internal/models"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

type classroomScheduleStore interface {
	intervalStore
	ListSince(ctx context.Context, exec sqlx.ExtContext, classroomID string, date time.Time) ([]models.ClassroomSlot, error)
	ListHistory(ctx context.Context, classroomID string) ([]models.ClassroomSlot, error)
	Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.ClassroomScheduleAssignment) error
}

type timetableInvalidator interface {
	ForgetAll(ctx context.Context)
}

// ClassroomScheduleService places catalog slots in classrooms.
type ClassroomScheduleService struct {
	repo       classroomScheduleStore
	classrooms classroomProfileReader
	checker    *ConflictChecker
	lifecycle  *IntervalLifecycle
	cache      timetableInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewClassroomScheduleService builds the service.
func NewClassroomScheduleService(
	repo classroomScheduleStore,
	classrooms classroomProfileReader,
	checker *ConflictChecker,
	lifecycle *IntervalLifecycle,
	cache timetableInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassroomScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomScheduleService{
		repo:       repo,
		classrooms: classrooms,
		checker:    checker,
		lifecycle:  lifecycle,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// Assign opens a schedule assignment after the placement policy and conflict checks pass.
func (s *ClassroomScheduleService) Assign(ctx context.Context, req dto.AssignClassroomSlotRequest) (result *models.ClassroomScheduleAssignment, err error) {
	defer func(started time.Time) {
		observeAssignment(ctx, s.logger, s.metrics, "assign_classroom_slot", started, err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid classroom schedule payload")
	}
	start, err := parseRequiredDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}

	assignment := &models.ClassroomScheduleAssignment{
		ClassroomID: req.ClassroomID,
		SlotID:      req.SlotID,
		ValidFrom:   start,
	}
	err = s.lifecycle.Run(ctx, []string{classroomKey(req.ClassroomID)}, func(exec sqlx.ExtContext) error {
		if err := s.checker.Check(ctx, exec, Proposal{
			Kind:        ProposalClassroomSlot,
			ClassroomID: req.ClassroomID,
			SlotID:      req.SlotID,
			Start:       start,
		}); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, exec, assignment); err != nil {
			return internalError(err, "failed to create classroom schedule assignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateTimetables(ctx)
	return assignment, nil
}

// Close ends a schedule assignment.
func (s *ClassroomScheduleService) Close(ctx context.Context, id string, req dto.CloseIntervalRequest) (result *models.IntervalRow, err error) {
	defer func(started time.Time) {
		observeAssignment(ctx, s.logger, s.metrics, "close_classroom_slot", started, err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid close payload")
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}
	row, err := s.lifecycle.CloseInterval(ctx, models.IntervalClassroomSchedule, id, end, nil)
	if err != nil {
		return nil, err
	}
	s.invalidateTimetables(ctx)
	return row, nil
}

// History lists every slot the classroom has held, newest first.
func (s *ClassroomScheduleService) History(ctx context.Context, classroomID string) ([]models.ClassroomSlot, error) {
	if _, err := findClassroom(ctx, s.classrooms, nil, classroomID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListHistory(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom schedule history")
	}
	if items == nil {
		items = []models.ClassroomSlot{}
	}
	return items, nil
}

func (s *ClassroomScheduleService) invalidateTimetables(ctx context.Context) {
	if s.cache != nil {
		s.cache.ForgetAll(ctx)
	}
}
