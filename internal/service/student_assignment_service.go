package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/globalenglish-api/internal/dto"
	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/internal/scheduling"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

type studentAssignmentStore interface {
	intervalStore
	studentAssignmentLister
	ListByClassroomOn(ctx context.Context, classroomID string, date time.Time) ([]models.ClassroomStudent, error)
	Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.StudentAssignment) error
}

// StudentAssignmentService places students in classrooms and moves them between classrooms.
type StudentAssignmentService struct {
	repo       studentAssignmentStore
	classrooms classroomProfileReader
	checker    *ConflictChecker
	lifecycle  *IntervalLifecycle
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentAssignmentService builds the service.
func NewStudentAssignmentService(
	repo studentAssignmentStore,
	classrooms classroomProfileReader,
	checker *ConflictChecker,
	lifecycle *IntervalLifecycle,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *StudentAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentAssignmentService{
		repo:       repo,
		classrooms: classrooms,
		checker:    checker,
		lifecycle:  lifecycle,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// Assign opens a student assignment when the student holds no conflicting interval.
func (s *StudentAssignmentService) Assign(ctx context.Context, req dto.AssignStudentRequest) (result *models.StudentAssignment, err error) {
	defer func(started time.Time) {
		observeAssignment(ctx, s.logger, s.metrics, "assign_student", started, err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student assignment payload")
	}
	start, err := parseRequiredDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}

	assignment := &models.StudentAssignment{
		StudentID:   req.StudentID,
		ClassroomID: req.ClassroomID,
		ValidFrom:   start,
		ValidTo:     end,
	}
	err = s.lifecycle.Run(ctx, []string{studentKey(req.StudentID)}, func(exec sqlx.ExtContext) error {
		if err := s.checker.Check(ctx, exec, Proposal{
			Kind:        ProposalStudentAssign,
			ClassroomID: req.ClassroomID,
			StudentID:   req.StudentID,
			Start:       start,
			End:         end,
		}); err != nil {
			return err
		}
		return s.create(ctx, exec, assignment)
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Move closes the student's open interval in the origin classroom on close_date
// and opens one in the destination from new_start_date, atomically.
func (s *StudentAssignmentService) Move(ctx context.Context, req dto.MoveStudentRequest) (result *models.MoveResult, err error) {
	defer func(started time.Time) {
		observeAssignment(ctx, s.logger, s.metrics, "move_student", started, err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student move payload")
	}
	closeOn := s.lifecycle.Today()
	if req.CloseDate != "" {
		closeOn, err = parseRequiredDate(req.CloseDate, "close_date")
		if err != nil {
			return nil, err
		}
	}
	start, err := parseRequiredDate(req.NewStartDate, "new_start_date")
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.NewEndDate, "new_end_date")
	if err != nil {
		return nil, err
	}
	if !start.After(closeOn) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("new_start_date %s must be after close_date %s",
			start.Format(scheduling.DateLayout), closeOn.Format(scheduling.DateLayout)))
	}

	var closed *models.IntervalRow
	opened := &models.StudentAssignment{
		StudentID:   req.StudentID,
		ClassroomID: req.ToClassroomID,
		ValidFrom:   start,
		ValidTo:     end,
	}
	err = s.lifecycle.Reassign(ctx, []string{studentKey(req.StudentID)}, ReassignPlan{
		Close: func(exec sqlx.ExtContext) error {
			origin, err := s.checker.ResolveMoveOrigin(ctx, exec, req.StudentID, req.FromClassroomID, req.ToClassroomID)
			if err != nil {
				return err
			}
			row, err := s.lifecycle.Close(ctx, exec, models.IntervalStudent, origin.ID, &closeOn, nil)
			if err != nil {
				return err
			}
			closed = row
			return nil
		},
		Check: func(exec sqlx.ExtContext) error {
			return s.checker.Check(ctx, exec, Proposal{
				Kind:            ProposalStudentMove,
				ClassroomID:     req.ToClassroomID,
				FromClassroomID: req.FromClassroomID,
				StudentID:       req.StudentID,
				Start:           start,
				End:             end,
			})
		},
		Open: func(exec sqlx.ExtContext) error {
			return s.create(ctx, exec, opened)
		},
	})
	if err != nil {
		return nil, err
	}
	return &models.MoveResult{Closed: *closed, Opened: *opened}, nil
}

// Close ends a student assignment.
func (s *StudentAssignmentService) Close(ctx context.Context, id string, req dto.CloseIntervalRequest) (result *models.IntervalRow, err error) {
	defer func(started time.Time) {
		observeAssignment(ctx, s.logger, s.metrics, "close_student", started, err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid close payload")
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}
	return s.lifecycle.CloseInterval(ctx, models.IntervalStudent, id, end, nil)
}

// ClassroomStudents lists the students assigned to the classroom on date (today when empty).
func (s *StudentAssignmentService) ClassroomStudents(ctx context.Context, classroomID, date string) ([]models.ClassroomStudent, error) {
	on := s.lifecycle.Today()
	if date != "" {
		parsed, err := parseRequiredDate(date, "date")
		if err != nil {
			return nil, err
		}
		on = parsed
	}
	if _, err := findClassroom(ctx, s.classrooms, nil, classroomID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByClassroomOn(ctx, classroomID, on)
	if err != nil {
		return nil, internalError(err, "failed to list classroom students")
	}
	if items == nil {
		items = []models.ClassroomStudent{}
	}
	return items, nil
}

func (s *StudentAssignmentService) create(ctx context.Context, exec sqlx.ExtContext, assignment *models.StudentAssignment) error {
	if err := s.repo.Create(ctx, exec, assignment); err != nil {
		return internalError(err, "failed to create student assignment")
	}
	return nil
}
