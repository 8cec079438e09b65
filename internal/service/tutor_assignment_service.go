package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/globalenglish-api/internal/dto"
	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/internal/scheduling"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

type tutorAssignmentStore interface {
	intervalStore
	tutorAssignmentLister
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TutorAssignment, error)
	ListHistory(ctx context.Context, classroomID string) ([]models.TutorAssignment, error)
	Timetable(ctx context.Context, tutorID string, date time.Time) ([]models.TimetableEntry, error)
	Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.TutorAssignment) error
}

type timetableCache interface {
	timetableInvalidator
	Lookup(ctx context.Context, tutorID string, on time.Time) (*models.TutorTimetable, bool)
	Store(ctx context.Context, timetable *models.TutorTimetable)
	ForgetTutors(ctx context.Context, tutorIDs ...string)
}

// TutorAssignmentService links tutors to classrooms and serves their timetables.
type TutorAssignmentService struct {
	repo       tutorAssignmentStore
	classrooms classroomProfileReader
	checker    *ConflictChecker
	lifecycle  *IntervalLifecycle
	cache      timetableCache
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTutorAssignmentService builds the service.
func NewTutorAssignmentService(
	repo tutorAssignmentStore,
	classrooms classroomProfileReader,
	checker *ConflictChecker,
	lifecycle *IntervalLifecycle,
	cache timetableCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TutorAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorAssignmentService{
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

// Assign opens a tutor assignment after occupancy and timetable overlap checks.
func (s *TutorAssignmentService) Assign(ctx context.Context, req dto.AssignTutorRequest) (result *models.TutorAssignment, err error) {
	defer func(started time.Time) {
		observeAssignment(ctx, s.logger, s.metrics, "assign_tutor", started, err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid tutor assignment payload")
	}
	start, err := parseRequiredDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}

	assignment := &models.TutorAssignment{
		ClassroomID: req.ClassroomID,
		TutorID:     req.TutorID,
		ValidFrom:   start,
		ValidTo:     end,
	}
	keys := []string{classroomKey(req.ClassroomID), tutorKey(req.TutorID)}
	err = s.lifecycle.Run(ctx, keys, func(exec sqlx.ExtContext) error {
		if err := s.checker.Check(ctx, exec, Proposal{
			Kind:        ProposalTutor,
			ClassroomID: req.ClassroomID,
			TutorID:     req.TutorID,
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
	s.forgetTutors(ctx, req.TutorID)
	return assignment, nil
}

// Change closes the classroom's current tutor assignment and opens one for the
// new tutor in a single unit of work. A rejected check keeps the old assignment open.
func (s *TutorAssignmentService) Change(ctx context.Context, req dto.ChangeTutorRequest) (result *models.TutorChangeResult, err error) {
	defer func(started time.Time) {
		observeAssignment(ctx, s.logger, s.metrics, "change_tutor", started, err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid tutor change payload")
	}
	start, err := parseRequiredDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	oldEnd, err := parseOptionalDate(req.OldEndDate, "old_end_date")
	if err != nil {
		return nil, err
	}
	if oldEnd == nil {
		today := s.lifecycle.Today()
		oldEnd = &today
	}
	if !start.After(*oldEnd) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("start_date %s must be after the previous assignment end %s",
			start.Format(scheduling.DateLayout), oldEnd.Format(scheduling.DateLayout)))
	}

	var (
		previous *models.TutorAssignment
		closed   *models.IntervalRow
	)
	opened := &models.TutorAssignment{
		ClassroomID: req.ClassroomID,
		TutorID:     req.NewTutorID,
		ValidFrom:   start,
	}
	keys := []string{classroomKey(req.ClassroomID), tutorKey(req.NewTutorID)}
	err = s.lifecycle.Reassign(ctx, keys, ReassignPlan{
		Close: func(exec sqlx.ExtContext) error {
			current, err := s.repo.FindByID(ctx, exec, req.OldAssignmentID)
			if err != nil {
				if err == sql.ErrNoRows {
					return reject(appErrors.ErrNotActive, &models.AssignmentRejection{
						Message:   fmt.Sprintf("tutor assignment %s does not exist", req.OldAssignmentID),
						EntityIDs: map[string]string{
							"assignment_id": req.OldAssignmentID,
							"classroom_id":  req.ClassroomID,
						},
					})
				}
				return internalError(err, "failed to load tutor assignment")
			}
			if current.ClassroomID != req.ClassroomID {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("tutor assignment %s does not belong to classroom %s", current.ID, req.ClassroomID))
			}
			previous = current
			row, err := s.lifecycle.Close(ctx, exec, models.IntervalTutor, current.ID, oldEnd, optionalString(req.Reason))
			if err != nil {
				return err
			}
			closed = row
			return nil
		},
		Check: func(exec sqlx.ExtContext) error {
			return s.checker.Check(ctx, exec, Proposal{
				Kind:        ProposalTutor,
				ClassroomID: req.ClassroomID,
				TutorID:     req.NewTutorID,
				Start:       start,
			})
		},
		Open: func(exec sqlx.ExtContext) error {
			return s.create(ctx, exec, opened)
		},
	})
	if err != nil {
		return nil, err
	}

	s.forgetTutors(ctx, previous.TutorID, req.NewTutorID)
	return &models.TutorChangeResult{Closed: *closed, Opened: *opened}, nil
}

// Close ends a tutor assignment.
func (s *TutorAssignmentService) Close(ctx context.Context, id string, req dto.CloseIntervalRequest) (result *models.IntervalRow, err error) {
	defer func(started time.Time) {
		observeAssignment(ctx, s.logger, s.metrics, "close_tutor", started, err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid close payload")
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}
	row, err := s.lifecycle.CloseInterval(ctx, models.IntervalTutor, id, end, optionalString(req.Reason))
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.ForgetAll(ctx)
	}
	return row, nil
}

// History lists every tutor the classroom has had, newest first.
func (s *TutorAssignmentService) History(ctx context.Context, classroomID string) ([]models.TutorAssignment, error) {
	if _, err := findClassroom(ctx, s.classrooms, nil, classroomID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListHistory(ctx, classroomID)
	if err != nil {
		return nil, internalError(err, "failed to load tutor history")
	}
	if items == nil {
		items = []models.TutorAssignment{}
	}
	return items, nil
}

// Timetable returns the tutor's weekly slots as of date (today when empty).
// The boolean reports a cache hit.
func (s *TutorAssignmentService) Timetable(ctx context.Context, tutorID, date string) (*models.TutorTimetable, bool, error) {
	on := s.lifecycle.Today()
	if date != "" {
		parsed, err := parseRequiredDate(date, "date")
		if err != nil {
			return nil, false, err
		}
		on = parsed
	}

	if s.cache != nil {
		if cached, hit := s.cache.Lookup(ctx, tutorID, on); hit {
			return cached, true, nil
		}
	}

	entries, err := s.repo.Timetable(ctx, tutorID, on)
	if err != nil {
		return nil, false, internalError(err, "failed to load tutor timetable")
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di := scheduling.Weekday(entries[i].Weekday).Index()
		dj := scheduling.Weekday(entries[j].Weekday).Index()
		if di != dj {
			return di < dj
		}
		return entries[i].StartTime < entries[j].StartTime
	})

	timetable := &models.TutorTimetable{TutorID: tutorID, Date: on, Entries: entries}
	if timetable.Entries == nil {
		timetable.Entries = []models.TimetableEntry{}
	}
	for _, entry := range timetable.Entries {
		timetable.TotalMinutes += entry.EquivalentMinutes
	}

	if s.cache != nil {
		s.cache.Store(ctx, timetable)
	}
	return timetable, false, nil
}

func (s *TutorAssignmentService) create(ctx context.Context, exec sqlx.ExtContext, assignment *models.TutorAssignment) error {
	if err := s.repo.Create(ctx, exec, assignment); err != nil {
		return internalError(err, "failed to create tutor assignment")
	}
	return nil
}

func (s *TutorAssignmentService) forgetTutors(ctx context.Context, tutorIDs ...string) {
	if s.cache != nil {
		s.cache.ForgetTutors(ctx, tutorIDs...)
	}
}
