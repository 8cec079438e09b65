package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/internal/scheduling"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

type classroomProfileReader interface {
	FindProfile(ctx context.Context, exec sqlx.ExtContext, classroomID string) (*models.ClassroomProfile, error)
}

type scheduleSlotReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ScheduleSlot, error)
}

type classroomSlotLister interface {
	ListSince(ctx context.Context, exec sqlx.ExtContext, classroomID string, date time.Time) ([]models.ClassroomSlot, error)
}

type tutorAssignmentLister interface {
	ListForClassroomSince(ctx context.Context, exec sqlx.ExtContext, classroomID string, date time.Time) ([]models.TutorAssignment, error)
	ListForTutorSince(ctx context.Context, exec sqlx.ExtContext, tutorID string, date time.Time) ([]models.TutorAssignment, error)
}

type studentAssignmentLister interface {
	ListForStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) ([]models.StudentAssignment, error)
}

// ProposalKind selects which rules a proposal is checked against.
type ProposalKind string

const (
	ProposalClassroomSlot ProposalKind = "classroom_slot"
	ProposalTutor         ProposalKind = "tutor"
	ProposalStudentAssign ProposalKind = "student_assign"
	ProposalStudentMove   ProposalKind = "student_move"
)

// Proposal is a candidate interval to validate before it is opened.
type Proposal struct {
	Kind            ProposalKind
	ClassroomID     string
	SlotID          string
	TutorID         string
	StudentID       string
	FromClassroomID string
	Start           time.Time
	End             *time.Time
}

// ConflictChecker validates classroom, tutor and student proposals against the
// intervals already stored and the placement policy. Reads go through exec so
// they observe the caller's transaction.
type ConflictChecker struct {
	classrooms classroomProfileReader
	slots      scheduleSlotReader
	schedules  classroomSlotLister
	tutors     tutorAssignmentLister
	students   studentAssignmentLister
	policy     scheduling.PolicyTable
}

// NewConflictChecker builds the checker.
func NewConflictChecker(
	classrooms classroomProfileReader,
	slots scheduleSlotReader,
	schedules classroomSlotLister,
	tutors tutorAssignmentLister,
	students studentAssignmentLister,
	policy scheduling.PolicyTable,
) *ConflictChecker {
	return &ConflictChecker{
		classrooms: classrooms,
		slots:      slots,
		schedules:  schedules,
		tutors:     tutors,
		students:   students,
		policy:     policy,
	}
}

// Check returns nil when the proposal may be opened, or a typed rejection.
func (c *ConflictChecker) Check(ctx context.Context, exec sqlx.ExtContext, p Proposal) error {
	p.Start = scheduling.DateOf(p.Start)
	switch p.Kind {
	case ProposalClassroomSlot:
		return c.checkClassroomSlot(ctx, exec, p)
	case ProposalTutor:
		return c.checkTutor(ctx, exec, p)
	case ProposalStudentAssign:
		return c.checkStudentAssign(ctx, exec, p)
	case ProposalStudentMove:
		return c.checkStudentMove(ctx, exec, p)
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown proposal kind %q", p.Kind))
	}
}

func (c *ConflictChecker) checkClassroomSlot(ctx context.Context, exec sqlx.ExtContext, p Proposal) error {
	profile, err := c.profile(ctx, exec, p.ClassroomID)
	if err != nil {
		return err
	}
	slot, err := c.slots.FindByID(ctx, exec, p.SlotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
		}
		return internalError(err, "failed to load schedule slot")
	}
	candidate, err := spanOf(slot.ID, slot.Weekday, slot.StartTime, slot.EndTime)
	if err != nil {
		return err
	}
	ids := map[string]string{"classroom_id": p.ClassroomID, "slot_id": p.SlotID}

	window, err := c.window(profile)
	if err != nil {
		return err
	}
	if err := window.Validate(candidate); err != nil {
		return policyRejection(err, ids, slotRef(p.ClassroomID, p.SlotID, candidate))
	}

	rows, err := c.schedules.ListSince(ctx, exec, p.ClassroomID, p.Start)
	if err != nil {
		return internalError(err, "failed to load classroom schedule")
	}

	// Rows closed with a future end date are still in force for the proposal.
	proposed := scheduling.Interval{From: p.Start, To: p.End}
	loads := make([]scheduling.Load, 0, len(rows)+1)
	for _, row := range rows {
		existing, err := spanOf(row.SlotID, row.Weekday, row.StartTime, row.EndTime)
		if err != nil {
			return err
		}
		interval := scheduling.Interval{From: row.ValidFrom, To: row.ValidTo}
		inForce := interval.Overlaps(proposed)

		switch {
		case inForce && interval.Active() && existing.SameAs(candidate):
			return reject(appErrors.ErrDuplicateSlot, &models.AssignmentRejection{
				Message:         fmt.Sprintf("classroom already has %s", existing),
				EntityIDs:       withID(ids, "assignment_id", row.AssignmentID),
				Slot:            slotRef(p.ClassroomID, p.SlotID, candidate),
				ConflictingSlot: slotRef(row.ClassroomID, row.SlotID, existing),
			})
		case inForce && existing.SameAs(candidate):
			return reject(appErrors.ErrDuplicateSlot, &models.AssignmentRejection{
				Message: fmt.Sprintf("%s is assigned to this classroom between %s and %s",
					existing, row.ValidFrom.Format(scheduling.DateLayout), row.ValidTo.Format(scheduling.DateLayout)),
				EntityIDs:       withID(ids, "assignment_id", row.AssignmentID),
				Slot:            slotRef(p.ClassroomID, p.SlotID, candidate),
				ConflictingSlot: slotRef(row.ClassroomID, row.SlotID, existing),
			})
		case inForce && existing.Overlaps(candidate):
			return reject(appErrors.ErrOverlapConflict, &models.AssignmentRejection{
				Message:         fmt.Sprintf("%s overlaps %s", candidate, existing),
				EntityIDs:       withID(ids, "assignment_id", row.AssignmentID),
				Slot:            slotRef(p.ClassroomID, p.SlotID, candidate),
				ConflictingSlot: slotRef(row.ClassroomID, row.SlotID, existing),
			})
		}
		loads = append(loads, scheduling.Load{Interval: interval, Minutes: scheduling.EquivalentOrDefault(row.EquivalentMinutes)})
	}

	loads = append(loads, scheduling.Load{
		Interval: scheduling.Interval{From: p.Start},
		Minutes:  scheduling.EquivalentOrDefault(slot.EquivalentMinutes),
	})
	if total := scheduling.PeakLoad(loads, p.Start); total > window.CapMinutes {
		return reject(appErrors.ErrCapacityExceeded, &models.AssignmentRejection{
			Message:   fmt.Sprintf("classroom would carry %d equivalent minutes, cap is %d", total, window.CapMinutes),
			EntityIDs: ids,
			Slot:      slotRef(p.ClassroomID, p.SlotID, candidate),
		})
	}
	return nil
}

func (c *ConflictChecker) checkTutor(ctx context.Context, exec sqlx.ExtContext, p Proposal) error {
	if _, err := c.profile(ctx, exec, p.ClassroomID); err != nil {
		return err
	}
	proposed, err := scheduling.NewInterval(p.Start, p.End)
	if err != nil {
		return validationError(err, "end_date must not be before start_date")
	}
	ids := map[string]string{"classroom_id": p.ClassroomID, "tutor_id": p.TutorID}

	held, err := c.tutors.ListForTutorSince(ctx, exec, p.TutorID, p.Start)
	if err != nil {
		return internalError(err, "failed to load tutor assignments")
	}
	for _, a := range held {
		if a.ValidTo == nil && scheduling.DateOf(a.ValidFrom).Equal(p.Start) {
			return reject(appErrors.ErrAlreadyAssigned, &models.AssignmentRejection{
				Message:   fmt.Sprintf("tutor already has an open assignment starting %s", p.Start.Format(scheduling.DateLayout)),
				EntityIDs: withID(withID(ids, "assignment_id", a.ID), "assigned_classroom_id", a.ClassroomID),
			})
		}
	}

	staffed, err := c.tutors.ListForClassroomSince(ctx, exec, p.ClassroomID, p.Start)
	if err != nil {
		return internalError(err, "failed to load classroom tutors")
	}
	for _, a := range staffed {
		if (scheduling.Interval{From: a.ValidFrom, To: a.ValidTo}).Overlaps(proposed) {
			return reject(appErrors.ErrAlreadyOccupied, &models.AssignmentRejection{
				Message:   fmt.Sprintf("classroom already has tutor %s from %s", a.TutorID, a.ValidFrom.Format(scheduling.DateLayout)),
				EntityIDs: withID(withID(ids, "assignment_id", a.ID), "current_tutor_id", a.TutorID),
			})
		}
	}

	own := map[time.Time][]classroomSpan{}
	for _, a := range held {
		if a.ClassroomID == p.ClassroomID {
			continue
		}
		if !(scheduling.Interval{From: a.ValidFrom, To: a.ValidTo}).Overlaps(proposed) {
			continue
		}
		// Both classrooms are first taught together on the later of the two start dates.
		on := p.Start
		if from := scheduling.DateOf(a.ValidFrom); from.After(on) {
			on = from
		}
		mine, ok := own[on]
		if !ok {
			if mine, err = c.activeSpans(ctx, exec, p.ClassroomID, on); err != nil {
				return err
			}
			own[on] = mine
		}
		theirs, err := c.activeSpans(ctx, exec, a.ClassroomID, on)
		if err != nil {
			return err
		}
		for _, m := range mine {
			for _, o := range theirs {
				if m.span.Overlaps(o.span) {
					return reject(appErrors.ErrOverlapConflict, &models.AssignmentRejection{
						Message: fmt.Sprintf("tutor teaches classroom %s on %s, which overlaps %s in classroom %s",
							a.ClassroomID, o.span, m.span, p.ClassroomID),
						EntityIDs:       withID(withID(ids, "assignment_id", a.ID), "other_classroom_id", a.ClassroomID),
						Slot:            slotRef(p.ClassroomID, m.slotID, m.span),
						ConflictingSlot: slotRef(a.ClassroomID, o.slotID, o.span),
					})
				}
			}
		}
	}
	return nil
}

func (c *ConflictChecker) checkStudentAssign(ctx context.Context, exec sqlx.ExtContext, p Proposal) error {
	if _, err := c.profile(ctx, exec, p.ClassroomID); err != nil {
		return err
	}
	proposed, err := scheduling.NewInterval(p.Start, p.End)
	if err != nil {
		return validationError(err, "end_date must not be before start_date")
	}
	rows, err := c.students.ListForStudent(ctx, exec, p.StudentID)
	if err != nil {
		return internalError(err, "failed to load student assignments")
	}
	ids := map[string]string{"student_id": p.StudentID, "classroom_id": p.ClassroomID}

	for _, row := range rows {
		interval := scheduling.Interval{From: row.ValidFrom, To: row.ValidTo}
		if interval.Active() || interval.Covers(p.Start) {
			return reject(appErrors.ErrAlreadyAssigned, &models.AssignmentRejection{
				Message:   fmt.Sprintf("student is already assigned to classroom %s", row.ClassroomID),
				EntityIDs: withID(withID(ids, "assignment_id", row.ID), "current_classroom_id", row.ClassroomID),
			})
		}
	}
	return c.studentOverlaps(rows, proposed, p.ClassroomID, ids)
}

// checkStudentMove runs after the origin interval has been closed in the same unit of work.
func (c *ConflictChecker) checkStudentMove(ctx context.Context, exec sqlx.ExtContext, p Proposal) error {
	if _, err := c.profile(ctx, exec, p.ClassroomID); err != nil {
		return err
	}
	proposed, err := scheduling.NewInterval(p.Start, p.End)
	if err != nil {
		return validationError(err, "new_end_date must not be before new_start_date")
	}
	rows, err := c.students.ListForStudent(ctx, exec, p.StudentID)
	if err != nil {
		return internalError(err, "failed to load student assignments")
	}
	ids := map[string]string{"student_id": p.StudentID, "classroom_id": p.ClassroomID, "from_classroom_id": p.FromClassroomID}
	return c.studentOverlaps(rows, proposed, p.ClassroomID, ids)
}

// ResolveMoveOrigin verifies both classrooms share a grade group and returns the
// student's open interval in the origin classroom.
func (c *ConflictChecker) ResolveMoveOrigin(ctx context.Context, exec sqlx.ExtContext, studentID, fromID, toID string) (*models.StudentAssignment, error) {
	from, err := c.profile(ctx, exec, fromID)
	if err != nil {
		return nil, err
	}
	to, err := c.profile(ctx, exec, toID)
	if err != nil {
		return nil, err
	}
	ids := map[string]string{"student_id": studentID, "from_classroom_id": fromID, "to_classroom_id": toID}

	fromGroup, fromOK := scheduling.GroupOf(from.Grade)
	toGroup, toOK := scheduling.GroupOf(to.Grade)
	if !fromOK || !toOK || fromGroup != toGroup {
		return nil, reject(appErrors.ErrGradeGroupMismatch, &models.AssignmentRejection{
			Message:   fmt.Sprintf("cannot move a student from grade %d to grade %d", from.Grade, to.Grade),
			EntityIDs: ids,
		})
	}

	rows, err := c.students.ListForStudent(ctx, exec, studentID)
	if err != nil {
		return nil, internalError(err, "failed to load student assignments")
	}
	for i := range rows {
		if rows[i].ClassroomID == fromID && rows[i].ValidTo == nil {
			return &rows[i], nil
		}
	}
	return nil, reject(appErrors.ErrNotActive, &models.AssignmentRejection{
		Message:   fmt.Sprintf("student has no open assignment in classroom %s", fromID),
		EntityIDs: ids,
	})
}

func (c *ConflictChecker) studentOverlaps(rows []models.StudentAssignment, proposed scheduling.Interval, classroomID string, ids map[string]string) error {
	for _, row := range rows {
		if !(scheduling.Interval{From: row.ValidFrom, To: row.ValidTo}).Overlaps(proposed) {
			continue
		}
		if row.ClassroomID == classroomID {
			return reject(appErrors.ErrOverlapConflict, &models.AssignmentRejection{
				Message:   fmt.Sprintf("student already has an interval in classroom %s from %s", classroomID, row.ValidFrom.Format(scheduling.DateLayout)),
				EntityIDs: withID(ids, "assignment_id", row.ID),
			})
		}
		return reject(appErrors.ErrAlreadyAssigned, &models.AssignmentRejection{
			Message:   fmt.Sprintf("student is assigned to classroom %s during the requested dates", row.ClassroomID),
			EntityIDs: withID(withID(ids, "assignment_id", row.ID), "current_classroom_id", row.ClassroomID),
		})
	}
	return nil
}

type classroomSpan struct {
	slotID string
	span   scheduling.Span
}

func (c *ConflictChecker) activeSpans(ctx context.Context, exec sqlx.ExtContext, classroomID string, on time.Time) ([]classroomSpan, error) {
	rows, err := c.schedules.ListSince(ctx, exec, classroomID, on)
	if err != nil {
		return nil, internalError(err, "failed to load classroom schedule")
	}
	spans := make([]classroomSpan, 0, len(rows))
	for _, row := range rows {
		if !(scheduling.Interval{From: row.ValidFrom, To: row.ValidTo}).Covers(on) {
			continue
		}
		span, err := spanOf(row.SlotID, row.Weekday, row.StartTime, row.EndTime)
		if err != nil {
			return nil, err
		}
		spans = append(spans, classroomSpan{slotID: row.SlotID, span: span})
	}
	return spans, nil
}

func (c *ConflictChecker) profile(ctx context.Context, exec sqlx.ExtContext, classroomID string) (*models.ClassroomProfile, error) {
	return findClassroom(ctx, c.classrooms, exec, classroomID)
}

func findClassroom(ctx context.Context, reader classroomProfileReader, exec sqlx.ExtContext, classroomID string) (*models.ClassroomProfile, error) {
	profile, err := reader.FindProfile(ctx, exec, classroomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("classroom %s not found", classroomID))
		}
		return nil, internalError(err, "failed to load classroom")
	}
	return profile, nil
}

func (c *ConflictChecker) window(profile *models.ClassroomProfile) (scheduling.Window, error) {
	shift, err := scheduling.ParseShift(profile.Shift)
	if err != nil {
		return scheduling.Window{}, reject(appErrors.ErrPolicyViolation, &models.AssignmentRejection{
			Message:   err.Error(),
			Rule:      scheduling.RuleShift,
			EntityIDs: map[string]string{"classroom_id": profile.ID, "institution_id": profile.InstitutionID},
		})
	}
	return c.policy.AllowedWindow(profile.Grade, shift), nil
}

func policyRejection(err error, ids map[string]string, slot *models.SlotRef) error {
	rejection := &models.AssignmentRejection{Message: err.Error(), EntityIDs: ids, Slot: slot}
	if violation, ok := err.(*scheduling.PolicyViolation); ok {
		rejection.Rule = violation.Rule
	}
	return reject(appErrors.ErrPolicyViolation, rejection)
}

func withID(ids map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(ids)+1)
	for k, v := range ids {
		out[k] = v
	}
	out[key] = value
	return out
}
