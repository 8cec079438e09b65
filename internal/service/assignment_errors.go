package service

import (
	"errors"
	"time"

	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/internal/scheduling"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

// reject builds a typed rejection whose details carry the structured reason.
func reject(base *appErrors.Error, rejection *models.AssignmentRejection) error {
	rejection.Kind = base.Code
	err := appErrors.Wrap(rejection, base.Code, base.Status, rejection.Message)
	err.Details = rejection
	return err
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// asAppError passes typed errors through and wraps anything else as internal.
func asAppError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return internalError(err, message)
}

// spanOf parses stored slot values, reporting bad times as MALFORMED_TIME.
func spanOf(slotID, weekday, start, end string) (scheduling.Span, error) {
	span, err := scheduling.NewSpan(weekday, start, end)
	if err == nil {
		return span, nil
	}
	var malformed *scheduling.MalformedTimeError
	if errors.As(err, &malformed) {
		return scheduling.Span{}, reject(appErrors.ErrMalformedTime, &models.AssignmentRejection{
			Message:   malformed.Error(),
			EntityIDs: map[string]string{"slot_id": slotID},
		})
	}
	return scheduling.Span{}, reject(appErrors.ErrPolicyViolation, &models.AssignmentRejection{
		Message:   err.Error(),
		Rule:      scheduling.RuleWeekday,
		EntityIDs: map[string]string{"slot_id": slotID},
	})
}

func slotRef(classroomID, slotID string, span scheduling.Span) *models.SlotRef {
	return &models.SlotRef{
		ClassroomID: classroomID,
		SlotID:      slotID,
		Weekday:     string(span.Weekday),
		StartTime:   scheduling.FormatMinutes(span.Start),
		EndTime:     scheduling.FormatMinutes(span.End),
	}
}

func parseRequiredDate(value, field string) (time.Time, error) {
	d, err := scheduling.ParseDate(value)
	if err != nil {
		return time.Time{}, validationError(err, "invalid "+field)
	}
	return d, nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	d, err := scheduling.ParseOptionalDate(value)
	if err != nil {
		return nil, validationError(err, "invalid "+field)
	}
	return d, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func classroomKey(id string) string { return "classroom:" + id }
func tutorKey(id string) string     { return "tutor:" + id }
func studentKey(id string) string   { return "student:" + id }
