package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so that cloned sentinels still compare equal.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WithDetails attaches a payload rendered under error.details.
func WithDetails(err *Error, details interface{}) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = details
	return &clone
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss  = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Assignment engine rejections.
var (
	ErrMalformedTime      = New("MALFORMED_TIME", http.StatusBadRequest, "malformed time")
	ErrPolicyViolation    = New("POLICY_VIOLATION", http.StatusUnprocessableEntity, "slot violates placement policy")
	ErrDuplicateSlot      = New("DUPLICATE_SLOT", http.StatusConflict, "slot already assigned")
	ErrOverlapConflict    = New("OVERLAP_CONFLICT", http.StatusConflict, "schedule overlap")
	ErrCapacityExceeded   = New("CAPACITY_EXCEEDED", http.StatusUnprocessableEntity, "weekly capacity exceeded")
	ErrAlreadyOccupied    = New("ALREADY_OCCUPIED", http.StatusConflict, "classroom already has a tutor")
	ErrAlreadyAssigned    = New("ALREADY_ASSIGNED", http.StatusConflict, "already assigned")
	ErrGradeGroupMismatch = New("GRADE_GROUP_MISMATCH", http.StatusUnprocessableEntity, "grade groups do not match")
	ErrNotActive          = New("NOT_ACTIVE", http.StatusConflict, "interval is not active")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
