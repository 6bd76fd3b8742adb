// Package shared contains common domain types, errors, and event descriptors
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrConflict        = errors.New("conflict")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "lesson", "room", "billing"
	Op      string // Operation that failed, e.g., "Join", "Open"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Profile domain errors
var (
	ErrProfileNotFound  = NewDomainError("profile", "Find", ErrNotFound, "profile not found")
	ErrUsernameTaken    = NewDomainError("profile", "Create", ErrAlreadyExists, "username already taken")
	ErrEmailTaken       = NewDomainError("profile", "Create", ErrAlreadyExists, "email already registered")
	ErrInvalidCredentials = NewDomainError("profile", "Authenticate", ErrUnauthorized, "invalid credentials")
	ErrTokenNotFound    = NewDomainError("profile", "FindToken", ErrUnauthorized, "auth token not recognized")
	ErrNotATeacher      = NewDomainError("profile", "CheckTeacher", ErrForbidden, "profile cannot teach")
	ErrInsufficientTokens = NewDomainError("profile", "Debit", ErrValueOutOfRange, "not enough tokens on the account")
)

// Lesson domain errors
var (
	ErrLessonNotFound  = NewDomainError("lesson", "Find", ErrNotFound, "lesson not found")
	ErrSlugTaken       = NewDomainError("lesson", "Create", ErrAlreadyExists, "lesson slug already taken")
	ErrSubjectNotFound = NewDomainError("lesson", "FindSubject", ErrNotFound, "subject not found")
	ErrStageNotFound   = NewDomainError("lesson", "FindStage", ErrNotFound, "stage not found")
	ErrNotLessonOwner  = NewDomainError("lesson", "CheckOwner", ErrForbidden, "profile does not own this lesson")
)

// Membership domain errors
var (
	ErrAlreadyMember      = NewDomainError("membership", "Join", ErrConflict, "student already subscribed to this lesson")
	ErrMembershipNotFound = NewDomainError("membership", "Find", ErrNotFound, "membership not found")
	ErrOwnLessonJoin      = NewDomainError("membership", "Join", ErrInvalidInput, "teacher cannot subscribe to own lesson")
)

// Room domain errors
var (
	ErrRoomNotFound   = NewDomainError("room", "Find", ErrNotFound, "open room not found")
	ErrRoomKeyTaken   = NewDomainError("room", "Create", ErrAlreadyExists, "room key already in use")
	ErrRoomOpen       = NewDomainError("room", "Open", ErrConflict, "room already open for this lesson and student")
	ErrNotRoomTeacher = NewDomainError("room", "Open", ErrUnauthorized, "only the lesson's teacher may open its rooms")
	ErrNotRoomMember  = NewDomainError("room", "View", ErrUnauthorized, "room belongs to other participants")
)

// Notification domain errors
var (
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
	ErrInvalidNotification  = NewDomainError("notification", "Validate", ErrInvalidInput, "invalid notification")
)

// Billing domain errors
var (
	ErrBillNotFound    = NewDomainError("billing", "Find", ErrNotFound, "bill not found")
	ErrBillAlreadyPaid = NewDomainError("billing", "Pay", ErrInvalidState, "bill already paid")
	ErrNotBillIssuer   = NewDomainError("billing", "CheckIssuer", ErrForbidden, "bill belongs to another teacher")
	ErrNotBillPayer    = NewDomainError("billing", "CheckPayer", ErrForbidden, "bill addressed to another student")
)

// Comment domain errors
var (
	ErrCommentNotFound = NewDomainError("comment", "Find", ErrNotFound, "comment not found")
	ErrInvalidRate     = NewDomainError("comment", "Validate", ErrValueOutOfRange, "rate must be between 1 and 5")
)

// Message domain errors
var (
	ErrMessageNotFound = NewDomainError("message", "Find", ErrNotFound, "message not found")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConflict checks if the error is a concurrent-state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}
