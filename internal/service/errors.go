package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of them; anything else is an internal failure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// DomainError is a user-facing failure of a known kind.
type DomainError struct {
	kind    error
	message string
}

func (e *DomainError) Error() string {
	return e.message
}

// Unwrap exposes the error kind to errors.Is.
func (e *DomainError) Unwrap() error {
	return e.kind
}

func newDomainError(kind error, message string) *DomainError {
	return &DomainError{kind: kind, message: message}
}

// ValidationFailure builds an ad-hoc validation error.
func ValidationFailure(format string, args ...interface{}) error {
	return newDomainError(ErrValidation, fmt.Sprintf(format, args...))
}

var (
	ErrInterviewNotFound  = newDomainError(ErrNotFound, "interview not found")
	ErrQuestionNotFound   = newDomainError(ErrNotFound, "question not found")
	ErrUserNotFound       = newDomainError(ErrNotFound, "user not found")
	ErrResumeNotFound     = newDomainError(ErrNotFound, "resume not found")
	ErrInterviewNotOwned  = newDomainError(ErrForbidden, "you do not have access to this interview")
	ErrResumeNotOwned     = newDomainError(ErrForbidden, "you do not have access to this resume")
	ErrNoEvaluatedAnswers = newDomainError(ErrValidation, "cannot complete an unanswered session")
	ErrInterviewCompleted = newDomainError(ErrValidation, "interview already completed")
	ErrEmailTaken         = newDomainError(ErrValidation, "user already exists")
	ErrInvalidCredentials = newDomainError(ErrUnauthorized, "invalid email or password")
	ErrFileRequired       = newDomainError(ErrValidation, "resume file is required")
	ErrUploadTooLarge     = newDomainError(ErrValidation, "file exceeds maximum allowed size")
	ErrUploadNotPDF       = newDomainError(ErrValidation, "only PDF resumes are accepted")
)

// Internal failures with a message that is safe to show to clients.
var (
	ErrEvaluatorUnavailable = errors.New("ai evaluator unavailable")
	ErrGeneratorUnavailable = errors.New("ai question generator unavailable")
)
