package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain error kinds.
var (
	ErrDuplicate          = errors.New("duplicate")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("inactive account")
	ErrAccessDenied       = errors.New("access denied")
	ErrAlreadyComplete    = errors.New("already complete")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrConflict           = errors.New("conflict")
)

// DomainError carries one of the sentinel kinds plus a caller-facing message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDuplicateError reports a unique-constraint violation on field.
func NewDuplicateError(entity, field string) *DomainError {
	return &DomainError{Err: ErrDuplicate, Message: fmt.Sprintf("%s with this %s already exists", entity, field)}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Err: ErrNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func NewInvalidCredentialsError() *DomainError {
	return &DomainError{Err: ErrInvalidCredentials, Message: "invalid email or password"}
}

func NewInactiveError() *DomainError {
	return &DomainError{Err: ErrInactive, Message: "account is inactive"}
}

// NewAccessDeniedError reports a failed role check for the named operation.
func NewAccessDeniedError(operation string) *DomainError {
	return &DomainError{Err: ErrAccessDenied, Message: fmt.Sprintf("access denied: %s", operation)}
}

func NewAlreadyCompleteError(message string) *DomainError {
	return &DomainError{Err: ErrAlreadyComplete, Message: message}
}

func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewInvalidStateError reports a status transition that is not allowed.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Err: ErrInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// IsDomainError reports whether err carries a DomainError anywhere in its chain.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
