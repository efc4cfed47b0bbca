package service

import "errors"

// Error categories checked by handlers with errors.Is to pick the HTTP
// status. The user-facing message travels in DomainError.Message so raw
// datastore errors never leak to clients.
var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrExternal   = errors.New("external service")
)

// DomainError pairs an error category with a human-readable message.
type DomainError struct {
	kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Is(target error) bool { return target == e.kind }

func validationError(msg string) error { return &DomainError{kind: ErrValidation, Message: msg} }

func notFoundError(msg string) error { return &DomainError{kind: ErrNotFound, Message: msg} }

func conflictError(msg string) error { return &DomainError{kind: ErrConflict, Message: msg} }

func externalError(msg string) error { return &DomainError{kind: ErrExternal, Message: msg} }
