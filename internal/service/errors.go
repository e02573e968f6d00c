package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Match with errors.Is.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrInternal           = errors.New("internal error")
)

// Error carries a kind and the reason shown to the caller.
type Error struct {
	Kind   error
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func notFound(what string) *Error {
	return newError(ErrNotFound, what+" not found")
}

func conflict(reason string) *Error {
	return newError(ErrConflict, reason)
}

func invalid(format string, args ...interface{}) *Error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

func internal(reason string, err error) *Error {
	return &Error{Kind: ErrInternal, Reason: reason, Err: err}
}

// Reason returns the caller-facing message for err.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return err.Error()
}

// duplicate maps a unique-constraint violation raced past the explicit checks onto a Conflict.
func duplicate(err error, reason string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict(reason)
	}
	return err
}

// lookup translates a missing row into a NotFound for what and passes other errors through.
func lookup(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return err
}
