package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("registro no encontrado")
	// ErrConflict marks an operation refused because of the record's current state.
	ErrConflict = errors.New("conflicto con el estado actual")
)

// NotFoundError carries the user facing message for a missing record.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError is a rejected input. Message is shown to the user as is.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError is an operation refused because of the record's state.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) Unwrap() error        { return e.Err }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func notFound(msg string) error {
	return &NotFoundError{Message: msg}
}

func invalid(err error) error {
	return &ValidationError{Message: err.Error(), Err: err}
}

func invalidf(msg string) error {
	return &ValidationError{Message: msg}
}

func conflict(msg string, err error) error {
	return &ConflictError{Message: msg, Err: err}
}

// lookup turns gorm's missing record error into a NotFoundError.
func lookup(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(msg)
	}
	return err
}
