package repository

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest is returned when caller data is rejected.
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidCredentials is returned when a username/password pair does
	// not authenticate.
	ErrInvalidCredentials = errors.New("invalid username/password")
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("no %s: %v", e.label, e.id)
	}
	return fmt.Sprintf("no %s", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// NewNotFoundError returns a new NotFoundError with the ID that was searched for.
func NewNotFoundError(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// BadRequestError carries one or more validation messages.
type BadRequestError struct {
	Messages []string
}

// Error returns the error string.
func (e *BadRequestError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Is reports whether the target error is ErrBadRequest.
func (e *BadRequestError) Is(err error) bool {
	return err == ErrBadRequest
}

// NewBadRequestError returns a BadRequestError with the given messages.
func NewBadRequestError(messages ...string) *BadRequestError {
	return &BadRequestError{Messages: messages}
}
