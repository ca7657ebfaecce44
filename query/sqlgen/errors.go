package sqlgen

import "errors"

var (
	// ErrInvalidInput is returned when the caller supplies fields or criteria
	// that cannot be compiled.
	ErrInvalidInput = errors.New("invalid input")
)
