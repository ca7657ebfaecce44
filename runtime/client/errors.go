package client

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrConstraint is matched by every *ConstraintError.
var ErrConstraint = errors.New("constraint violation")

// ConstraintError reports a violated store constraint (unique key, foreign
// key, not-null or check).
type ConstraintError struct {
	Code       string // SQLSTATE
	Constraint string
	Detail     string
	wrap       error
}

// Error returns the error string.
func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint violation: %s (%s)", e.Constraint, e.Detail)
	}
	return "constraint violation: " + e.Detail
}

// Unwrap returns the driver error.
func (e *ConstraintError) Unwrap() error { return e.wrap }

// Is reports whether the target error is ErrConstraint.
func (e *ConstraintError) Is(err error) bool { return err == ErrConstraint }

// IsUnique returns true if a unique constraint was violated.
func (e *ConstraintError) IsUnique() bool { return e.Code == "23505" }

// IsForeignKey returns true if a foreign key constraint was violated.
func (e *ConstraintError) IsForeignKey() bool { return e.Code == "23503" }

// IsConstraintError returns true if err is a constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e)
}

// constraintCodes are the integrity_constraint_violation SQLSTATEs that are
// caused by caller data rather than by the server.
var constraintCodes = map[pq.ErrorCode]bool{
	"23502": true, // not_null_violation
	"23503": true, // foreign_key_violation
	"23505": true, // unique_violation
	"23514": true, // check_violation
}

// translateError converts constraint violations reported by the driver into
// *ConstraintError. Other errors are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && constraintCodes[pqErr.Code] {
		detail := pqErr.Detail
		if detail == "" {
			detail = pqErr.Message
		}
		return &ConstraintError{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Detail:     detail,
			wrap:       err,
		}
	}
	return err
}
