package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input, rejected before any state mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced requisition/budget/approver that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed marks a violated transition guard: wrong status,
	// wrong actor, or a value outside the approver's range. Never retried.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrConflict marks an optimistic-concurrency status mismatch. The caller
	// should re-fetch and retry once; the core does not retry.
	ErrConflict = errors.New("conflict")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func preconditionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPreconditionFailed, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
