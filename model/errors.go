package model

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by StateError.
var (
	// ErrNotFound is the cause when an unknown process, input or output id
	// is dereferenced.
	ErrNotFound = errors.New("not found")

	// ErrResultAlreadySet is the cause when a job result is attached twice.
	ErrResultAlreadySet = errors.New("result already set")

	// ErrInvalidTransition is the cause when a status update would move a
	// job out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrJobMismatch is the cause when a status or result for a different
	// job is fed into a job.
	ErrJobMismatch = errors.New("job id mismatch")
)

// StateError reports misuse of a stateful object: a job result set twice,
// or an unknown id dereferenced. It is a programming error, not a transient
// failure, and is never retried.
type StateError struct {
	// Op is the operation that failed (e.g. "SetResult", "Input").
	Op string

	// ID is the job, process, input or output identifier involved.
	ID string

	// Err is the underlying cause, one of the sentinels above.
	Err error
}

// Error implements the error interface.
func (e *StateError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("wps: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("wps: %s %q: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StateError) Unwrap() error {
	return e.Err
}

// IsStateError returns true if err is or wraps a *StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
