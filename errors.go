package pipeline

import (
	"errors"

	"github.com/google/uuid"
)

// Namespace prefixes every sentinel error message in this package.
const Namespace = "pipeline"

var (
	// ErrAlreadyScheduled is returned by Schedule/ScheduleAndWait when the
	// task's state is neither NEW nor FINISHED at submission time.
	ErrAlreadyScheduled = errors.New(Namespace + ": task already scheduled")

	// ErrExecutionFailed wraps a failure reported by the Hooks.ProcessTask
	// callback. It is never returned directly from an entry point; it is
	// attached to the task via TaskError and observed through Task.Err.
	ErrExecutionFailed = errors.New(Namespace + ": task execution failed")

	// ErrClosed is returned by Schedule and ScheduleAndWait once Close has
	// been called on the Coordinator.
	ErrClosed = errors.New(Namespace + ": coordinator closed")

	// ErrInvalidConfig is returned by New/NewOptions when construction-time
	// validation fails.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)

// TaskError wraps an underlying failure with the task identity that
// produced it, so a caller can correlate a failure with its origin via
// errors.As without threading the *Task through application error types.
type TaskError struct {
	TaskID uuid.UUID
	err    error
}

func newTaskError(id uuid.UUID, err error) *TaskError {
	if err == nil {
		return nil
	}
	return &TaskError{TaskID: id, err: err}
}

func (e *TaskError) Error() string { return e.err.Error() }

func (e *TaskError) Unwrap() error { return e.err }
