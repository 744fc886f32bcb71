package pipeline

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/soundforge/pipeline/internal/waiter"
)

// State is the monotonic lifecycle state of a Task.
type State int32

const (
	// StateNew is the state a Task is constructed in.
	StateNew State = iota
	// StateScheduled is set when a Task is pushed onto the pending queue.
	StateScheduled
	// StateFinished is set exactly once, after which success is stable
	// and the record is immutable.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateScheduled:
		return "SCHEDULED"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Handler is invoked by the coordinator after a Task finishes, from
// whichever goroutine happened to be processing the task (the
// submitter's own goroutine on the in-place fast path, the external
// scheduler's goroutine, or the audio clock's goroutine during a
// frame). It runs while the coordinator still holds the pipeline
// mutex, immediately after the waiter (if any) is posted — it must
// not call back into the Coordinator or block.
type Handler func(*Task)

// Task is an opaque submission unit owned by the caller. It is created
// in StateNew, transitions to StateScheduled when pushed onto the
// pending queue, and transitions to StateFinished exactly once, after
// which the coordinator touches it no more.
//
// A Task must not be submitted more than once concurrently, and must
// not be reused for a second submission until it has observed
// StateFinished from the first.
type Task struct {
	ID uuid.UUID

	state   atomic.Int32
	success atomic.Bool
	err     atomic.Pointer[error]

	waiter  *waiter.Waiter
	handler Handler

	// next links this task into the pending queue (component B). Only the
	// queue touches it.
	next atomic.Pointer[Task]
}

// NewTask constructs a Task in StateNew. Callers embed *Task (or Task) in
// their own record type to carry whatever payload Hooks.ProcessTask
// needs to actually perform the work — the coordinator never interprets
// task content beyond this record's lifecycle fields.
func NewTask() *Task {
	return NewTaskWithID(uuid.New())
}

// NewTaskWithID is NewTask with a caller-supplied, stable identifier —
// useful for deterministic tests and log correlation.
func NewTaskWithID(id uuid.UUID) *Task {
	t := &Task{ID: id}
	t.state.Store(int32(StateNew))
	return t
}

// State returns the task's current lifecycle state.
func (t *Task) State() State { return State(t.state.Load()) }

// Success reports whether the task completed successfully. It is only
// meaningful once State() == StateFinished; calling it earlier returns
// false.
func (t *Task) Success() bool { return t.success.Load() }

// Err returns the failure, if any, recorded when the task finished. Nil
// both before completion and on success.
func (t *Task) Err() error {
	if p := t.err.Load(); p != nil {
		return *p
	}
	return nil
}

// markScheduled transitions NEW -> SCHEDULED. Returns ErrAlreadyScheduled
// if the task is not currently NEW or FINISHED.
func (t *Task) markScheduled() error {
	for {
		cur := State(t.state.Load())
		if cur != StateNew && cur != StateFinished {
			return ErrAlreadyScheduled
		}
		if t.state.CompareAndSwap(int32(cur), int32(StateScheduled)) {
			// Clear the outcome of a previous submission.
			t.success.Store(false)
			t.err.Store(nil)
			return nil
		}
	}
}

// finish performs the three-step completion release: store
// success/err, store FINISHED, then notify waiter then handler. Called
// by the coordinator with the pipeline mutex held.
func (t *Task) finish(success bool, err error) {
	t.success.Store(success)
	if err != nil {
		t.err.Store(&err)
	}
	t.state.Store(int32(StateFinished))

	if t.waiter != nil {
		t.waiter.Post()
	}
	if t.handler != nil {
		t.handler(t)
	}
}
