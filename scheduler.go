package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// maxScheduleAsyncRate bounds how often scheduleAsync is allowed to
// actually call into the external scheduler. Contention between
// Schedule's slow path and ProcessTasks's rearm can otherwise produce
// back-to-back schedule/cancel churn under bursty load; the limiter
// drops the excess rather than queuing it, and the next Schedule or
// ProcessTasks call re-attempts the arm. This bound exists only to
// protect the external scheduler from being hammered, not to change
// the priority protocol itself.
const maxScheduleAsyncRate = rate.Limit(2000)

// ProcessingState tracks the lifecycle of the external async
// task-processing invocation.
type ProcessingState int32

const (
	// ProcessingNotScheduled means no async ProcessTasks invocation is pending.
	ProcessingNotScheduled ProcessingState = iota
	// ProcessingScheduled means an async invocation has been requested and
	// not yet delivered.
	ProcessingScheduled
	// ProcessingRunning means ProcessTasks is currently executing.
	ProcessingRunning
)

// ITaskScheduler is the external collaborator that supplies deferred
// execution. Implementations must not assume anything about which
// thread delivers the callback.
type ITaskScheduler interface {
	// ScheduleTaskProcessing asks the scheduler to invoke
	// Coordinator.ProcessTasks at approximately deadline.
	ScheduleTaskProcessing(deadline time.Time) error
	// CancelTaskProcessing asks the scheduler to revoke a previously
	// scheduled invocation. Best-effort: a cancelled invocation may still
	// be delivered.
	CancelTaskProcessing() error
}

// noopScheduler is installed when Config.Scheduler is nil: it accepts
// every call and does nothing, so async re-arming silently never
// delivers and tasks only drain via the Schedule fast path,
// ProcessFrameAndTasks's windows, or explicit ProcessTasks calls.
type noopScheduler struct{}

func (noopScheduler) ScheduleTaskProcessing(time.Time) error { return nil }
func (noopScheduler) CancelTaskProcessing() error            { return nil }

// schedulerBridge serializes calls into an ITaskScheduler. scheduleAsync
// enforces the priority rule that frames win: it bails out immediately,
// doing nothing, if a frame is pending. cancelAsync has no such guard;
// see its doc comment.
type schedulerBridge struct {
	mu    sync.Mutex
	sched ITaskScheduler
	log   Logger

	state         atomic.Int32 // ProcessingState
	pendingFrames *atomic.Int64
	limiter       *rate.Limiter

	// invocations/cancellations are owned by this mutex rather than the
	// pipeline mutex: both counters are produced by calls that by
	// construction can happen outside the pipeline mutex
	// (ProcessFrameAndTasks calls cancelAsync before it acquires the
	// pipeline mutex at all). Snapshot reads them under this same mutex;
	// see DESIGN.md.
	invocations   uint64
	cancellations uint64
}

func newSchedulerBridge(s ITaskScheduler, pendingFrames *atomic.Int64, log Logger) *schedulerBridge {
	return &schedulerBridge{
		sched:         s,
		pendingFrames: pendingFrames,
		log:           log,
		limiter:       rate.NewLimiter(maxScheduleAsyncRate, 1),
	}
}

func (b *schedulerBridge) processingState() ProcessingState {
	return ProcessingState(b.state.Load())
}

// scheduleAsync transitions NOT_SCHEDULED -> SCHEDULED and asks the
// external scheduler to invoke ProcessTasks at deadline. Idempotent if
// already SCHEDULED or RUNNING. Never blocks on the pipeline mutex; it
// only takes its own mutex, and retreats entirely if a frame is
// pending.
func (b *schedulerBridge) scheduleAsync(deadline time.Time) {
	if b.pendingFrames.Load() > 0 {
		return
	}
	if !b.mu.TryLock() {
		return
	}
	defer b.mu.Unlock()

	if b.pendingFrames.Load() > 0 {
		return
	}

	if ProcessingState(b.state.Load()) != ProcessingNotScheduled {
		return
	}

	if !b.limiter.Allow() {
		return
	}

	if err := b.sched.ScheduleTaskProcessing(deadline); err != nil {
		b.log.Warn("schedule task processing failed", "error", err)
		return
	}
	b.state.Store(int32(ProcessingScheduled))
	b.invocations++
}

// cancelAsync transitions SCHEDULED -> NOT_SCHEDULED; no-op otherwise.
// Unlike scheduleAsync, it carries no pendingFrames guard: its only
// caller is ProcessFrameAndTasks itself, which increments pendingFrames
// one line before calling in so a frame can revoke a stale async
// invocation before it starts work. Guarding on pendingFrames here would
// make cancelAsync unreachable from its own caller.
func (b *schedulerBridge) cancelAsync() {
	if !b.mu.TryLock() {
		return
	}
	defer b.mu.Unlock()

	if ProcessingState(b.state.Load()) != ProcessingScheduled {
		return
	}

	if err := b.sched.CancelTaskProcessing(); err != nil {
		b.log.Warn("cancel task processing failed", "error", err)
		return
	}
	b.state.Store(int32(ProcessingNotScheduled))
	b.cancellations++
}

// snapshotCounters returns the invocation/cancellation counts.
func (b *schedulerBridge) snapshotCounters() (invocations, cancellations uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.invocations, b.cancellations
}

// markRunning transitions the state to RUNNING; called by ProcessTasks
// on entry regardless of what scheduleAsync last set, tolerating a late
// or duplicate delivery.
func (b *schedulerBridge) markRunning() {
	b.state.Store(int32(ProcessingRunning))
}

// markIdle forces the state back to NOT_SCHEDULED without calling the
// scheduler, used after a drain that found no further work.
func (b *schedulerBridge) markIdle() {
	b.state.Store(int32(ProcessingNotScheduled))
}
