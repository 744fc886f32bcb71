package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soundforge/pipeline/internal/waiter"
)

// statKind identifies which per-path counter a processed task should be
// attributed to.
type statKind int

const (
	statInPlace statKind = iota
	statInFrame
	statInterframe
)

// Coordinator is the scheduling core of the pipeline. It owns the
// pipeline mutex, the pending-task queue, the atomics
// tracking pending tasks/frames, and implements the priority,
// precise-scheduling, and in-place fast-path policies.
//
// A Coordinator must be constructed with New or NewOptions; the zero
// value is not usable.
type Coordinator struct {
	hooks  Hooks
	cfg    Config
	clock  *clockModel
	queue  *taskQueue
	log    Logger
	bridge *schedulerBridge

	pipelineMu sync.Mutex

	pendingTasks  atomic.Int64
	pendingFrames atomic.Int64

	// Fields below are private to the pipelineMu holder.
	samplesProcessed            uint64
	enoughSamplesToProcessTasks bool
	st                          stats

	closed atomic.Bool
}

// New constructs a Coordinator from an explicit Config. cfg.SampleRate
// and cfg.ChannelMask are required.
func New(hooks Hooks, cfg *Config) (*Coordinator, error) {
	if hooks == nil {
		return nil, ErrInvalidConfig
	}
	if cfg == nil {
		d := defaultConfig()
		cfg = &d
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = noopLogger
	}

	sched := cfg.Scheduler
	if sched == nil {
		sched = noopScheduler{}
	}

	c := &Coordinator{
		hooks: hooks,
		cfg:   *cfg,
		clock: newClockModel(cfg),
		queue: newTaskQueue(),
		log:   log,
	}
	c.bridge = newSchedulerBridge(sched, &c.pendingFrames, log)
	return c, nil
}

// NumPendingTasks returns the number of tasks submitted but not yet
// FINISHED. Never blocks.
func (c *Coordinator) NumPendingTasks() int64 { return c.pendingTasks.Load() }

// NumPendingFrames returns the number of concurrent ProcessFrameAndTasks
// calls currently wanting or holding the pipeline mutex. Never blocks.
func (c *Coordinator) NumPendingFrames() int64 { return c.pendingFrames.Load() }

// Stats returns a snapshot of the coordinator's counters. Not safe to
// call concurrently with other Coordinator operations; intended for
// tests and benchmarks.
func (c *Coordinator) Stats() Snapshot {
	inv, canc := c.bridge.snapshotCounters()
	return c.st.snapshot(inv, canc)
}

// Schedule submits task for processing and returns immediately. It
// returns ErrClosed after Close and ErrAlreadyScheduled for a task that
// is still pending; a failure of the task itself is surfaced through the
// task's own completion. handler, if non-nil, is invoked after the task
// finishes.
func (c *Coordinator) Schedule(task *Task, handler Handler) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := task.markScheduled(); err != nil {
		return err
	}
	task.handler = handler
	task.waiter = nil

	c.queue.push(task)
	c.pendingTasks.Add(1)

	c.tryInPlaceFastPath()

	if c.pendingTasks.Load() > 0 {
		now := c.hooks.NowNanos()
		c.bridge.scheduleAsync(nanosToTime(c.clock.nextInterframeMidpoint(now)))
	}
	return nil
}

// ScheduleAndWait is Schedule, but blocks until task finishes and
// returns its success. ctx may cancel the wait; it never cancels the
// task itself, which stays queued and is processed as usual.
func (c *Coordinator) ScheduleAndWait(ctx context.Context, task *Task) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	if err := task.markScheduled(); err != nil {
		return false, err
	}
	w := waiter.New()
	task.waiter = w
	task.handler = nil

	c.queue.push(task)
	c.pendingTasks.Add(1)

	c.tryInPlaceFastPath()

	if c.pendingTasks.Load() > 0 {
		now := c.hooks.NowNanos()
		c.bridge.scheduleAsync(nanosToTime(c.clock.nextInterframeMidpoint(now)))
	}

	if err := w.Wait(ctx); err != nil {
		return false, err
	}
	return task.Success(), nil
}

// tryInPlaceFastPath is a wait-free attempt to process queued tasks
// synchronously on the caller's own goroutine when the pipeline is idle
// and a task window is open. It is shared by Schedule and ScheduleAndWait.
func (c *Coordinator) tryInPlaceFastPath() {
	if !c.pipelineMu.TryLock() {
		return
	}
	defer c.pipelineMu.Unlock()

	now := c.hooks.NowNanos()
	if c.pendingFrames.Load() != 0 || !c.clock.interframeWindowAdmits(now) {
		return
	}

	for c.pendingFrames.Load() == 0 && c.pendingTasks.Load() > 0 {
		now = c.hooks.NowNanos()
		if !c.clock.interframeWindowAdmits(now) {
			return
		}
		c.processOneLocked(statInPlace)
	}
}

// ProcessTasks is invoked by the external scheduler. Non-blocking: it
// never waits for the pipeline mutex.
func (c *Coordinator) ProcessTasks() {
	c.bridge.markRunning()

	// Every exit below leaves RUNNING first: scheduleAsync only arms from
	// NOT_SCHEDULED, so a re-arm attempted while still RUNNING is dropped.
	if !c.pipelineMu.TryLock() {
		c.bridge.markIdle()
		c.rearmIfNeeded()
		return
	}

	for c.pendingTasks.Load() > 0 {
		if c.pendingFrames.Load() > 0 {
			c.st.preemptions++
			c.bridge.markIdle()
			c.pipelineMu.Unlock()
			return
		}
		now := c.hooks.NowNanos()
		if !c.clock.interframeWindowAdmits(now) {
			break
		}
		c.processOneLocked(statInterframe)
	}

	c.pipelineMu.Unlock()
	c.bridge.markIdle()
	c.rearmIfNeeded()
}

// rearmIfNeeded re-arms the external scheduler if work remains and no
// frame is pending, otherwise marks the processing state idle.
func (c *Coordinator) rearmIfNeeded() {
	if c.pendingTasks.Load() > 0 && c.pendingFrames.Load() == 0 {
		now := c.hooks.NowNanos()
		c.bridge.scheduleAsync(nanosToTime(c.clock.nextInterframeMidpoint(now)))
		return
	}
	c.bridge.markIdle()
}

// ProcessFrameAndTasks is invoked by the audio clock driver. It is the
// only entry point that blocks on the pipeline mutex, and is never
// starved: every other operation yields as soon as it observes
// pendingFrames > 0.
func (c *Coordinator) ProcessFrameAndTasks(frame Frame) bool {
	c.pendingFrames.Add(1)
	c.bridge.cancelAsync()

	c.pipelineMu.Lock()

	now := c.hooks.NowNanos()
	n := uint64(len(frame.Samples))
	c.clock.setNextFrameDeadline(now + int64(c.clock.sampleDuration(n)))

	c.samplesProcessed = 0
	c.enoughSamplesToProcessTasks = false

	var success bool
	if !c.cfg.EnablePreciseTaskScheduling || c.clock.maxSamplesBetweenTasks == 0 {
		success = c.hooks.ProcessFrame(frame)
	} else {
		success = c.processFrameSplitLocked(frame)
	}

	c.pendingFrames.Add(-1)
	c.pipelineMu.Unlock()

	c.rearmIfNeeded()
	return success
}

// processFrameSplitLocked splits the frame into sub-frames of at most
// maxSamplesBetweenTasks samples, processing admitted tasks between
// them. Called with pipelineMu held.
func (c *Coordinator) processFrameSplitLocked(frame Frame) bool {
	max := int(c.clock.maxSamplesBetweenTasks)
	success := true
	offset := 0

	for offset < len(frame.Samples) {
		end := offset + max
		if end > len(frame.Samples) {
			end = len(frame.Samples)
		}

		sub := Frame{Samples: frame.Samples[offset:end], SampleOffset: frame.SampleOffset + offset}
		if !c.hooks.ProcessFrame(sub) {
			success = false
		}

		n := uint64(end - offset)
		c.samplesProcessed += n
		if !c.enoughSamplesToProcessTasks && c.samplesProcessed > c.clock.minSamplesBetweenTasks {
			c.enoughSamplesToProcessTasks = true
		}
		offset = end

		for c.pendingTasks.Load() > 0 && c.pendingFrames.Load() <= 1 {
			now := c.hooks.NowNanos()
			if !c.clock.subframeWindowAdmits(now, c.enoughSamplesToProcessTasks) {
				break
			}
			c.processOneLocked(statInFrame)
		}
	}

	return success
}

// processOneLocked pops and executes exactly one task, attributing it
// to kind, and performs the three-step completion protocol. Called
// with pipelineMu held; returns false if the queue was (transiently)
// empty.
func (c *Coordinator) processOneLocked(kind statKind) bool {
	t := c.queue.tryPop()
	if t == nil {
		return false
	}
	c.pendingTasks.Add(-1)

	ok := c.runHookSafely(t)
	var err error
	if !ok {
		err = newTaskError(t.ID, ErrExecutionFailed)
	}
	t.finish(ok, err)

	c.st.tasksProcessedTotal++
	switch kind {
	case statInPlace:
		c.st.tasksProcessedInPlace++
	case statInFrame:
		c.st.tasksProcessedInFrame++
	case statInterframe:
		c.st.tasksProcessedInterframe++
	}
	return true
}

// runHookSafely invokes Hooks.ProcessTask, converting a panic into a
// failure so a misbehaving hook can never take down the coordinator's
// goroutine.
func (c *Coordinator) runHookSafely(t *Task) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("process task panicked", "task", t.ID, "panic", r)
			ok = false
		}
	}()
	return c.hooks.ProcessTask(t)
}

// Close refuses further Schedule/ScheduleAndWait submissions and waits
// for every already-pending task to finish draining, up to ctx's
// deadline. It does not wait for any in-flight ProcessFrameAndTasks
// call beyond the tasks it itself drains. Safe to call more than once;
// every call runs the same polling loop, bounded by its own ctx.
//
// Close stops accepting new work and polls pendingTasks down to zero,
// calling ProcessTasks itself about once a millisecond and also relying
// on concurrent ProcessTasks/ProcessFrameAndTasks callers to perform the
// draining; there is no owned goroutine to cancel.
func (c *Coordinator) Close(ctx context.Context) error {
	c.closed.Store(true)

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		if c.pendingTasks.Load() == 0 {
			return nil
		}
		c.ProcessTasks()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func nanosToTime(n int64) time.Time {
	return time.Unix(0, n)
}
