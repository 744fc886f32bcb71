// Package pipeline implements the scheduling core of a real-time audio
// pipeline: it arbitrates, on a single serialized resource, between
// clock-driven frame processing and asynchronous control-plane tasks
// submitted from arbitrary goroutines.
//
// The package owns no worker goroutine. Frame processing is driven by
// calling ProcessFrameAndTasks from an audio clock; task processing is
// driven either by a submitter's own goroutine (the in-place fast path
// of Schedule), or by an external scheduler invoking ProcessTasks at a
// time this package requests via the ITaskScheduler callback.
//
// Constructors
//   - New(hooks, *Config): accepts a Config directly.
//   - NewOptions(hooks, opts ...Option): functional-options constructor.
//
// Defaults
// Unless overridden, the following defaults apply to a newly constructed
// Coordinator:
//   - EnablePreciseTaskScheduling: true
//   - MinFrameLengthBetweenTasks: 1ms worth of samples
//   - MaxFrameLengthBetweenTasks: 10ms worth of samples
//   - TaskProcessingProhibitedInterval: 1ms
//   - ExpectedTaskCost: 200µs
//
// Concurrency
// Schedule and ProcessTasks never block on the pipeline mutex; they use
// TryLock and retreat in favor of ProcessFrameAndTasks. NumPendingTasks
// and NumPendingFrames are plain atomic reads and never block on
// anything. ScheduleAndWait blocks on a private waiter until the
// submitted task finishes. ProcessFrameAndTasks is the only entry point
// that blocks on the pipeline mutex, and is never starved: every other
// entry point yields as soon as it observes a frame is pending.
package pipeline
