package pipeline

import "time"

// Config holds Coordinator configuration. Sample rate and channel mask
// are required: the coordinator converts the time-based fields below
// into sample counts at construction time.
type Config struct {
	// SampleRate is the pipeline's sample rate in Hz. Required, must be > 0.
	SampleRate uint32

	// ChannelMask identifies which channels are active; its population
	// count gives the channel count used to convert samples to duration.
	// Required, must be non-zero.
	ChannelMask uint32

	// EnablePreciseTaskScheduling turns on sub-frame splitting and
	// inter/subframe task windows. When false, ProcessFrameAndTasks
	// processes the whole frame in one call and tasks only run before or
	// after it, competing for the mutex with no scheduled windows.
	// Default: true.
	EnablePreciseTaskScheduling bool

	// MinFrameLengthBetweenTasks is the minimum sub-frame chunk duration;
	// tasks are suppressed in a subframe window until the accumulated
	// in-frame sample count exceeds this, to amortize overhead.
	// Default: 1ms.
	MinFrameLengthBetweenTasks time.Duration

	// MaxFrameLengthBetweenTasks is the maximum sub-frame chunk duration;
	// frames longer than this are split to give tasks a chance to run.
	// Zero turns splitting, and with it in-frame task processing, off.
	// Default: 10ms.
	MaxFrameLengthBetweenTasks time.Duration

	// TaskProcessingProhibitedInterval is the full width of the
	// no-task-proc exclusion window centered on each predicted frame
	// start. Default: 1ms.
	TaskProcessingProhibitedInterval time.Duration

	// ExpectedTaskCost is the pessimistic, per-task cost constant used
	// for window admission checks. Default: 200µs.
	ExpectedTaskCost time.Duration

	// Logger receives structured diagnostic events. Defaults to a no-op
	// logger when nil.
	Logger Logger

	// Scheduler is the external collaborator that supplies deferred
	// execution. When nil, a no-op scheduler is installed:
	// async re-arming becomes a no-op, and tasks only drain via the
	// Schedule fast path, ProcessFrameAndTasks's subframe windows, or
	// explicit caller-driven ProcessTasks calls.
	Scheduler ITaskScheduler
}
