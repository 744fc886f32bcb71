package pipeline

import "time"

// Option configures a Coordinator. Use NewOptions(hooks, opts...) to
// construct a Coordinator via options.
type Option func(*Config)

// WithSampleRate sets the pipeline's sample rate in Hz. Required.
func WithSampleRate(hz uint32) Option {
	return func(c *Config) { c.SampleRate = hz }
}

// WithChannelMask sets the active-channel bitmask. Required.
func WithChannelMask(mask uint32) Option {
	return func(c *Config) { c.ChannelMask = mask }
}

// WithPreciseTaskScheduling toggles sub-frame splitting and inter/subframe
// task windows. Default: true.
func WithPreciseTaskScheduling(enabled bool) Option {
	return func(c *Config) { c.EnablePreciseTaskScheduling = enabled }
}

// WithFrameLengthBetweenTasks sets the min/max sub-frame chunk durations.
func WithFrameLengthBetweenTasks(min, max time.Duration) Option {
	return func(c *Config) {
		c.MinFrameLengthBetweenTasks = min
		c.MaxFrameLengthBetweenTasks = max
	}
}

// WithTaskProcessingProhibitedInterval sets the full width of the
// no-task-proc exclusion window around each predicted frame start.
func WithTaskProcessingProhibitedInterval(d time.Duration) Option {
	return func(c *Config) { c.TaskProcessingProhibitedInterval = d }
}

// WithExpectedTaskCost sets the pessimistic per-task cost constant used
// for window admission checks.
func WithExpectedTaskCost(d time.Duration) Option {
	return func(c *Config) { c.ExpectedTaskCost = d }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithScheduler sets the external scheduler collaborator.
func WithScheduler(s ITaskScheduler) Option {
	return func(c *Config) { c.Scheduler = s }
}

// NewOptions constructs a Coordinator using functional options over the
// default Config.
func NewOptions(hooks Hooks, opts ...Option) (*Coordinator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("nil pipeline option")
		}
		opt(&cfg)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return New(hooks, &cfg)
}
