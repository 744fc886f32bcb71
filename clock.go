package pipeline

import (
	"math/bits"
	"sync/atomic"
	"time"
)

// seqLock protects a single int64 value with a writer-wins sequence
// lock: writers bump version to odd, store, bump version to even;
// readers retry while the observed version is odd or changes across the
// read. On 64-bit platforms this is strictly more work than a plain
// atomic load, but it is kept uniform rather than special-cased per
// architecture.
type seqLock struct {
	version atomic.Uint64
	value   atomic.Int64
}

func (s *seqLock) write(v int64) {
	s.version.Add(1) // now odd
	s.value.Store(v)
	s.version.Add(1) // now even
}

func (s *seqLock) read() int64 {
	for {
		v1 := s.version.Load()
		if v1&1 != 0 {
			continue // writer in progress
		}
		val := s.value.Load()
		v2 := s.version.Load()
		if v1 == v2 {
			return val
		}
	}
}

// clockModel converts the time-based Config fields into sample-based
// constants and tracks the rolling next-frame deadline.
type clockModel struct {
	sampleRate  uint32
	channels    uint32
	sampleNanos float64 // nanoseconds per interleaved sample (one channel)

	minSamplesBetweenTasks uint64
	maxSamplesBetweenTasks uint64
	noTaskProcHalfInterval time.Duration
	expectedTaskCost       time.Duration

	nextFrameDeadline seqLock // nanosecond timestamp, sequence-locked
}

func newClockModel(cfg *Config) *clockModel {
	channels := uint32(bits.OnesCount32(cfg.ChannelMask))
	if channels == 0 {
		channels = 1
	}

	c := &clockModel{
		sampleRate:             cfg.SampleRate,
		channels:               channels,
		sampleNanos:            float64(time.Second) / (float64(cfg.SampleRate) * float64(channels)),
		minSamplesBetweenTasks: durationToSamples(cfg.MinFrameLengthBetweenTasks, cfg.SampleRate) * uint64(channels),
		maxSamplesBetweenTasks: durationToSamples(cfg.MaxFrameLengthBetweenTasks, cfg.SampleRate) * uint64(channels),
		noTaskProcHalfInterval: cfg.TaskProcessingProhibitedInterval / 2,
		expectedTaskCost:       cfg.ExpectedTaskCost,
	}
	return c
}

func durationToSamples(d time.Duration, sampleRate uint32) uint64 {
	if sampleRate == 0 {
		return 0
	}
	return uint64(d.Seconds() * float64(sampleRate))
}

// sampleDuration returns the wall-clock duration of n interleaved
// samples, counted across all channels.
func (c *clockModel) sampleDuration(n uint64) time.Duration {
	return time.Duration(float64(n) * c.sampleNanos)
}

// setNextFrameDeadline records the predicted start time of the next
// frame, in nanoseconds since an arbitrary monotonic epoch (whatever
// Hooks.NowNanos uses). Must be called only by the pipeline-mutex
// holder.
func (c *clockModel) setNextFrameDeadline(nanos int64) {
	c.nextFrameDeadline.write(nanos)
}

// readNextFrameDeadline is safe to call concurrently from any
// submitter thread without the pipeline mutex.
func (c *clockModel) readNextFrameDeadline() int64 {
	return c.nextFrameDeadline.read()
}

// insideNoTaskProcWindow reports whether t falls within the exclusion
// window around the predicted next frame start.
func (c *clockModel) insideNoTaskProcWindow(t int64) bool {
	d := c.readNextFrameDeadline()
	delta := t - d
	if delta < 0 {
		delta = -delta
	}
	return time.Duration(delta) <= c.noTaskProcHalfInterval
}

// interframeWindowAdmits reports whether, at time now, there is
// comfortable slack before the next predicted frame to run one more
// task.
func (c *clockModel) interframeWindowAdmits(now int64) bool {
	d := c.readNextFrameDeadline()
	deadlineMinusHalf := d - int64(c.noTaskProcHalfInterval)
	return now+int64(c.expectedTaskCost) < deadlineMinusHalf
}

// subframeWindowAdmits reports whether, at time now, a subframe task
// window remains open. enoughSamples corresponds to the in-frame
// enough-samples-accumulated flag.
func (c *clockModel) subframeWindowAdmits(now int64, enoughSamples bool) bool {
	if !enoughSamples {
		return false
	}
	return c.interframeWindowAdmits(now)
}

// nextInterframeMidpoint computes the absolute deadline to hand the
// external scheduler: the midpoint of the next inter-frame window.
func (c *clockModel) nextInterframeMidpoint(now int64) int64 {
	d := c.readNextFrameDeadline()
	windowEnd := d - int64(c.noTaskProcHalfInterval)
	if windowEnd <= now {
		return now
	}
	return now + (windowEnd-now)/2
}
