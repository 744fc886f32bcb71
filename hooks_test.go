package pipeline

import (
	"sync"
	"sync/atomic"
	"time"
)

// fakeHooks is a deterministic Hooks implementation shared across this
// package's tests: NowNanos is driven manually instead of reading the
// real clock, so window-admission edge cases are reproducible; frame and
// task processing record their calls for assertions.
type fakeHooks struct {
	now atomic.Int64

	mu           sync.Mutex
	frameCalls   []Frame
	taskCalls    []*Task
	processFrame func(Frame) bool
	processTask  func(*Task) bool
}

func newFakeHooks() *fakeHooks {
	h := &fakeHooks{}
	h.processFrame = func(Frame) bool { return true }
	h.processTask = func(*Task) bool { return true }
	return h
}

func (h *fakeHooks) NowNanos() int64 { return h.now.Load() }

func (h *fakeHooks) advance(d time.Duration) { h.now.Add(int64(d)) }

func (h *fakeHooks) ProcessFrame(f Frame) bool {
	h.mu.Lock()
	h.frameCalls = append(h.frameCalls, f)
	h.mu.Unlock()
	return h.processFrame(f)
}

func (h *fakeHooks) ProcessTask(t *Task) bool {
	h.mu.Lock()
	h.taskCalls = append(h.taskCalls, t)
	h.mu.Unlock()
	return h.processTask(t)
}

func (h *fakeHooks) frameCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frameCalls)
}

func (h *fakeHooks) taskCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.taskCalls)
}
