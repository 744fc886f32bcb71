package main

import (
	"sync"
	"time"
)

// timerScheduler implements pipeline.ITaskScheduler on top of
// time.AfterFunc, playing the role a host audio engine's real-time
// thread scheduler or a UI event loop would play in production: an
// arbitrary external facility capable of invoking a callback near a
// requested deadline, on its own goroutine.
type timerScheduler struct {
	onFire func()

	mu    sync.Mutex
	timer *time.Timer
}

func newTimerScheduler(onFire func()) *timerScheduler {
	return &timerScheduler{onFire: onFire}
}

func (s *timerScheduler) ScheduleTaskProcessing(deadline time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	s.timer = time.AfterFunc(d, s.onFire)
	return nil
}

func (s *timerScheduler) CancelTaskProcessing() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return nil
}
