package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestCoordinator(t *testing.T, hooks Hooks, sched ITaskScheduler) *Coordinator {
	t.Helper()
	c, err := New(hooks, &Config{
		SampleRate:                       1000,
		ChannelMask:                      0b1,
		EnablePreciseTaskScheduling:      true,
		MinFrameLengthBetweenTasks:       time.Millisecond,
		MaxFrameLengthBetweenTasks:       2 * time.Millisecond,
		TaskProcessingProhibitedInterval: 0,
		ExpectedTaskCost:                 0,
		Scheduler:                        sched,
	})
	require.NoError(t, err)
	return c
}

// openWindow points the coordinator's predicted next frame far enough in
// the future that interframe/subframe admission checks pass.
func openWindow(c *Coordinator) {
	c.clock.setNextFrameDeadline(int64(time.Hour))
}

// closeWindow points the predicted next frame at "now", so every
// admission check refuses to run a task.
func closeWindow(c *Coordinator, hooks *fakeHooks) {
	c.clock.setNextFrameDeadline(hooks.NowNanos())
}

func TestCoordinator_Schedule_FastPath_ProcessesSynchronouslyWhenWindowOpen(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	task := NewTask()
	require.NoError(t, c.Schedule(task, nil))

	require.Equal(t, StateFinished, task.State())
	require.True(t, task.Success())
	require.Equal(t, int64(0), c.NumPendingTasks())
	require.Equal(t, 1, hooks.taskCallCount())
}

func TestCoordinator_Schedule_WindowClosed_DefersToScheduler(t *testing.T) {
	hooks := newFakeHooks()
	rs := &recordingScheduler{}
	c := newTestCoordinator(t, hooks, rs)
	closeWindow(c, hooks)

	task := NewTask()
	require.NoError(t, c.Schedule(task, nil))

	require.Equal(t, StateScheduled, task.State())
	require.Equal(t, int64(1), c.NumPendingTasks())
	require.Equal(t, 1, rs.scheduled)
}

func TestCoordinator_Schedule_AfterClose_ReturnsErrClosed(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	require.NoError(t, c.Close(context.Background()))

	err := c.Schedule(NewTask(), nil)

	require.ErrorIs(t, err, ErrClosed)
}

func TestCoordinator_ScheduleAndWait_ReturnsTaskOutcome(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	ok, err := c.ScheduleAndWait(context.Background(), NewTask())

	require.NoError(t, err)
	require.True(t, ok)
}

func TestCoordinator_ScheduleAndWait_SurfacesTaskFailure(t *testing.T) {
	hooks := newFakeHooks()
	hooks.processTask = func(*Task) bool { return false }
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	ok, err := c.ScheduleAndWait(context.Background(), NewTask())

	require.NoError(t, err) // err is the wait error, not the task's own failure
	require.False(t, ok)
}

func TestCoordinator_ScheduleAndWait_ContextCancelled_ReturnsContextError(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	closeWindow(c, hooks) // fast path won't run; nothing else will drain it

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.ScheduleAndWait(ctx, NewTask())

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCoordinator_ProcessFrameAndTasks_SplitsFrameAndDrainsQueuedTasks(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	tasks := make([]*Task, 5)
	for i := range tasks {
		tasks[i] = NewTask()
		require.NoError(t, tasks[i].markScheduled())
		c.queue.push(tasks[i])
		c.pendingTasks.Add(1)
	}

	frame := Frame{Samples: make([]float32, 10)} // max=2 samples/chunk -> 5 sub-frames
	ok := c.ProcessFrameAndTasks(frame)

	require.True(t, ok)
	require.Equal(t, 5, hooks.frameCallCount())
	require.Equal(t, int64(0), c.NumPendingTasks())
	for _, task := range tasks {
		require.Equal(t, StateFinished, task.State())
	}
}

func TestCoordinator_ProcessFrameAndTasks_PreciseSchedulingDisabled_ProcessesWholeFrameAtOnce(t *testing.T) {
	hooks := newFakeHooks()
	c, err := New(hooks, &Config{
		SampleRate:                  1000,
		ChannelMask:                 0b1,
		EnablePreciseTaskScheduling: false,
	})
	require.NoError(t, err)

	ok := c.ProcessFrameAndTasks(Frame{Samples: make([]float32, 10)})

	require.True(t, ok)
	require.Equal(t, 1, hooks.frameCallCount())
}

func TestCoordinator_ProcessFrameAndTasks_PropagatesFrameFailure(t *testing.T) {
	hooks := newFakeHooks()
	hooks.processFrame = func(Frame) bool { return false }
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	ok := c.ProcessFrameAndTasks(Frame{Samples: make([]float32, 4)})

	require.False(t, ok)
}

func TestCoordinator_ProcessTasks_PreemptsWhenFrameBecomesPending(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	task := NewTask()
	require.NoError(t, task.markScheduled())
	c.queue.push(task)
	c.pendingTasks.Add(1)
	c.pendingFrames.Add(1) // simulate a frame already wanting the mutex

	c.ProcessTasks()

	require.Equal(t, int64(1), c.NumPendingTasks())
	require.Equal(t, uint64(1), c.st.preemptions)
}

func TestCoordinator_ProcessTasks_DrainsQueueWhenWindowOpen(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	for i := 0; i < 3; i++ {
		task := NewTask()
		require.NoError(t, task.markScheduled())
		c.queue.push(task)
		c.pendingTasks.Add(1)
	}

	c.ProcessTasks()

	require.Equal(t, int64(0), c.NumPendingTasks())
}

func TestCoordinator_Close_DrainsPendingTasksWhenWindowOpen(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	for i := 0; i < 4; i++ {
		task := NewTask()
		require.NoError(t, task.markScheduled())
		c.queue.push(task)
		c.pendingTasks.Add(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, c.Close(ctx))
	require.Equal(t, int64(0), c.NumPendingTasks())
}

func TestCoordinator_Close_TimesOutWhenWindowNeverOpens(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	closeWindow(c, hooks)

	task := NewTask()
	require.NoError(t, task.markScheduled())
	c.queue.push(task)
	c.pendingTasks.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCoordinator_ProcessFrameAndTasks_CancelsArmedAsyncScheduling(t *testing.T) {
	hooks := newFakeHooks()
	rs := &recordingScheduler{}
	c := newTestCoordinator(t, hooks, rs)
	closeWindow(c, hooks)

	require.NoError(t, c.Schedule(NewTask(), nil))
	require.Equal(t, ProcessingScheduled, c.bridge.processingState())
	require.Equal(t, 1, rs.scheduled)

	openWindow(c)
	ok := c.ProcessFrameAndTasks(Frame{Samples: make([]float32, 4)})

	require.True(t, ok)
	require.Equal(t, 1, rs.cancelled)
	require.Equal(t, uint64(1), c.Stats().SchedulerCancellations)
}

func TestCoordinator_Stats_CountsInPlaceProcessing(t *testing.T) {
	hooks := newFakeHooks()
	c := newTestCoordinator(t, hooks, nil)
	openWindow(c)

	require.NoError(t, c.Schedule(NewTask(), nil))
	require.NoError(t, c.Schedule(NewTask(), nil))

	snap := c.Stats()
	require.Equal(t, uint64(2), snap.TasksProcessedTotal)
	require.Equal(t, uint64(2), snap.TasksProcessedInPlace)
}
