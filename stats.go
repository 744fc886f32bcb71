package pipeline

// Snapshot is a read-only copy of the coordinator's counters. The
// scheduler counters are copied under the scheduler bridge's mutex; the
// task and preemption counters are copied without taking the pipeline
// mutex that guards them, so Coordinator.Stats is unsafe to call
// concurrently with other coordinator operations — it is intended for
// tests and benchmarks, not production polling.
type Snapshot struct {
	TasksProcessedTotal      uint64
	TasksProcessedInPlace    uint64
	TasksProcessedInFrame    uint64
	TasksProcessedInterframe uint64
	Preemptions              uint64
	SchedulerInvocations     uint64
	SchedulerCancellations   uint64
}

// stats holds the task/preemption counters that are private to the
// pipeline-mutex holder; there is no atomic here because there is never
// more than one writer at a time (the mutex itself is the
// synchronization). The two scheduler counters live on schedulerBridge
// instead — see its doc comment.
type stats struct {
	tasksProcessedTotal      uint64
	tasksProcessedInPlace    uint64
	tasksProcessedInFrame    uint64
	tasksProcessedInterframe uint64
	preemptions              uint64
}

func (s *stats) snapshot(invocations, cancellations uint64) Snapshot {
	return Snapshot{
		TasksProcessedTotal:      s.tasksProcessedTotal,
		TasksProcessedInPlace:    s.tasksProcessedInPlace,
		TasksProcessedInFrame:    s.tasksProcessedInFrame,
		TasksProcessedInterframe: s.tasksProcessedInterframe,
		Preemptions:              s.preemptions,
		SchedulerInvocations:     invocations,
		SchedulerCancellations:   cancellations,
	}
}
