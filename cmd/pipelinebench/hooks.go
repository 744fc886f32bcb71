package main

import (
	"math/rand"
	"time"

	"github.com/soundforge/pipeline"
	"github.com/soundforge/pipeline/logging"
	"github.com/soundforge/pipeline/metrics"
)

// benchHooks is a minimal pipeline.Hooks implementation standing in for
// an actual DSP graph: ProcessFrame simulates fixed per-sample work.
// ProcessTask performs no simulated work: it fails a failRate fraction of
// calls at random and records each call's duration.
type benchHooks struct {
	log      logging.Logger
	taskCost metrics.Histogram
	taskFail metrics.Counter
	failRate float64
}

func newBenchHooks(log logging.Logger, provider metrics.Provider, failRate float64) *benchHooks {
	return &benchHooks{
		log:      log,
		taskCost: provider.Histogram("pipelinebench_task_cost_seconds", metrics.WithUnit("seconds")),
		taskFail: provider.Counter("pipelinebench_task_failures_total"),
		failRate: failRate,
	}
}

func (h *benchHooks) NowNanos() int64 { return time.Now().UnixNano() }

func (h *benchHooks) ProcessFrame(frame pipeline.Frame) bool {
	// Stand in for per-sample DSP work; a real pipeline would run its
	// graph here. Deliberately cheap so the benchmark is dominated by
	// scheduling overhead, not simulated audio math.
	var acc float32
	for _, s := range frame.Samples {
		acc += s * 0.5
	}
	_ = acc
	return true
}

func (h *benchHooks) ProcessTask(t *pipeline.Task) bool {
	start := time.Now()
	if h.failRate > 0 && rand.Float64() < h.failRate {
		h.taskCost.Record(time.Since(start).Seconds())
		h.taskFail.Add(1)
		h.log.Warn("task failed", "task", t.ID)
		return false
	}
	h.taskCost.Record(time.Since(start).Seconds())
	return true
}
