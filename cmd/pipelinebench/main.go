// Command pipelinebench drives a pipeline.Coordinator against a
// synthetic audio clock and task load, then prints the resulting
// Snapshot. It exists to exercise the scheduling core end to end
// outside of a real host, and as a harness for reasoning about the
// window-admission tuning knobs exposed on pipeline.Config.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/soundforge/pipeline"
	"github.com/soundforge/pipeline/logging"
	"github.com/soundforge/pipeline/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath   string
		failRate     float64
		verbose      bool
		frameCadence time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pipelinebench",
		Short: "Drive a pipeline.Coordinator against a synthetic frame/task load",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBenchConfig(configPath)
			if err != nil {
				return err
			}
			if frameCadence > 0 {
				cfg.FrameCadence = frameCadence
			}
			return runBench(cmd.Context(), cfg, failRate, verbose)
		},
	}

	var flags *pflag.FlagSet = cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file (see benchConfig)")
	flags.Float64Var(&failRate, "fail-rate", 0, "fraction of tasks to simulate as failing, in [0,1]")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.DurationVar(&frameCadence, "frame-cadence", 0, "override frame_cadence from the config file")

	return cmd
}

func runBench(ctx context.Context, cfg benchConfig, failRate float64, verbose bool) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
	log := logging.NewZerologAdapter(zl)

	provider := metrics.NewBasicProvider()
	hooks := newBenchHooks(log, provider, failRate)

	var coord *pipeline.Coordinator
	sched := newTimerScheduler(func() { coord.ProcessTasks() })

	pcfg := cfg.pipelineConfig()
	pcfg.Logger = log
	pcfg.Scheduler = sched

	var err error
	coord, err = pipeline.New(hooks, &pcfg)
	if err != nil {
		return fmt.Errorf("construct coordinator: %w", err)
	}

	submitted := provider.Counter("pipelinebench_tasks_submitted_total")
	inflight := provider.UpDownCounter("pipelinebench_tasks_inflight")

	stop := make(chan struct{})
	go submitTasks(coord, cfg, submitted, inflight, stop)

	driveFrames(ctx, coord, cfg, log)
	close(stop)

	// Give the last round of async-scheduled tasks a chance to drain.
	drainCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := coord.Close(drainCtx); err != nil {
		log.Warn("close did not fully drain", "error", err)
	}

	return printSnapshot(coord.Stats())
}

// driveFrames calls ProcessFrameAndTasks at cfg.FrameCadence intervals,
// standing in for the real-time audio thread's periodic callback.
func driveFrames(ctx context.Context, coord *pipeline.Coordinator, cfg benchConfig, log logging.Logger) {
	ticker := time.NewTicker(cfg.FrameCadence)
	defer ticker.Stop()

	frame := pipeline.Frame{Samples: make([]float32, cfg.FrameSamples)}
	for i := range frame.Samples {
		frame.Samples[i] = rand.Float32()*2 - 1
	}

	for n := 0; n < cfg.Frames; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !coord.ProcessFrameAndTasks(frame) {
			log.Debug("frame processing reported failure", "frame", n)
		}
	}
}

// submitTasks schedules cfg.Tasks tasks spread across the benchmark's
// run, simulating background work arriving from unrelated application
// threads (UI parameter changes, file loads, network callbacks).
func submitTasks(coord *pipeline.Coordinator, cfg benchConfig, submitted metrics.Counter, inflight metrics.UpDownCounter, stop <-chan struct{}) {
	if cfg.Tasks == 0 {
		return
	}
	interval := (cfg.FrameCadence * time.Duration(cfg.Frames)) / time.Duration(cfg.Tasks)
	if interval <= 0 {
		interval = time.Microsecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < cfg.Tasks; i++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		t := pipeline.NewTaskWithID(uuid.New())
		inflight.Add(1)
		submitted.Add(1)
		_ = coord.Schedule(t, func(*pipeline.Task) { inflight.Add(-1) })
	}
}

func printSnapshot(s pipeline.Snapshot) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(s)
}
