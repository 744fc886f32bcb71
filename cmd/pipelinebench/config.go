package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soundforge/pipeline"
)

// benchConfig is the run configuration this command loads from a YAML
// file (--config); fields absent from the file keep defaultBenchConfig's
// values. Of these fields, only frame_cadence can also be set by a flag.
type benchConfig struct {
	SampleRate                  uint32        `yaml:"sample_rate"`
	ChannelMask                 uint32        `yaml:"channel_mask"`
	EnablePreciseTaskScheduling bool          `yaml:"precise_task_scheduling"`
	MinFrameLengthBetweenTasks  time.Duration `yaml:"min_frame_length_between_tasks"`
	MaxFrameLengthBetweenTasks  time.Duration `yaml:"max_frame_length_between_tasks"`
	TaskProcessingProhibited    time.Duration `yaml:"task_processing_prohibited_interval"`
	ExpectedTaskCost            time.Duration `yaml:"expected_task_cost"`

	FrameSamples int           `yaml:"frame_samples"`
	Frames       int           `yaml:"frames"`
	Tasks        int           `yaml:"tasks"`
	FrameCadence time.Duration `yaml:"frame_cadence"`
}

func defaultBenchConfig() benchConfig {
	return benchConfig{
		SampleRate:                  48000,
		ChannelMask:                 0b11,
		EnablePreciseTaskScheduling: true,
		MinFrameLengthBetweenTasks:  time.Millisecond,
		MaxFrameLengthBetweenTasks:  10 * time.Millisecond,
		TaskProcessingProhibited:    time.Millisecond,
		ExpectedTaskCost:            200 * time.Microsecond,
		FrameSamples:                1024,
		Frames:                      200,
		Tasks:                       2000,
		FrameCadence:                time.Millisecond,
	}
}

func loadBenchConfig(path string) (benchConfig, error) {
	cfg := defaultBenchConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (b benchConfig) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		SampleRate:                       b.SampleRate,
		ChannelMask:                      b.ChannelMask,
		EnablePreciseTaskScheduling:      b.EnablePreciseTaskScheduling,
		MinFrameLengthBetweenTasks:       b.MinFrameLengthBetweenTasks,
		MaxFrameLengthBetweenTasks:       b.MaxFrameLengthBetweenTasks,
		TaskProcessingProhibitedInterval: b.TaskProcessingProhibited,
		ExpectedTaskCost:                 b.ExpectedTaskCost,
	}
}
