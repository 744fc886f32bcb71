package pipeline

import "time"

// defaultConfig centralizes default values for Config.
// These defaults are applied by both New (when cfg is nil) and NewOptions (options builder base).
func defaultConfig() Config {
	return Config{
		EnablePreciseTaskScheduling:      true,
		MinFrameLengthBetweenTasks:       time.Millisecond,
		MaxFrameLengthBetweenTasks:       10 * time.Millisecond,
		TaskProcessingProhibitedInterval: time.Millisecond,
		ExpectedTaskCost:                 200 * time.Microsecond,
	}
}

// validateConfig performs the construction-time invariant checks
// required before sample-based constants can be derived.
func validateConfig(cfg *Config) error {
	switch {
	case cfg.SampleRate == 0:
		return ErrInvalidConfig
	case cfg.ChannelMask == 0:
		return ErrInvalidConfig
	case cfg.MinFrameLengthBetweenTasks < 0:
		return ErrInvalidConfig
	case cfg.MaxFrameLengthBetweenTasks < 0:
		return ErrInvalidConfig
	case cfg.MaxFrameLengthBetweenTasks < cfg.MinFrameLengthBetweenTasks:
		return ErrInvalidConfig
	case cfg.TaskProcessingProhibitedInterval < 0:
		return ErrInvalidConfig
	case cfg.ExpectedTaskCost < 0:
		return ErrInvalidConfig
	}
	return nil
}
