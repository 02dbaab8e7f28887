package scheduler

import (
	"time"

	"github.com/smallbiznis/bookflow/internal/config"
)

// Config controls the processing cadence.
type Config struct {
	RunInterval time.Duration
	Enabled     bool
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 24 * time.Hour,
		Enabled:     true,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	return c
}

func ProvideConfig(appCfg config.Config) Config {
	return Config{
		RunInterval: time.Duration(appCfg.SchedulerIntervalMin) * time.Minute,
		Enabled:     appCfg.SchedulerEnabled,
	}
}
