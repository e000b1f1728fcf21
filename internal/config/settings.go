package config

import (
	"fmt"
	"strings"
	"time"

	logx "tempo/pkg/logx"
)

// Defaults applied when sections are omitted.
const (
	DefaultClockInterval   = 1.0
	DefaultClockQuantum    = 100 * time.Millisecond
	DefaultWaitTimeout     = 30 * time.Second
	DefaultTeardownTimeout = 5 * time.Second
	DefaultHistorySize     = 200
)

// LogxConfig maps the logging section onto the log service's config.
func (c *Config) LogxConfig() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.Logging.File.Path,
		},
	}
}

// Resolve validates the clock section and fills in defaults.
func (c *ClockConfig) Resolve() (intervalSeconds float64, quantum time.Duration, err error) {
	intervalSeconds = c.IntervalSeconds
	if intervalSeconds == 0 {
		intervalSeconds = DefaultClockInterval
	}
	if intervalSeconds < 0 {
		return 0, 0, fmt.Errorf("clock.interval_seconds: must be > 0, got %g", c.IntervalSeconds)
	}
	quantum, err = ParseDurationOrDefault("clock.quantum", c.Quantum, DefaultClockQuantum)
	if err != nil {
		return 0, 0, err
	}
	return intervalSeconds, quantum, nil
}

// Budgets validates the overview timeouts and fills in defaults.
func (c *OverviewConfig) Budgets() (wait, teardown time.Duration, err error) {
	wait, err = ParseDurationOrDefault("overview.wait_timeout", c.WaitTimeout, DefaultWaitTimeout)
	if err != nil {
		return 0, 0, err
	}
	teardown, err = ParseDurationOrDefault("overview.teardown_timeout", c.TeardownTimeout, DefaultTeardownTimeout)
	if err != nil {
		return 0, 0, err
	}
	return wait, teardown, nil
}

// Validate checks the job entry for obvious mistakes.
func (j *JobConfig) Validate() error {
	if strings.TrimSpace(j.Name) == "" {
		return fmt.Errorf("overview.jobs: name is required")
	}
	if j.Spec == "" && j.At < -1 {
		return fmt.Errorf("overview.jobs.%s: at must be >= 0 or -1 (never)", j.Name)
	}
	if _, err := ParseDurationField("overview.jobs."+j.Name+".sleep", j.Sleep); err != nil {
		return err
	}
	return nil
}

// SleepDuration parses the optional sleep field.
func (j *JobConfig) SleepDuration() (time.Duration, error) {
	return ParseDurationField("overview.jobs."+j.Name+".sleep", j.Sleep)
}

// Validate checks the whole config.
func (c *Config) Validate() error {
	if _, _, err := c.Clock.Resolve(); err != nil {
		return err
	}
	if _, _, err := c.Overview.Budgets(); err != nil {
		return err
	}
	for i := range c.Overview.Jobs {
		if err := c.Overview.Jobs[i].Validate(); err != nil {
			return err
		}
	}
	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	return nil
}
