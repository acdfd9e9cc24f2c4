package scheduler

import (
	"fmt"
	"runtime"
	"time"
)

// Config configures the worker pool.
type Config struct {
	// Workers is the number of goroutines executing jobs.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// QueueSize bounds the jobs accepted but not yet executing.
	QueueSize int `yaml:"queue_size" mapstructure:"queue_size"`
	// DrainTimeout bounds how long Stop waits for accepted jobs.
	DrainTimeout time.Duration `yaml:"drain_timeout" mapstructure:"drain_timeout"`
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 30 * time.Second
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("scheduler workers must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("scheduler queue_size must be at least 1, got %d", c.QueueSize)
	}
	return nil
}
