package config

import (
	"fmt"

	"github.com/kbukum/whisperbridge/engine"
	"github.com/kbukum/whisperbridge/logger"
	"github.com/kbukum/whisperbridge/observability"
	"github.com/kbukum/whisperbridge/scheduler"
	"github.com/kbukum/whisperbridge/server"
)

// ServiceName is the default service name and config search key.
const ServiceName = "whisperbridge"

// Config is the complete whisperbridge configuration.
type Config struct {
	Service   ServiceConfig        `yaml:"service" mapstructure:"service"`
	Logging   logger.Config        `yaml:"logging" mapstructure:"logging"`
	Engine    engine.Config        `yaml:"engine" mapstructure:"engine"`
	Scheduler scheduler.Config     `yaml:"scheduler" mapstructure:"scheduler"`
	Server    server.Config        `yaml:"server" mapstructure:"server"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills every section. Telemetry inherits the service name,
// version and environment unless set explicitly.
func (c *Config) ApplyDefaults() {
	c.Service.ApplyDefaults()
	if c.Service.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.Engine.ApplyDefaults()
	c.Scheduler.ApplyDefaults()
	c.Server.ApplyDefaults()

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Service.Name
	}
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = c.Service.Version
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Service.Environment
	}
	c.Telemetry.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	checks := []struct {
		section string
		check   func() error
	}{
		{"service", c.Service.Validate},
		{"logging", c.Logging.Validate},
		{"engine", c.Engine.Validate},
		{"scheduler", c.Scheduler.Validate},
		{"server", c.Server.Validate},
		{"telemetry", c.Telemetry.Validate},
	}
	for _, ch := range checks {
		if err := ch.check(); err != nil {
			return fmt.Errorf("config.%s: %w", ch.section, err)
		}
	}
	return nil
}

// Load reads, defaults and validates the configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
