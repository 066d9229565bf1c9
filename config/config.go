package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/validation"
)

// Config is the root configuration of a seqkit process.
//
//	name: seqkit
//	environment: production
//	logging:
//	  level: debug
//	pipeline:
//	  buffer_size: 32
//	telemetry:
//	  tracing: true
//	  endpoint: localhost:4318
type Config struct {
	Name        string          `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string          `yaml:"environment" mapstructure:"environment"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Pipeline    PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

var validEnvironments = []string{"development", "staging", "production"}

// ApplyDefaults fills unset fields of every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "seqkit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks struct tags first and then the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if !slices.Contains(validEnvironments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvironments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if c.Telemetry.Enabled() && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("config.telemetry.endpoint is required when tracing or metrics is enabled")
	}
	return nil
}
