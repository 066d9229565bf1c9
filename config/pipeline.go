package config

import "time"

// PipelineConfig holds process-wide operator defaults. Zero values keep the
// built-in defaults.
type PipelineConfig struct {
	// LookupCapacity is the initial bucket count of grouping tables.
	LookupCapacity  int `yaml:"lookup_capacity" mapstructure:"lookup_capacity" validate:"gte=0"`
	MergeReadyQueue int `yaml:"merge_ready_queue" mapstructure:"merge_ready_queue" validate:"gte=0,lte=4096"`
	BufferSize      int `yaml:"buffer_size" mapstructure:"buffer_size" validate:"gte=0,lte=65536"`
	ChunkSize       int `yaml:"chunk_size" mapstructure:"chunk_size" validate:"gte=0"`
}

// TelemetryConfig enables OTLP export of traces and metrics.
type TelemetryConfig struct {
	Tracing        bool          `yaml:"tracing" mapstructure:"tracing"`
	Metrics        bool          `yaml:"metrics" mapstructure:"metrics"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	ExportInterval time.Duration `yaml:"export_interval" mapstructure:"export_interval"`
}

// ApplyDefaults sets the sample rate and export interval when telemetry is
// enabled and they are unset.
func (c *TelemetryConfig) ApplyDefaults() {
	if !c.Enabled() {
		return
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.ExportInterval <= 0 {
		c.ExportInterval = 15 * time.Second
	}
}

// Enabled reports whether any exporter is switched on.
func (c *TelemetryConfig) Enabled() bool {
	return c.Tracing || c.Metrics
}
