// Package config provides the configuration surface for a zipdeid run.
// A single Config structure covers the deidentification policy, file I/O,
// performance tuning and observability, organized into logical sections
// with production-ready defaults.
//
// Example usage:
//
//	cfg := config.New()
//	cfg.Deidentify.Precision = "3"
//	cfg.IO.Input = "patients.csv"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"github.com/safeharbor-io/zipdeid/pkg/delimited"
	"github.com/safeharbor-io/zipdeid/pkg/errors"
	"github.com/safeharbor-io/zipdeid/pkg/zipcode"
)

// Config is the unified configuration for one deidentification run.
type Config struct {
	// Name identifies the run in logs and metrics
	Name string `yaml:"name" json:"name"`

	// Deidentify controls the ZIP transformation policy
	Deidentify DeidentifyConfig `yaml:"deidentify" json:"deidentify"`

	// IO controls input and output files and the record format
	IO IOConfig `yaml:"io" json:"io"`

	// Performance settings control buffering and batching
	Performance PerformanceConfig `yaml:"performance" json:"performance"`

	// Observability settings for logging and metrics
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// DeidentifyConfig contains the ZIP transformation policy.
type DeidentifyConfig struct {
	// Columns lists the target column selectors (names or zero-based indices)
	Columns []string `yaml:"columns" json:"columns"`
	// Precision selects the truncation mode: 2, 3 or smart
	Precision string `yaml:"precision" json:"precision"`
	// Fill selects the character substituted for truncated digits: 0 or X
	Fill string `yaml:"fill" json:"fill"`
	// Redaction is the marker substituted for non-compliant values under
	// 3-digit precision
	Redaction string `yaml:"redaction" json:"redaction"`
}

// IOConfig contains file and record-format settings.
type IOConfig struct {
	// Input is the path of the delimited file to deidentify
	Input string `yaml:"input" json:"input"`
	// Output is the destination path; empty derives {stem}_deidentified{ext}
	Output string `yaml:"output" json:"output"`
	// Delimiter is the single-character field separator; empty means comma
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// NoHeader marks the input as header-less; only index selectors work then
	NoHeader bool `yaml:"no_header" json:"no_header"`
}

// PerformanceConfig contains throughput-related settings.
type PerformanceConfig struct {
	// BufferSize sets the row channel capacity between pipeline stages
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`
	// LogInterval controls how many rows pass between progress log lines
	LogInterval int `yaml:"log_interval" json:"log_interval"`
}

// ObservabilityConfig contains logging and metrics settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// EnableMetrics exposes Prometheus metrics over HTTP during the run
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// MetricsAddr is the listen address for the metrics endpoint
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
}

// New creates a Config with sensible defaults: smart precision, zero
// fill, the standard redaction marker and a single "zipcode" column.
func New() *Config {
	return &Config{
		Name: "zipdeid",
		Deidentify: DeidentifyConfig{
			Columns:   []string{"zipcode"},
			Precision: string(zipcode.PrecisionSmart),
			Fill:      string(zipcode.FillZero),
			Redaction: zipcode.DefaultRedaction,
		},
		IO: IOConfig{
			Delimiter: ",",
		},
		Performance: PerformanceConfig{
			BufferSize:  1024,
			LogInterval: 100000,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			EnableMetrics: false,
			MetricsAddr:   ":9090",
		},
	}
}

// Validate validates the configuration for correctness. It checks
// required fields and that enumerated values parse. Callers should
// validate after loading configuration to catch errors before any row
// is processed.
func (c *Config) Validate() error {
	if c.IO.Input == "" {
		return errors.New(errors.ErrorTypeConfig, "input file is required")
	}
	if len(c.Deidentify.Columns) == 0 {
		return errors.New(errors.ErrorTypeConfig, "at least one column selector is required")
	}
	if _, err := zipcode.ParsePrecision(c.Deidentify.Precision); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid precision")
	}
	if _, err := zipcode.ParseFill(c.Deidentify.Fill); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid fill policy")
	}
	if _, err := delimited.ParseDelimiter(c.IO.Delimiter); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid delimiter")
	}
	if c.Performance.BufferSize <= 0 {
		return errors.New(errors.ErrorTypeConfig, "buffer_size must be positive")
	}
	return nil
}

// OutputPath returns the configured output path, deriving the default
// {stem}_deidentified{ext} name when none is set.
func (c *Config) OutputPath() string {
	if c.IO.Output != "" {
		return c.IO.Output
	}
	return delimited.DeriveOutputPath(c.IO.Input)
}
