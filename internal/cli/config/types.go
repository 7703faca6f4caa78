// Package config provides configuration management for the leaprdt CLI.
//
// This package extends the shared settings from internal/config with
// CLI-specific fields. The shared types are re-exported here via type
// aliases for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/leaprdt/internal/config"
)

// NullsConfig is an alias for the shared null settings.
type NullsConfig = sharedcfg.NullsConfig

// NumericalConfig is an alias for the shared numerical settings.
type NumericalConfig = sharedcfg.NumericalConfig

// CategoricalConfig is an alias for the shared categorical settings.
type CategoricalConfig = sharedcfg.CategoricalConfig

// DatetimeConfig is an alias for the shared datetime settings.
type DatetimeConfig = sharedcfg.DatetimeConfig

// FieldEntry is an alias for the shared per-field override.
type FieldEntry = sharedcfg.FieldEntry

// TransformSettings is an alias for the shared fit settings.
type TransformSettings = sharedcfg.TransformSettings

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string                `koanf:"state_path"`
	Verbose      bool                  `koanf:"verbose"`
	OutputFormat string                `koanf:"output"`
	Workers      int                   `koanf:"workers"`
	Seed         uint64                `koanf:"seed"`
	Nulls        NullsConfig           `koanf:"nulls"`
	Numerical    NumericalConfig       `koanf:"numerical"`
	Categorical  CategoricalConfig     `koanf:"categorical"`
	Datetime     DatetimeConfig        `koanf:"datetime"`
	Transformers map[string]string     `koanf:"transformers"`
	Fields       map[string]FieldEntry `koanf:"fields"`

	// ProjectRoot is the directory the config file was found in, or the
	// working directory. Relative paths are resolved against it.
	ProjectRoot string `koanf:"-"`
}

// Settings returns the fit-related part of the configuration.
func (c *Config) Settings() *TransformSettings {
	return &TransformSettings{
		Workers:      c.Workers,
		Seed:         c.Seed,
		Nulls:        c.Nulls,
		Numerical:    c.Numerical,
		Categorical:  c.Categorical,
		Datetime:     c.Datetime,
		Transformers: c.Transformers,
		Fields:       c.Fields,
	}
}

// Output formats.
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
)

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultStateFile = sharedcfg.DefaultStateFile
	DefaultOutput    = sharedcfg.DefaultOutput
)
