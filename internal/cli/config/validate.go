package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaprdt/pkg/transformers"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	switch strings.ToLower(c.OutputFormat) {
	case OutputTable, OutputYAML, OutputJSON:
	default:
		return fmt.Errorf("invalid output format %q (expected table, yaml or json)", c.OutputFormat)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	s := c.Settings()
	if _, err := s.Options(); err != nil {
		return err
	}
	defaults, err := s.Defaults()
	if err != nil {
		return err
	}
	for sdtype, name := range defaults {
		if _, ok := transformers.Get(name); !ok {
			return fmt.Errorf("transformers.%s: unknown transformer %q", sdtype, name)
		}
	}
	if _, err := s.FieldConfig(); err != nil {
		return err
	}
	for field, entry := range c.Fields {
		if entry.Transformer == "" {
			continue
		}
		if _, ok := transformers.Get(entry.Transformer); !ok {
			return fmt.Errorf("fields.%s: unknown transformer %q", field, entry.Transformer)
		}
	}
	return nil
}
