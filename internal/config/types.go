// Package config provides shared configuration types for leaprdt.
// It is decoupled from CLI concerns so that other tools embedding the
// hyper transformer can load the same settings.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/hyper"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
	"github.com/leapstack-labs/leaprdt/pkg/transformers"
)

// NullsConfig controls missing-value modelling.
type NullsConfig struct {
	Threshold       float64 `koanf:"threshold"`
	IndicatorCutoff float64 `koanf:"indicator_cutoff"`
}

// NumericalConfig controls the float formatter.
type NumericalConfig struct {
	EnforceMinMax bool   `koanf:"enforce_min_max"`
	Scaling       string `koanf:"scaling"` // none, standard, minmax
}

// CategoricalConfig controls the categorical encoders.
type CategoricalConfig struct {
	Order    string `koanf:"order"` // frequency, appearance, alphabetical
	AddNoise bool   `koanf:"add_noise"`
}

// DatetimeConfig controls the timestamp encoder.
type DatetimeConfig struct {
	Unit string `koanf:"unit"` // Go duration, e.g. "1s" or "24h"
}

// FieldEntry overrides detection and transformer choice for one field.
type FieldEntry struct {
	SDType      string `koanf:"sdtype"`
	Transformer string `koanf:"transformer"`
}

// TransformSettings groups everything that affects fitting.
type TransformSettings struct {
	Workers      int                   `koanf:"workers"`
	Seed         uint64                `koanf:"seed"`
	Nulls        NullsConfig           `koanf:"nulls"`
	Numerical    NumericalConfig       `koanf:"numerical"`
	Categorical  CategoricalConfig     `koanf:"categorical"`
	Datetime     DatetimeConfig        `koanf:"datetime"`
	Transformers map[string]string     `koanf:"transformers"` // sdtype -> transformer name
	Fields       map[string]FieldEntry `koanf:"fields"`
}

// Options converts the settings into transformer options.
func (s *TransformSettings) Options() (transformers.Options, error) {
	opts := transformers.DefaultOptions()

	n := nulls.DefaultConfig()
	n.Threshold = s.Nulls.Threshold
	if s.Nulls.IndicatorCutoff != 0 {
		n.Cutoff = s.Nulls.IndicatorCutoff
	}
	if err := n.Validate(); err != nil {
		return opts, err
	}
	opts.Nulls = n

	opts.EnforceMinMax = s.Numerical.EnforceMinMax
	if s.Numerical.Scaling != "" {
		switch sc := transformers.Scaling(strings.ToLower(s.Numerical.Scaling)); sc {
		case transformers.ScaleNone, transformers.ScaleStandard, transformers.ScaleMinMax:
			opts.Scaling = sc
		default:
			return opts, fmt.Errorf("unknown numerical scaling %q (expected none, standard or minmax)", s.Numerical.Scaling)
		}
	}

	if s.Categorical.Order != "" {
		switch o := transformers.Order(strings.ToLower(s.Categorical.Order)); o {
		case transformers.OrderFrequency, transformers.OrderAppearance, transformers.OrderAlphabetical:
			opts.Order = o
		default:
			return opts, fmt.Errorf("unknown categorical order %q (expected frequency, appearance or alphabetical)", s.Categorical.Order)
		}
	}
	opts.AddNoise = s.Categorical.AddNoise
	opts.Seed = s.Seed

	if s.Datetime.Unit != "" {
		unit, err := time.ParseDuration(s.Datetime.Unit)
		if err != nil {
			return opts, fmt.Errorf("invalid datetime unit %q: %w", s.Datetime.Unit, err)
		}
		if unit <= 0 {
			return opts, fmt.Errorf("datetime unit must be positive, got %s", s.Datetime.Unit)
		}
		opts.DatetimeUnit = unit
	}
	return opts, nil
}

// Defaults parses the sdtype -> transformer map.
func (s *TransformSettings) Defaults() (map[core.SDType]string, error) {
	if len(s.Transformers) == 0 {
		return nil, nil
	}
	out := make(map[core.SDType]string, len(s.Transformers))
	for _, key := range sortedKeys(s.Transformers) {
		sdtype, err := core.ParseSDType(key)
		if err != nil {
			return nil, fmt.Errorf("transformers: %w", err)
		}
		out[sdtype] = s.Transformers[key]
	}
	return out, nil
}

// FieldConfig converts per-field overrides into a hyper field config.
func (s *TransformSettings) FieldConfig() (hyper.FieldConfig, error) {
	fc := hyper.FieldConfig{
		SDTypes:      map[string]core.SDType{},
		Transformers: map[string]string{},
	}
	for _, name := range sortedKeys(s.Fields) {
		entry := s.Fields[name]
		if entry.SDType != "" {
			sdtype, err := core.ParseSDType(entry.SDType)
			if err != nil {
				return fc, fmt.Errorf("fields.%s: %w", name, err)
			}
			fc.SDTypes[name] = sdtype
		}
		if entry.Transformer != "" {
			fc.Transformers[name] = entry.Transformer
		}
	}
	return fc, nil
}

// HyperConfig builds the hyper transformer configuration.
func (s *TransformSettings) HyperConfig() (hyper.Config, error) {
	opts, err := s.Options()
	if err != nil {
		return hyper.Config{}, err
	}
	defaults, err := s.Defaults()
	if err != nil {
		return hyper.Config{}, err
	}
	return hyper.Config{
		Workers:  s.Workers,
		Options:  opts,
		Defaults: defaults,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
