package transformers

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
)

// Options are the settings shared by every transformer a factory builds.
// Each factory maps them onto its own transformer config.
type Options struct {
	Nulls         nulls.Config
	EnforceMinMax bool
	LearnRounding bool
	Scaling       Scaling
	Order         Order
	AddNoise      bool
	Seed          uint64
	DatetimeUnit  time.Duration
	IDPrefix      string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Nulls:         nulls.DefaultConfig(),
		EnforceMinMax: false,
		LearnRounding: true,
		Scaling:       ScaleNone,
		Order:         OrderFrequency,
		DatetimeUnit:  time.Nanosecond,
	}
}

// Factory builds an unfitted transformer.
type Factory func(Options) core.Transformer

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"FloatFormatter": func(o Options) core.Transformer {
			return NewFloatFormatter(FloatFormatterConfig{
				Nulls:         o.Nulls,
				EnforceMinMax: o.EnforceMinMax,
				LearnRounding: o.LearnRounding,
				Scaling:       o.Scaling,
			})
		},
		"FrequencyEncoder": func(o Options) core.Transformer {
			return NewFrequencyEncoder(FrequencyEncoderConfig{Order: o.Order, AddNoise: o.AddNoise, Seed: o.Seed})
		},
		"OneHotEncoder": func(o Options) core.Transformer {
			return NewOneHotEncoder(OneHotEncoderConfig{Order: o.Order})
		},
		"LabelEncoder": func(o Options) core.Transformer {
			return NewLabelEncoder(LabelEncoderConfig{Order: o.Order})
		},
		"BinaryEncoder": func(o Options) core.Transformer {
			// A mean of booleans is not a boolean.
			cfg := o.Nulls
			if cfg.Replacement == nulls.ReplaceMean {
				cfg.Replacement = nulls.ReplaceMode
			}
			return NewBinaryEncoder(BinaryEncoderConfig{Nulls: cfg})
		},
		"UnixTimestampEncoder": func(o Options) core.Transformer {
			return NewUnixTimestampEncoder(UnixTimestampEncoderConfig{
				Nulls:         o.Nulls,
				Unit:          o.DatetimeUnit,
				EnforceMinMax: o.EnforceMinMax,
			})
		},
		"AnonymizedIdentifier": func(o Options) core.Transformer {
			return NewAnonymizedIdentifier(AnonymizedIdentifierConfig{Nulls: o.Nulls, Prefix: o.IDPrefix})
		},
	}

	defaults = map[core.SDType]string{
		core.Numerical:   "FloatFormatter",
		core.Categorical: "FrequencyEncoder",
		core.Boolean:     "BinaryEncoder",
		core.Datetime:    "UnixTimestampEncoder",
		core.Identifier:  "AnonymizedIdentifier",
	}
)

// Register adds a transformer factory to the registry, replacing any factory
// with the same name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// UnknownTransformerError is returned for names missing from the registry.
type UnknownTransformerError struct {
	Name      string
	Available []string
}

func (e *UnknownTransformerError) Error() string {
	return fmt.Sprintf("unknown transformer %q (available: %v)", e.Name, e.Available)
}

// New builds a transformer by name.
func New(name string, opts Options) (core.Transformer, error) {
	f, ok := Get(name)
	if !ok {
		return nil, &UnknownTransformerError{Name: name, Available: Names()}
	}
	return f(opts), nil
}

// Names returns the registered transformer names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFor returns the default transformer name for a semantic type.
func DefaultFor(sdtype core.SDType) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	name, ok := defaults[sdtype]
	return name, ok
}

// Restore rebuilds a fitted transformer from its name and serialized state.
func Restore(name string, state json.RawMessage) (core.Transformer, error) {
	t, err := New(name, DefaultOptions())
	if err != nil {
		return nil, err
	}
	s, ok := t.(core.Snapshotter)
	if !ok {
		return nil, fmt.Errorf("transformer %s does not support snapshots", name)
	}
	if err := s.UnmarshalState(state); err != nil {
		return nil, err
	}
	return t, nil
}
