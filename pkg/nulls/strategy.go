// Package nulls decides how missing values are represented in the numeric
// encoding of a field and how they are restored on the way back.
package nulls

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Replacement selects the value substituted for nulls before statistics are
// learned and before values are emitted.
type Replacement string

// Supported replacements.
const (
	// ReplaceNone leaves nulls as NaN in the value column.
	ReplaceNone     Replacement = "none"
	ReplaceMean     Replacement = "mean"
	ReplaceMode     Replacement = "mode"
	ReplaceConstant Replacement = "constant"
)

// DefaultCutoff is the indicator value above which a row is restored as null.
const DefaultCutoff = 0.5

// Config configures a null strategy.
type Config struct {
	Replacement Replacement `json:"replacement"`
	// Constant is the fill value for ReplaceConstant.
	Constant float64 `json:"constant,omitempty"`
	// ModelMissingValues enables the indicator column at all.
	ModelMissingValues bool `json:"model_missing_values"`
	// Threshold is the null ratio that must be exceeded for an indicator
	// column to be created.
	Threshold float64 `json:"threshold"`
	// Cutoff is the indicator value above which reverse restores a null.
	// Zero means DefaultCutoff.
	Cutoff float64 `json:"cutoff,omitempty"`
}

// DefaultConfig returns mean replacement with an indicator whenever any null
// is observed.
func DefaultConfig() Config {
	return Config{
		Replacement:        ReplaceMean,
		ModelMissingValues: true,
		Threshold:          0,
		Cutoff:             DefaultCutoff,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Replacement {
	case ReplaceNone, ReplaceMean, ReplaceMode, ReplaceConstant:
	case "":
	default:
		return fmt.Errorf("unknown null replacement %q", c.Replacement)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("null threshold must be within [0, 1], got %v", c.Threshold)
	}
	if c.Cutoff < 0 || c.Cutoff > 1 {
		return fmt.Errorf("null cutoff must be within [0, 1], got %v", c.Cutoff)
	}
	return nil
}

// State is the fitted, serializable part of a strategy.
type State struct {
	Fill      float64 `json:"fill"`
	Ratio     float64 `json:"ratio"`
	Indicator bool    `json:"indicator"`
}

// Strategy is a fitted null handling policy for one field.
type Strategy struct {
	cfg    Config
	state  State
	fitted bool
}

// New creates an unfitted strategy.
func New(cfg Config) *Strategy {
	if cfg.Replacement == "" {
		cfg.Replacement = ReplaceMean
	}
	if cfg.Cutoff == 0 {
		cfg.Cutoff = DefaultCutoff
	}
	return &Strategy{cfg: cfg}
}

// Config returns the configuration the strategy was built with.
func (s *Strategy) Config() Config { return s.cfg }

// Fit learns the fill value and the indicator decision. NaN marks a null.
func (s *Strategy) Fit(values []float64) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	var st State
	if len(values) > 0 {
		st.Ratio = float64(len(values)-len(present)) / float64(len(values))
	}
	st.Indicator = s.cfg.ModelMissingValues && st.Ratio > s.cfg.Threshold

	switch s.cfg.Replacement {
	case ReplaceNone:
		st.Fill = math.NaN()
	case ReplaceConstant:
		st.Fill = s.cfg.Constant
	case ReplaceMode:
		if len(present) > 0 {
			st.Fill, _ = stat.Mode(present, nil)
		}
	default:
		if len(present) > 0 {
			st.Fill = stat.Mean(present, nil)
		}
	}

	s.state = st
	s.fitted = true
}

// Fitted reports whether Fit or RestoreState has run.
func (s *Strategy) Fitted() bool { return s.fitted }

// NeedsIndicator reports whether an is_null output column is required.
func (s *Strategy) NeedsIndicator() bool { return s.state.Indicator }

// Fill returns the learned replacement value.
func (s *Strategy) Fill() float64 { return s.state.Fill }

// Impute returns v unchanged unless it is null, in which case it returns the
// learned replacement.
func (s *Strategy) Impute(v float64) float64 {
	if math.IsNaN(v) {
		return s.state.Fill
	}
	return v
}

// Transform imputes nulls and, when required, builds the indicator column.
// The indicator is nil when the strategy decided none is needed.
func (s *Strategy) Transform(values []float64) (filled, indicator []float64) {
	filled = make([]float64, len(values))
	if s.state.Indicator {
		indicator = make([]float64, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) && indicator != nil {
			indicator[i] = 1
		}
		filled[i] = s.Impute(v)
	}
	return filled, indicator
}

// Reverse returns the null mask for decoded rows. A row is null when its
// indicator exceeds the cutoff or when its value is NaN.
func (s *Strategy) Reverse(values, indicator []float64) []bool {
	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = math.IsNaN(v)
		if indicator != nil && indicator[i] > s.cfg.Cutoff {
			mask[i] = true
		}
	}
	return mask
}

// MarshalState returns the fitted state.
func (s *Strategy) MarshalState() State {
	st := s.state
	if math.IsNaN(st.Fill) {
		// JSON cannot carry NaN; ReplaceNone is recovered from the config.
		st.Fill = 0
	}
	return st
}

// RestoreState installs a previously fitted state.
func (s *Strategy) RestoreState(st State) {
	if s.cfg.Replacement == ReplaceNone {
		st.Fill = math.NaN()
	}
	s.state = st
	s.fitted = true
}

// Summary returns the observed minimum and maximum of the non-null values,
// and false when there are none.
func Summary(values []float64) (lo, hi float64, ok bool) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0, 0, false
	}
	return floats.Min(present), floats.Max(present), true
}
