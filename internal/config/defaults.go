package config

import "runtime"

// Default configuration values.
const (
	DefaultStateFile       = ".leaprdt/state.db"
	DefaultOutput          = "table"
	DefaultScaling         = "none"
	DefaultOrder           = "frequency"
	DefaultDatetimeUnit    = "1ns"
	DefaultIndicatorCutoff = 0.5
)

// DefaultWorkers is the fit/transform parallelism when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ApplyDefaults fills unset values in s.
func ApplyDefaults(s *TransformSettings) {
	if s == nil {
		return
	}
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers()
	}
	if s.Nulls.IndicatorCutoff == 0 {
		s.Nulls.IndicatorCutoff = DefaultIndicatorCutoff
	}
	if s.Numerical.Scaling == "" {
		s.Numerical.Scaling = DefaultScaling
	}
	if s.Categorical.Order == "" {
		s.Categorical.Order = DefaultOrder
	}
	if s.Datetime.Unit == "" {
		s.Datetime.Unit = DefaultDatetimeUnit
	}
}
