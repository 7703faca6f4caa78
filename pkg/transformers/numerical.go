package transformers

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
	"github.com/leapstack-labs/leaprdt/pkg/schema"
)

// Scaling selects how FloatFormatter rescales values.
type Scaling string

// Supported scalings.
const (
	ScaleNone     Scaling = "none"
	ScaleStandard Scaling = "standard"
	ScaleMinMax   Scaling = "minmax"
)

// maxDecimals bounds the rounding scheme learned from the data.
const maxDecimals = 15

// FloatFormatterConfig configures a FloatFormatter.
type FloatFormatterConfig struct {
	Nulls nulls.Config `json:"nulls"`
	// EnforceMinMax clips reversed values to the range seen during fit.
	EnforceMinMax bool `json:"enforce_min_max"`
	// LearnRounding rounds reversed values to the decimals seen during fit.
	LearnRounding bool    `json:"learn_rounding"`
	Scaling       Scaling `json:"scaling"`
}

type floatState struct {
	Config  FloatFormatterConfig `json:"config"`
	Min     float64              `json:"min"`
	Max     float64              `json:"max"`
	Integer bool                 `json:"integer"`
	// Decimals is -1 when no rounding scheme applies.
	Decimals int         `json:"decimals"`
	Shift    float64     `json:"shift"`
	Scale    float64     `json:"scale"`
	Nulls    nulls.State `json:"null_state"`
}

// FloatFormatter encodes numerical values as a single float column.
type FloatFormatter struct {
	cfg    FloatFormatterConfig
	state  floatState
	nulls  *nulls.Strategy
	fitted bool
}

// NewFloatFormatter creates an unfitted FloatFormatter.
func NewFloatFormatter(cfg FloatFormatterConfig) *FloatFormatter {
	if cfg.Scaling == "" {
		cfg.Scaling = ScaleNone
	}
	return &FloatFormatter{cfg: cfg}
}

func (t *FloatFormatter) Name() string { return "FloatFormatter" }

func (t *FloatFormatter) InputSDTypes() []core.SDType { return []core.SDType{core.Numerical} }

func (t *FloatFormatter) IsFitted() bool { return t.fitted }

func (t *FloatFormatter) OutputSuffixes() []string {
	if !t.fitted {
		return nil
	}
	return nullSuffixes(t.nulls, SuffixValue)
}

// Fit learns the range, integer-ness, rounding scheme and scaling of the column.
func (t *FloatFormatter) Fit(col core.Column) error {
	switch t.cfg.Scaling {
	case ScaleNone, ScaleStandard, ScaleMinMax:
	default:
		return fmt.Errorf("unknown scaling %q", t.cfg.Scaling)
	}

	values, err := toFloats(col.Name, col.Values)
	if err != nil {
		return err
	}

	strategy := nulls.New(t.cfg.Nulls)
	strategy.Fit(values)

	st := floatState{Config: t.cfg, Decimals: -1, Scale: 1}
	st.Min, st.Max, _ = nulls.Summary(values)
	st.Integer = isIntegerColumn(col.Values)
	if t.cfg.LearnRounding && !st.Integer {
		st.Decimals = learnDecimals(values)
	}

	filled, _ := strategy.Transform(values)
	switch t.cfg.Scaling {
	case ScaleStandard:
		present := withoutNaN(filled)
		if len(present) > 1 {
			mean, std := stat.MeanStdDev(present, nil)
			st.Shift = mean
			if std > 0 {
				st.Scale = std
			}
		} else if len(present) == 1 {
			st.Shift = present[0]
		}
	case ScaleMinMax:
		st.Shift = st.Min
		if st.Max > st.Min {
			st.Scale = st.Max - st.Min
		}
	}
	st.Nulls = strategy.MarshalState()

	t.state = st
	t.nulls = strategy
	t.fitted = true
	return nil
}

// Transform emits the imputed, scaled values and the optional null indicator.
func (t *FloatFormatter) Transform(values []any) ([][]float64, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	raw, err := toFloats("", values)
	if err != nil {
		return nil, err
	}
	filled, indicator := t.nulls.Transform(raw)
	for i, v := range filled {
		filled[i] = (v - t.state.Shift) / t.state.Scale
	}
	return emit(filled, indicator), nil
}

// ReverseTransform clips (when enabled), unscales, rounds and restores nulls.
func (t *FloatFormatter) ReverseTransform(columns [][]float64, rows int) ([]any, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	if err := checkGroup(t.Name(), columns, len(t.OutputSuffixes()), rows); err != nil {
		return nil, err
	}

	var indicator []float64
	if t.nulls.NeedsIndicator() {
		indicator = columns[1]
	}
	mask := t.nulls.Reverse(columns[0], indicator)

	lo := (t.state.Min - t.state.Shift) / t.state.Scale
	hi := (t.state.Max - t.state.Shift) / t.state.Scale

	out := make([]any, rows)
	for i, v := range columns[0] {
		if mask[i] {
			continue
		}
		if t.cfg.EnforceMinMax {
			v = clip(v, lo, hi)
		}
		v = v*t.state.Scale + t.state.Shift
		switch {
		case t.state.Integer:
			// Values beyond the int64 range pass through as floats.
			if n, ok := roundInt64(v); ok {
				out[i] = n
			} else {
				out[i] = v
			}
		case t.state.Decimals >= 0:
			out[i] = roundTo(v, t.state.Decimals)
		default:
			out[i] = v
		}
	}
	return out, nil
}

// MarshalState implements core.Snapshotter.
func (t *FloatFormatter) MarshalState() (json.RawMessage, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	return json.Marshal(t.state)
}

// UnmarshalState implements core.Snapshotter.
func (t *FloatFormatter) UnmarshalState(data json.RawMessage) error {
	var st floatState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode %s state: %w", t.Name(), err)
	}
	if st.Scale == 0 {
		st.Scale = 1
	}
	strategy := nulls.New(st.Config.Nulls)
	strategy.RestoreState(st.Nulls)

	t.cfg = st.Config
	t.state = st
	t.nulls = strategy
	t.fitted = true
	return nil
}

// isIntegerColumn reports whether every non-null value is an integer type or
// an integer literal.
func isIntegerColumn(values []any) bool {
	seen := false
	for _, v := range values {
		if core.IsNull(v) {
			continue
		}
		seen = true
		switch x := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		case string:
			if _, ok := schema.ParseInt(x); !ok {
				return false
			}
		default:
			return false
		}
	}
	return seen
}

// learnDecimals returns the smallest number of decimals that reproduces every
// value exactly, or -1 if none up to maxDecimals does.
func learnDecimals(values []float64) int {
	present := withoutNaN(values)
	if len(present) == 0 {
		return -1
	}
	for d := 0; d <= maxDecimals; d++ {
		exact := true
		for _, v := range present {
			if roundTo(v, d) != v {
				exact = false
				break
			}
		}
		if exact {
			return d
		}
	}
	return -1
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func withoutNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
