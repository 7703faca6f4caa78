package transformers

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
	"github.com/leapstack-labs/leaprdt/pkg/schema"
)

// Output suffixes shared by several transformers.
const (
	SuffixValue  = "value"
	SuffixIsNull = "is_null"
)

// UnknownCode is the reserved code for categories not seen during fit.
const UnknownCode = -1.0

func notFitted(name string) error {
	return &core.NotFittedError{Component: name}
}

// checkGroup validates the width and row alignment of an output group.
func checkGroup(name string, columns [][]float64, width, rows int) error {
	if len(columns) != width {
		return &core.InvalidDataError{
			Row:    -1,
			Reason: fmt.Sprintf("%s expects %d output columns, got %d", name, width, len(columns)),
		}
	}
	for i, c := range columns {
		if len(c) != rows {
			return &core.InvalidDataError{
				Row:    -1,
				Reason: fmt.Sprintf("%s output column %d has %d rows, expected %d", name, i, len(c), rows),
			}
		}
	}
	return nil
}

// toFloats converts raw values to floats, mapping nulls to NaN. It fails on
// the first value that is neither null nor numeric.
func toFloats(field string, values []any) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if core.IsNull(v) {
			out[i] = math.NaN()
			continue
		}
		f, ok := schema.ToFloat(v)
		if !ok {
			return nil, &core.InvalidDataError{Field: field, Row: i, Value: v, Reason: "not a number"}
		}
		out[i] = f
	}
	return out, nil
}

// nullSuffixes appends the indicator suffix when the strategy needs one.
func nullSuffixes(s *nulls.Strategy, suffixes ...string) []string {
	if s != nil && s.NeedsIndicator() {
		return append(suffixes, SuffixIsNull)
	}
	return suffixes
}

// emit assembles the value column and, when present, the indicator.
func emit(value, indicator []float64) [][]float64 {
	if indicator != nil {
		return [][]float64{value, indicator}
	}
	return [][]float64{value}
}

// clip bounds v to [lo, hi].
func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Float bounds of int64. The upper bound itself is out of range.
const (
	minInt64Float = -(1 << 63)
	maxInt64Float = 1 << 63
)

// roundInt64 rounds v to an int64. It reports false when the rounded value
// is NaN or does not fit.
func roundInt64(v float64) (int64, bool) {
	r := math.Round(v)
	if math.IsNaN(r) || r < minInt64Float || r >= maxInt64Float {
		return 0, false
	}
	return int64(r), true
}

// saturateInt64 rounds v and clamps it to the int64 range. NaN maps to 0.
func saturateInt64(v float64) int64 {
	r := math.Round(v)
	switch {
	case math.IsNaN(r):
		return 0
	case r >= maxInt64Float:
		return math.MaxInt64
	case r < minInt64Float:
		return math.MinInt64
	}
	return int64(r)
}

// addSaturating returns a+b clamped to the int64 range.
func addSaturating(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}
