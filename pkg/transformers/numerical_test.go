package transformers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
)

func TestFloatFormatter_Age(t *testing.T) {
	ff := NewFloatFormatter(FloatFormatterConfig{Nulls: nulls.DefaultConfig(), LearnRounding: true})
	require.NoError(t, ff.Fit(core.Column{Name: "age", Values: []any{int64(25), nil, int64(35)}}))
	assert.Equal(t, []string{SuffixValue, SuffixIsNull}, ff.OutputSuffixes())

	out, err := ff.Transform([]any{int64(25), nil, int64(35)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []float64{25, 30, 35}, out[0])
	assert.Equal(t, []float64{0, 1, 0}, out[1])

	back, err := ff.ReverseTransform(out, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(25), nil, int64(35)}, back)
}

func TestFloatFormatter_NoNullsNoIndicator(t *testing.T) {
	ff := NewFloatFormatter(FloatFormatterConfig{Nulls: nulls.DefaultConfig()})
	require.NoError(t, ff.Fit(core.Column{Name: "x", Values: []any{1.5, 2.5}}))
	assert.Equal(t, []string{SuffixValue}, ff.OutputSuffixes())
}

func TestFloatFormatter_Rounding(t *testing.T) {
	ff := NewFloatFormatter(FloatFormatterConfig{Nulls: nulls.DefaultConfig(), LearnRounding: true})
	require.NoError(t, ff.Fit(core.Column{Name: "price", Values: []any{1.25, 3.5, 10.0}}))

	back, err := ff.ReverseTransform([][]float64{{1.2549, 7.123456}}, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{1.25, 7.12}, back)
}

func TestFloatFormatter_EnforceMinMax(t *testing.T) {
	tests := []struct {
		name    string
		scaling Scaling
	}{
		{"none", ScaleNone},
		{"standard", ScaleStandard},
		{"minmax", ScaleMinMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ff := NewFloatFormatter(FloatFormatterConfig{
				Nulls:         nulls.DefaultConfig(),
				EnforceMinMax: true,
				Scaling:       tt.scaling,
			})
			require.NoError(t, ff.Fit(core.Column{Name: "x", Values: []any{10.0, 20.0, 30.0}}))

			encoded, err := ff.Transform([]any{10.0, 30.0})
			require.NoError(t, err)
			above := encoded[0][1] + 100
			below := encoded[0][0] - 100

			back, err := ff.ReverseTransform([][]float64{{above, below}}, 2)
			require.NoError(t, err)
			assert.InDelta(t, 30.0, back[0], 1e-9)
			assert.InDelta(t, 10.0, back[1], 1e-9)
		})
	}
}

func TestFloatFormatter_Scaling(t *testing.T) {
	ff := NewFloatFormatter(FloatFormatterConfig{Nulls: nulls.DefaultConfig(), Scaling: ScaleMinMax})
	require.NoError(t, ff.Fit(core.Column{Name: "x", Values: []any{0.0, 5.0, 10.0}}))

	out, err := ff.Transform([]any{0.0, 5.0, 10.0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, out[0], 1e-12)

	back, err := ff.ReverseTransform(out, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 5, 10}, toFloatSlice(back), 1e-9)

	bad := NewFloatFormatter(FloatFormatterConfig{Scaling: "log"})
	assert.Error(t, bad.Fit(core.Column{Name: "x", Values: []any{1.0}}))
}

func TestFloatFormatter_InvalidData(t *testing.T) {
	ff := NewFloatFormatter(FloatFormatterConfig{})
	err := ff.Fit(core.Column{Name: "x", Values: []any{1.0, "abc"}})
	require.ErrorIs(t, err, core.ErrInvalidData)

	var invalid *core.InvalidDataError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "x", invalid.Field)
	assert.Equal(t, 1, invalid.Row)
}

func TestFloatFormatter_NaNDecodesToNull(t *testing.T) {
	ff := NewFloatFormatter(FloatFormatterConfig{Nulls: nulls.DefaultConfig()})
	require.NoError(t, ff.Fit(core.Column{Name: "x", Values: []any{1.0, 2.0}}))

	back, err := ff.ReverseTransform([][]float64{{math.NaN(), 1}}, 2)
	require.NoError(t, err)
	assert.Nil(t, back[0])
}

func TestLearnDecimals(t *testing.T) {
	tests := []struct {
		values []float64
		want   int
	}{
		{[]float64{1, 2, 3}, 0},
		{[]float64{1.5, 2.25}, 2},
		{[]float64{math.NaN(), 0.125}, 3},
		{[]float64{math.NaN()}, -1},
		{[]float64{1.0 / 3}, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, learnDecimals(tt.values), "%v", tt.values)
	}
}

func toFloatSlice(values []any) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.(float64)
	}
	return out
}

func TestFloatFormatter_IntegerOutOfRange(t *testing.T) {
	ff := NewFloatFormatter(FloatFormatterConfig{Nulls: nulls.DefaultConfig()})
	require.NoError(t, ff.Fit(core.Column{Name: "n", Values: []any{int64(1), int64(2), int64(3)}}))

	back, err := ff.ReverseTransform([][]float64{{1e30, -1e30, 5, math.Inf(1), math.Inf(-1)}}, 5)
	require.NoError(t, err)
	assert.Equal(t, []any{1e30, -1e30, int64(5), math.Inf(1), math.Inf(-1)}, back)
}

func TestRoundInt64(t *testing.T) {
	tests := []struct {
		in     float64
		want   int64
		wantOK bool
	}{
		{2.5, 3, true},
		{-2.4, -2, true},
		{-9223372036854775808, math.MinInt64, true},
		{9223372036854775808, 0, false},
		{-1e30, 0, false},
		{math.Inf(1), 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		got, ok := roundInt64(tt.in)
		assert.Equal(t, tt.wantOK, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestSaturatingConversions(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), saturateInt64(1e30))
	assert.Equal(t, int64(math.MinInt64), saturateInt64(math.Inf(-1)))
	assert.Equal(t, int64(0), saturateInt64(math.NaN()))
	assert.Equal(t, int64(-7), saturateInt64(-7.2))

	assert.Equal(t, int64(math.MaxInt64), addSaturating(math.MaxInt64-1, 5))
	assert.Equal(t, int64(math.MinInt64), addSaturating(-10, math.MinInt64))
	assert.Equal(t, int64(3), addSaturating(5, -2))
}
