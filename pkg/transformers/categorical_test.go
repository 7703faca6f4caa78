package transformers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

func colors() core.Column {
	return core.Column{Name: "color", Values: []any{
		"red", "blue", "red", "green", "red", "blue", "green", "red",
	}}
}

func TestFrequencyEncoder_Intervals(t *testing.T) {
	enc := NewFrequencyEncoder(FrequencyEncoderConfig{})
	require.NoError(t, enc.Fit(colors()))

	ivs := enc.Intervals()
	require.Len(t, ivs, 3)
	assert.Equal(t, "red", ivs[0].Value)
	assert.InDelta(t, 0.0, ivs[0].Start, 1e-12)
	assert.InDelta(t, 0.5, ivs[0].End, 1e-12)
	assert.Equal(t, "blue", ivs[1].Value)
	assert.InDelta(t, 0.75, ivs[1].End, 1e-12)
	assert.Equal(t, "green", ivs[2].Value)
	assert.InDelta(t, 1.0, ivs[2].End, 1e-12)

	out, err := enc.Transform([]any{"red", "blue", "green"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDeltaSlice(t, []float64{0.25, 0.625, 0.875}, out[0], 1e-12)
}

func TestFrequencyEncoder_Reverse(t *testing.T) {
	enc := NewFrequencyEncoder(FrequencyEncoderConfig{})
	require.NoError(t, enc.Fit(colors()))

	tests := []struct {
		name string
		in   float64
		want any
	}{
		{"inside red", 0.1, "red"},
		{"interval start", 0.5, "blue"},
		{"inside green", 0.95, "green"},
		{"above range", 1.3, "green"},
		{"just below zero", -0.2, "red"},
		{"unknown code", UnknownCode, core.Unknown},
		{"closer to unknown", -0.6, core.Unknown},
		{"tie goes to lower interval", -0.5, core.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.ReverseTransform([][]float64{{tt.in}}, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestFrequencyEncoder_UnseenAndNull(t *testing.T) {
	enc := NewFrequencyEncoder(FrequencyEncoderConfig{})
	require.NoError(t, enc.Fit(core.Column{Name: "c", Values: []any{"a", nil, "a", "b"}}))

	out, err := enc.Transform([]any{"zzz", nil})
	require.NoError(t, err)
	assert.Equal(t, UnknownCode, out[0][0])

	back, err := enc.ReverseTransform(out, 2)
	require.NoError(t, err)
	assert.True(t, core.IsUnknown(back[0]))
	assert.Nil(t, back[1])
}

func TestFrequencyEncoder_Noise(t *testing.T) {
	cfg := FrequencyEncoderConfig{AddNoise: true, Seed: 7}
	a := NewFrequencyEncoder(cfg)
	b := NewFrequencyEncoder(cfg)
	require.NoError(t, a.Fit(colors()))
	require.NoError(t, b.Fit(colors()))

	values := colors().Values
	outA, err := a.Transform(values)
	require.NoError(t, err)
	outB, err := b.Transform(values)
	require.NoError(t, err)
	assert.Equal(t, outA, outB, "seeded noise is reproducible")

	back, err := a.ReverseTransform(outA, len(values))
	require.NoError(t, err)
	assert.Equal(t, values, back)
}

func TestOneHotEncoder(t *testing.T) {
	enc := NewOneHotEncoder(OneHotEncoderConfig{})
	require.NoError(t, enc.Fit(colors()))
	assert.Equal(t, []string{"value0", "value1", "value2"}, enc.OutputSuffixes())

	out, err := enc.Transform([]any{"blue", "purple"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []float64{0, 0}, out[0])
	assert.Equal(t, []float64{1, 0}, out[1])
	assert.Equal(t, []float64{0, 0}, out[2])

	back, err := enc.ReverseTransform([][]float64{
		{0.2, 0.5, 0, -1},
		{0.7, 0.5, 0, -2},
		{0.1, 0.1, 0, 0},
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, "blue", back[0])
	assert.Equal(t, "red", back[1], "ties go to the lowest index")
	assert.True(t, core.IsUnknown(back[2]))
	assert.True(t, core.IsUnknown(back[3]))
}

func TestLabelEncoder(t *testing.T) {
	enc := NewLabelEncoder(LabelEncoderConfig{Order: OrderAlphabetical})
	require.NoError(t, enc.Fit(colors()))

	out, err := enc.Transform([]any{"blue", "green", "red", "pink"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, UnknownCode}, out[0])

	back, err := enc.ReverseTransform([][]float64{{0.4, 0.5, 1.6, 7, -0.7, -3}}, 6)
	require.NoError(t, err)
	assert.Equal(t, "blue", back[0])
	assert.Equal(t, "blue", back[1], "halfway rounds down")
	assert.Equal(t, "red", back[2])
	assert.Equal(t, "red", back[3], "clipped to the last code")
	assert.True(t, core.IsUnknown(back[4]))
	assert.True(t, core.IsUnknown(back[5]))
}

func TestCategoryOrders(t *testing.T) {
	values := []any{"b", "c", "a", "c"}
	tests := []struct {
		order Order
		want  []any
	}{
		{OrderFrequency, []any{"c", "b", "a"}},
		{OrderAppearance, []any{"b", "c", "a"}},
		{OrderAlphabetical, []any{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			cats := learnCategories(values, tt.order)
			got := make([]any, len(cats))
			for i, c := range cats {
				got[i] = c.Value
			}
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Error(t, Order("random").Validate())
}

func TestCategoryKey_DistinguishesTypes(t *testing.T) {
	assert.NotEqual(t, categoryKey(int64(1)), categoryKey("1"))
	assert.Equal(t, nullKey, categoryKey(nil))
}
