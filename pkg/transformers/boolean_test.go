package transformers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
)

func TestBinaryEncoder(t *testing.T) {
	cfg := nulls.DefaultConfig()
	cfg.Replacement = nulls.ReplaceMode
	enc := NewBinaryEncoder(BinaryEncoderConfig{Nulls: cfg})
	require.NoError(t, enc.Fit(core.Column{Name: "flag", Values: []any{true, false, nil, true}}))
	assert.Equal(t, []string{SuffixValue, SuffixIsNull}, enc.OutputSuffixes())

	out, err := enc.Transform([]any{true, false, nil, "TRUE"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1, 1}, out[0], "nulls take the mode")
	assert.Equal(t, []float64{0, 0, 1, 0}, out[1])

	back, err := enc.ReverseTransform(out, 4)
	require.NoError(t, err)
	assert.Equal(t, []any{true, false, nil, true}, back)
}

func TestBinaryEncoder_ReverseClips(t *testing.T) {
	enc := NewBinaryEncoder(BinaryEncoderConfig{Nulls: nulls.DefaultConfig()})
	require.NoError(t, enc.Fit(core.Column{Name: "flag", Values: []any{true, false}}))

	back, err := enc.ReverseTransform([][]float64{{1.9, -0.7, 1.01, 0.32, 0.5}}, 5)
	require.NoError(t, err)
	assert.Equal(t, []any{true, false, true, false, false}, back)
}

func TestBinaryEncoder_InvalidData(t *testing.T) {
	enc := NewBinaryEncoder(BinaryEncoderConfig{})
	err := enc.Fit(core.Column{Name: "flag", Values: []any{true, "maybe"}})
	assert.ErrorIs(t, err, core.ErrInvalidData)
}
