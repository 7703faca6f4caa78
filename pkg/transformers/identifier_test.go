package transformers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
)

func TestAnonymizedIdentifier_NoNulls(t *testing.T) {
	enc := NewAnonymizedIdentifier(AnonymizedIdentifierConfig{Nulls: nulls.DefaultConfig(), Prefix: "id-"})
	require.NoError(t, enc.Fit(core.Column{Name: "user_id", Values: []any{"u1", "u2", "u3"}}))
	assert.Empty(t, enc.OutputSuffixes())

	out, err := enc.Transform([]any{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Empty(t, out)

	back, err := enc.ReverseTransform(out, 3)
	require.NoError(t, err)
	require.Len(t, back, 3)
	for _, v := range back {
		s, ok := v.(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(s, "id-"))
	}
	assert.NotEqual(t, back[0], back[1])

	again, err := enc.ReverseTransform(out, 3)
	require.NoError(t, err)
	assert.Equal(t, back, again, "generated identifiers are deterministic")
}

func TestAnonymizedIdentifier_Nulls(t *testing.T) {
	enc := NewAnonymizedIdentifier(AnonymizedIdentifierConfig{Nulls: nulls.DefaultConfig()})
	require.NoError(t, enc.Fit(core.Column{Name: "email", Values: []any{"a@x", nil}}))
	assert.Equal(t, []string{SuffixIsNull}, enc.OutputSuffixes())

	out, err := enc.Transform([]any{"a@x", nil})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1}}, out)

	back, err := enc.ReverseTransform(out, 2)
	require.NoError(t, err)
	assert.NotNil(t, back[0])
	assert.Nil(t, back[1])
}
