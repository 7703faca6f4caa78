package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Allocate(t *testing.T) {
	r := NewResolver()

	names, err := r.Allocate("age", []string{"value", "is_null"})
	require.NoError(t, err)
	assert.Equal(t, []string{"age.value", "age.is_null"}, names)

	names, err = r.Allocate("color", []string{"value"})
	require.NoError(t, err)
	assert.Equal(t, []string{"color.value"}, names)

	assert.Equal(t, 3, r.Count())
	assert.Equal(t, []string{"age", "color"}, r.Fields())
	assert.Equal(t, []string{"age.value", "age.is_null", "color.value"}, r.Names())
}

func TestResolver_AllocateCollisions(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *Resolver)
		field    string
		suffixes []string
		want     []string
	}{
		{
			name:     "duplicate suffixes within a field",
			field:    "x",
			suffixes: []string{"value", "value", "value"},
			want:     []string{"x.value", "x.value_1", "x.value_2"},
		},
		{
			name: "empty suffix collides with an earlier output",
			setup: func(r *Resolver) {
				_, _ = r.Allocate("a", []string{"b"})
			},
			field:    "a.b",
			suffixes: []string{""},
			want:     []string{"a.b_1"},
		},
		{
			name: "ordinal already taken",
			setup: func(r *Resolver) {
				_, _ = r.Allocate("p", []string{"q", "q_1"})
			},
			field:    "p.q",
			suffixes: []string{""},
			want:     []string{"p.q_2"},
		},
		{
			name:     "zero outputs",
			field:    "id",
			suffixes: nil,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			if tt.setup != nil {
				tt.setup(r)
			}
			got, err := r.Allocate(tt.field, tt.suffixes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_AllocateTwice(t *testing.T) {
	r := NewResolver()
	_, err := r.Allocate("a", []string{"value"})
	require.NoError(t, err)
	_, err = r.Allocate("a", []string{"value"})
	assert.Error(t, err)
}

func TestResolver_Deterministic(t *testing.T) {
	build := func() []string {
		r := NewResolver()
		_, _ = r.Allocate("x", []string{"value", "value"})
		_, _ = r.Allocate("x.value", []string{""})
		return r.Names()
	}
	assert.Equal(t, build(), build())
}

func TestResolver_OwnerAndOutputs(t *testing.T) {
	r := NewResolver()
	_, _ = r.Allocate("age", []string{"value", "is_null"})

	owner, ok := r.Owner("age.is_null")
	require.True(t, ok)
	assert.Equal(t, "age", owner)

	_, ok = r.Owner("nope")
	assert.False(t, ok)

	outputs, ok := r.Outputs("age")
	require.True(t, ok)
	outputs[0] = "mutated"
	again, _ := r.Outputs("age")
	assert.Equal(t, "age.value", again[0], "Outputs returns a copy")
}

func TestResolver_Check(t *testing.T) {
	r := NewResolver()
	_, _ = r.Allocate("age", []string{"value", "is_null"})
	_, _ = r.Allocate("color", []string{"value"})

	missing, unknown := r.Check([]string{"color.value", "age.value", "extra"})
	assert.Equal(t, []string{"age.is_null"}, missing)
	assert.Equal(t, []string{"extra"}, unknown)

	missing, unknown = r.Check([]string{"color.value", "age.is_null", "age.value"})
	assert.Empty(t, missing)
	assert.Empty(t, unknown)
}
