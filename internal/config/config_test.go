package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/transformers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformSettings_Options(t *testing.T) {
	tests := []struct {
		name      string
		settings  TransformSettings
		check     func(t *testing.T, opts transformers.Options)
		errSubstr string
	}{
		{
			name:     "empty uses defaults",
			settings: TransformSettings{},
			check: func(t *testing.T, opts transformers.Options) {
				def := transformers.DefaultOptions()
				assert.Equal(t, def.Scaling, opts.Scaling)
				assert.Equal(t, def.Order, opts.Order)
				assert.Equal(t, def.DatetimeUnit, opts.DatetimeUnit)
				assert.InDelta(t, 0.5, opts.Nulls.Cutoff, 1e-12)
			},
		},
		{
			name: "all set",
			settings: TransformSettings{
				Seed:        7,
				Nulls:       NullsConfig{Threshold: 0.2, IndicatorCutoff: 0.7},
				Numerical:   NumericalConfig{EnforceMinMax: true, Scaling: "MinMax"},
				Categorical: CategoricalConfig{Order: "alphabetical", AddNoise: true},
				Datetime:    DatetimeConfig{Unit: "24h"},
			},
			check: func(t *testing.T, opts transformers.Options) {
				assert.Equal(t, transformers.ScaleMinMax, opts.Scaling)
				assert.Equal(t, transformers.OrderAlphabetical, opts.Order)
				assert.True(t, opts.EnforceMinMax)
				assert.True(t, opts.AddNoise)
				assert.Equal(t, uint64(7), opts.Seed)
				assert.Equal(t, 24*time.Hour, opts.DatetimeUnit)
				assert.InDelta(t, 0.2, opts.Nulls.Threshold, 1e-12)
				assert.InDelta(t, 0.7, opts.Nulls.Cutoff, 1e-12)
			},
		},
		{
			name:      "bad scaling",
			settings:  TransformSettings{Numerical: NumericalConfig{Scaling: "log"}},
			errSubstr: "unknown numerical scaling",
		},
		{
			name:      "bad order",
			settings:  TransformSettings{Categorical: CategoricalConfig{Order: "random"}},
			errSubstr: "unknown categorical order",
		},
		{
			name:      "bad unit",
			settings:  TransformSettings{Datetime: DatetimeConfig{Unit: "fortnight"}},
			errSubstr: "invalid datetime unit",
		},
		{
			name:      "negative unit",
			settings:  TransformSettings{Datetime: DatetimeConfig{Unit: "-1s"}},
			errSubstr: "must be positive",
		},
		{
			name:      "threshold out of range",
			settings:  TransformSettings{Nulls: NullsConfig{Threshold: 1.5}},
			errSubstr: "null threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.settings.Options()
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestTransformSettings_Defaults(t *testing.T) {
	s := TransformSettings{Transformers: map[string]string{
		"categorical": "OneHotEncoder",
		"bool":        "LabelEncoder",
	}}
	got, err := s.Defaults()
	require.NoError(t, err)
	assert.Equal(t, map[core.SDType]string{
		core.Categorical: "OneHotEncoder",
		core.Boolean:     "LabelEncoder",
	}, got)

	s.Transformers["geo"] = "X"
	_, err = s.Defaults()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sdtype")
}

func TestTransformSettings_FieldConfig(t *testing.T) {
	s := TransformSettings{Fields: map[string]FieldEntry{
		"zip":   {SDType: "categorical"},
		"color": {Transformer: "LabelEncoder"},
	}}
	fc, err := s.FieldConfig()
	require.NoError(t, err)
	assert.Equal(t, map[string]core.SDType{"zip": core.Categorical}, fc.SDTypes)
	assert.Equal(t, map[string]string{"color": "LabelEncoder"}, fc.Transformers)

	s.Fields["bad"] = FieldEntry{SDType: "nope"}
	_, err = s.FieldConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fields.bad")
}

func TestApplyDefaults(t *testing.T) {
	ApplyDefaults(nil)

	var s TransformSettings
	ApplyDefaults(&s)
	assert.Positive(t, s.Workers)
	assert.Equal(t, DefaultScaling, s.Numerical.Scaling)
	assert.Equal(t, DefaultOrder, s.Categorical.Order)
	assert.Equal(t, DefaultDatetimeUnit, s.Datetime.Unit)
	assert.InDelta(t, DefaultIndicatorCutoff, s.Nulls.IndicatorCutoff, 1e-12)

	s = TransformSettings{Workers: 3, Numerical: NumericalConfig{Scaling: "standard"}}
	ApplyDefaults(&s)
	assert.Equal(t, 3, s.Workers)
	assert.Equal(t, "standard", s.Numerical.Scaling)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Nil(t, s)

	content := `workers: 2
nulls:
  threshold: 0.1
categorical:
  order: appearance
transformers:
  categorical: LabelEncoder
fields:
  zip:
    sdtype: categorical
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileNameAlt), []byte(content), 0o644))

	s, err = LoadFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Workers)
	assert.InDelta(t, 0.1, s.Nulls.Threshold, 1e-12)
	assert.Equal(t, "appearance", s.Categorical.Order)
	assert.Equal(t, "LabelEncoder", s.Transformers["categorical"])
	assert.Equal(t, "categorical", s.Fields["zip"].SDType)
	assert.Equal(t, DefaultScaling, s.Numerical.Scaling)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("workers: 1\n"), 0o644))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, filepath.Join(root, ConfigFileName), FindConfigFile(root))
	assert.Empty(t, FindConfigFile(nested))
}
