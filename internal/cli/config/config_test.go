package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaprdt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "verbose: false\n")
	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, filepath.Dir(cfgPath), cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), DefaultStateFile), cfg.StatePath)
	assert.Equal(t, OutputTable, cfg.OutputFormat)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, "none", cfg.Numerical.Scaling)
	assert.Equal(t, "frequency", cfg.Categorical.Order)
	assert.Equal(t, "1ns", cfg.Datetime.Unit)
	assert.InDelta(t, 0.5, cfg.Nulls.IndicatorCutoff, 1e-12)
}

func TestLoadConfig_Fixture(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, `state_path: state/rdt.db
output: YAML
workers: 3
seed: 42
nulls:
  threshold: 0.25
numerical:
  enforce_min_max: true
  scaling: standard
categorical:
  order: alphabetical
  add_noise: true
datetime:
  unit: 1s
transformers:
  categorical: OneHotEncoder
fields:
  zip:
    sdtype: categorical
    transformer: LabelEncoder
`)
	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "state", "rdt.db"), cfg.StatePath)
	assert.Equal(t, OutputYAML, cfg.OutputFormat)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.InDelta(t, 0.25, cfg.Nulls.Threshold, 1e-12)
	assert.True(t, cfg.Numerical.EnforceMinMax)
	assert.Equal(t, "standard", cfg.Numerical.Scaling)
	assert.Equal(t, "alphabetical", cfg.Categorical.Order)
	assert.True(t, cfg.Categorical.AddNoise)
	assert.Equal(t, "1s", cfg.Datetime.Unit)
	assert.Equal(t, map[string]string{"categorical": "OneHotEncoder"}, cfg.Transformers)
	assert.Equal(t, FieldEntry{SDType: "categorical", Transformer: "LabelEncoder"}, cfg.Fields["zip"])

	hc, err := cfg.Settings().HyperConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, hc.Workers)
	assert.True(t, hc.Options.EnforceMinMax)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"output format", "output: xml\n", "invalid output format"},
		{"scaling", "numerical:\n  scaling: log\n", "unknown numerical scaling"},
		{"default transformer", "transformers:\n  numerical: Nope\n", "unknown transformer"},
		{"field transformer", "fields:\n  a:\n    transformer: Nope\n", "fields.a"},
		{"field sdtype", "fields:\n  a:\n    sdtype: geo\n", "unknown sdtype"},
		{"negative workers", "workers: -1\n", "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "numerical:\n  scaling: minmax\n")
	t.Setenv("LEAPRDT_NUMERICAL_SCALING", "standard")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("scaling", "", "numerical scaling")
	require.NoError(t, flags.Set("scaling", "none"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Numerical.Scaling, "flag value should override config file and env var")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "workers: 2\nnumerical:\n  scaling: minmax\n")
	t.Setenv("LEAPRDT_WORKERS", "5")
	t.Setenv("LEAPRDT_NUMERICAL_SCALING", "standard")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, "standard", cfg.Numerical.Scaling)
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "categorical:\n  order: appearance\n")
	t.Setenv("LEAPRDT_CATEGORICAL_ORDER", "alphabetical")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("order", "", "category order")

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "alphabetical", cfg.Categorical.Order, "env var should be used when flag is not set")
}

func TestLoadConfig_StateFlag(t *testing.T) {
	ResetConfig()

	cfgPath := writeConfig(t, "state_path: from_file.db\n")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "state path")

	require.NoError(t, flags.Set("state", ":memory:"))
	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)

	ResetConfig()
	flags = pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "state path")
	require.NoError(t, flags.Set("state", "rel.db"))
	cfg, err = LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "rel.db"), cfg.StatePath)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"LEAPRDT_STATE_PATH":                "state_path",
		"LEAPRDT_NULLS_INDICATOR_CUTOFF":    "nulls.indicator_cutoff",
		"LEAPRDT_NUMERICAL_ENFORCE_MIN_MAX": "numerical.enforce_min_max",
		"LEAPRDT_DATETIME_UNIT":             "datetime.unit",
		"LEAPRDT_VERBOSE":                   "verbose",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{StatePath: "x.db", OutputFormat: OutputJSON}
	assert.NoError(t, cfg.Validate())

	cfg.StatePath = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state_path is required")
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))
}
