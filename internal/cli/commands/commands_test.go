package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprdt/internal/cli/config"
	"github.com/leapstack-labs/leaprdt/internal/cli/testutil"
	"github.com/leapstack-labs/leaprdt/internal/state"
)

type fixture struct {
	dir  string
	data string
	cfg  *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := testutil.SetupTestProject(t, "")
	return &fixture{
		dir:  dir,
		data: filepath.Join(dir, "people.csv"),
		cfg: &config.Config{
			StatePath:    filepath.Join(dir, ".leaprdt", "state.db"),
			OutputFormat: config.OutputTable,
			Workers:      2,
		},
	}
}

func (f *fixture) run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return testutil.ExecuteCommand(config.WithConfig(context.Background(), f.cfg), cmd, args...)
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewDetectCommand(), "detect <data.csv>", nil},
		{NewFitCommand(), "fit <data.csv>", []string{"name", "scaling", "order", "enforce-min-max", "add-noise", "null-threshold", "datetime-unit", "seed"}},
		{NewTransformCommand(), "transform <data.csv>", []string{"name", "out"}},
		{NewReverseCommand(), "reverse <numeric.csv>", []string{"name", "out"}},
		{NewConfigCommand(), "config", []string{"name"}},
		{NewSnapshotsCommand(), "snapshots", []string{"delete"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestDetectCommand(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, NewDetectCommand(), f.data)
	require.NoError(t, err)
	assert.Contains(t, out, "FrequencyEncoder")
	assert.Contains(t, out, "FloatFormatter")
	assert.Contains(t, out, "BinaryEncoder")
	assert.Contains(t, out, "(4 fields)")
	testutil.AssertNoANSI(t, out)

	f.cfg.OutputFormat = config.OutputJSON
	out, err = f.run(t, NewDetectCommand(), f.data)
	require.NoError(t, err)

	var fields []detectedField
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	require.Len(t, fields, 4)
	assert.Equal(t, detectedField{Name: "age", SDType: "numerical", SubType: "integer", Nullable: true, Transformer: "FloatFormatter"}, fields[1])
	assert.Equal(t, "boolean", fields[3].SDType)
}

func TestDetectCommand_FieldOverrides(t *testing.T) {
	f := newFixture(t)
	f.cfg.OutputFormat = config.OutputJSON
	f.cfg.Fields = map[string]config.FieldEntry{"color": {Transformer: "OneHotEncoder"}}

	out, err := f.run(t, NewDetectCommand(), f.data)
	require.NoError(t, err)

	var fields []detectedField
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	assert.Equal(t, "OneHotEncoder", fields[2].Transformer)
}

func TestDetectCommand_MissingFile(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, NewDetectCommand(), filepath.Join(f.dir, "nope.csv"))
	require.Error(t, err)
}

func TestRoundTripCommands(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, NewFitCommand(), f.data, "--name", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "Fitted 4 fields into 6 columns from 4 rows")
	assert.Contains(t, out, "Saved snapshot people")

	encoded := filepath.Join(f.dir, "people.num.csv")
	_, err = f.run(t, NewTransformCommand(), f.data, "--name", "people", "-o", encoded)
	require.NoError(t, err)

	raw, err := os.ReadFile(encoded)
	require.NoError(t, err)
	header := strings.SplitN(string(raw), "\n", 2)[0]
	assert.Equal(t, "id.value,age.value,age.is_null,color.value,active.value,active.is_null", header)

	decoded := filepath.Join(f.dir, "people.out.csv")
	_, err = f.run(t, NewReverseCommand(), encoded, "--name", "people", "-o", decoded)
	require.NoError(t, err)

	raw, err = os.ReadFile(decoded)
	require.NoError(t, err)
	assert.Equal(t, testutil.PeopleCSV, string(raw))
}

func TestTransformCommand_Stdout(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, NewFitCommand(), f.data, "--name", "people")
	require.NoError(t, err)

	out, err := f.run(t, NewTransformCommand(), f.data, "--name", "people")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 5)
}

func TestCommands_Errors(t *testing.T) {
	f := newFixture(t)

	t.Run("fit requires name", func(t *testing.T) {
		_, err := f.run(t, NewFitCommand(), f.data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--name is required")
	})

	t.Run("transform unknown snapshot", func(t *testing.T) {
		_, err := f.run(t, NewTransformCommand(), f.data, "--name", "ghost")
		require.ErrorIs(t, err, state.ErrSnapshotNotFound)
	})

	t.Run("reverse unknown snapshot", func(t *testing.T) {
		_, err := f.run(t, NewReverseCommand(), f.data, "--name", "ghost")
		require.ErrorIs(t, err, state.ErrSnapshotNotFound)
	})

	t.Run("transform with extra column", func(t *testing.T) {
		_, err := f.run(t, NewFitCommand(), f.data, "--name", "people")
		require.NoError(t, err)

		extra := filepath.Join(f.dir, "extra.csv")
		testutil.WriteFile(t, extra, "id,age,color,active,zip\nu1,31,red,true,123\n")
		_, err = f.run(t, NewTransformCommand(), extra, "--name", "people")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "transform failed")
	})

	t.Run("snapshots delete unknown", func(t *testing.T) {
		_, err := f.run(t, NewSnapshotsCommand(), "--delete", "ghost")
		require.ErrorIs(t, err, state.ErrSnapshotNotFound)
	})
}

func TestConfigCommand(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, NewFitCommand(), f.data, "--name", "people")
	require.NoError(t, err)

	out, err := f.run(t, NewConfigCommand(), "--name", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "age.value, age.is_null")
	assert.Contains(t, out, "FrequencyEncoder")

	f.cfg.OutputFormat = config.OutputYAML
	out, err = f.run(t, NewConfigCommand(), "--name", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "field: color")
	assert.Contains(t, out, "transformer: FrequencyEncoder")

	f.cfg.OutputFormat = config.OutputJSON
	out, err = f.run(t, NewConfigCommand(), "--name", "people")
	require.NoError(t, err)
	var nodes []fieldNode
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 4)
	assert.Equal(t, []string{"active.value", "active.is_null"}, nodes[3].Outputs)
}

func TestSnapshotsCommand(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, NewSnapshotsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "(0 snapshots)")

	for range 2 {
		_, err = f.run(t, NewFitCommand(), f.data, "--name", "people")
		require.NoError(t, err)
	}

	out, err = f.run(t, NewSnapshotsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "(2 snapshots)")

	f.cfg.OutputFormat = config.OutputJSON
	out, err = f.run(t, NewSnapshotsCommand())
	require.NoError(t, err)
	var infos []state.SnapshotInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "people", infos[0].Name)
	assert.Equal(t, 6, infos[0].Outputs)

	out, err = f.run(t, NewSnapshotsCommand(), "--delete", "people")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 versions of people")
}
