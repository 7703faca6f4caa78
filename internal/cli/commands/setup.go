package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leaprdt/internal/cli/config"
	"github.com/leapstack-labs/leaprdt/internal/state"
	"github.com/leapstack-labs/leaprdt/internal/tabular"
	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/hyper"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Store  state.Store
}

// NewCommandContext creates a CommandContext with an opened snapshot store.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutStore(cmd)

	store, err := openStore(cmd.Context(), cc.Cfg.StatePath, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	cc.Store = store

	cleanup := func() {
		_ = store.Close()
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a store.
// Useful for commands that only inspect input files.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return &CommandContext{
		Cfg:    config.FromContext(ctx),
		Logger: config.GetLogger(ctx),
	}
}

func openStore(ctx context.Context, path string, logger *slog.Logger) (state.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// NewHyper builds an unfitted HyperTransformer from the loaded configuration,
// with per-field overrides applied.
func (cc *CommandContext) NewHyper() (*hyper.HyperTransformer, error) {
	settings := cc.Cfg.Settings()
	hc, err := settings.HyperConfig()
	if err != nil {
		return nil, err
	}
	hc.Logger = cc.Logger

	h, err := hyper.New(hc)
	if err != nil {
		return nil, err
	}

	fc, err := settings.FieldConfig()
	if err != nil {
		return nil, err
	}
	if len(fc.SDTypes) > 0 || len(fc.Transformers) > 0 {
		if err := h.SetConfig(fc); err != nil {
			return nil, fmt.Errorf("invalid field configuration: %w", err)
		}
	}
	return h, nil
}

// LoadHyper restores the latest snapshot stored under name.
func (cc *CommandContext) LoadHyper(ctx context.Context, name string) (*hyper.HyperTransformer, *state.SnapshotInfo, error) {
	snap, info, err := cc.Store.LatestSnapshot(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot %q: %w", name, err)
	}
	h, err := cc.NewHyper()
	if err != nil {
		return nil, nil, err
	}
	if err := h.Restore(snap); err != nil {
		return nil, nil, fmt.Errorf("failed to restore snapshot %q: %w", name, err)
	}
	cc.Logger.Debug("restored snapshot",
		slog.String("name", name),
		slog.String("id", info.ID),
		slog.Int("fields", info.Fields))
	return h, info, nil
}

// Helper functions shared across commands

func readDataset(path string) (*core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	ds, err := tabular.ReadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ds, nil
}

func readNumeric(path string) (*core.NumericTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	table, err := tabular.ReadNumeric(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// openOutput returns the command's stdout, or the named file when path is set.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path) //nolint:gosec // output path is user-provided
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func requireName(name string) error {
	if name == "" {
		return fmt.Errorf("--name is required")
	}
	return nil
}
