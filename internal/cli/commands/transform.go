package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaprdt/internal/tabular"
	"github.com/spf13/cobra"
)

// NewTransformCommand creates the transform command.
func NewTransformCommand() *cobra.Command {
	var name, out string

	cmd := &cobra.Command{
		Use:   "transform <data.csv>",
		Short: "Encode a CSV file into numeric columns",
		Long: `Load the newest snapshot with the given name and encode a CSV file with
the same columns into a numeric CSV. Empty cells are read as nulls and NaN is
written as an empty cell.`,
		Example: `  # Write the encoded table to stdout
  leaprdt transform people.csv --name people

  # Write the encoded table to a file
  leaprdt transform people.csv --name people -o people.num.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, args[0], name, out)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Snapshot name (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")

	return cmd
}

func runTransform(cmd *cobra.Command, path, name, out string) error {
	if err := requireName(name); err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	h, _, err := cc.LoadHyper(ctx, name)
	if err != nil {
		return err
	}
	ds, err := readDataset(path)
	if err != nil {
		return err
	}

	table, err := h.Transform(ctx, ds)
	if err != nil {
		return fmt.Errorf("transform failed: %w", err)
	}

	w, closeFn, err := openOutput(cmd, out)
	if err != nil {
		return err
	}
	if err := tabular.WriteNumeric(w, table); err != nil {
		_ = closeFn()
		return err
	}
	cc.Logger.Debug("transformed",
		slog.String("name", name),
		slog.Int("rows", table.Rows()),
		slog.Int("columns", table.Width()))
	return closeFn()
}

// NewReverseCommand creates the reverse command.
func NewReverseCommand() *cobra.Command {
	var name, out string

	cmd := &cobra.Command{
		Use:   "reverse <numeric.csv>",
		Short: "Decode numeric columns back into the original schema",
		Long: `Load the newest snapshot with the given name and decode a numeric CSV,
such as one produced by transform or by a model trained on it, back into the
original columns. Columns are located by name; empty cells are read as NaN.`,
		Example: `  # Round trip a file
  leaprdt transform people.csv --name people -o people.num.csv
  leaprdt reverse people.num.csv --name people -o people.out.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReverse(cmd, args[0], name, out)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Snapshot name (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")

	return cmd
}

func runReverse(cmd *cobra.Command, path, name, out string) error {
	if err := requireName(name); err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	h, _, err := cc.LoadHyper(ctx, name)
	if err != nil {
		return err
	}
	table, err := readNumeric(path)
	if err != nil {
		return err
	}

	ds, err := h.ReverseTransform(ctx, table)
	if err != nil {
		return fmt.Errorf("reverse transform failed: %w", err)
	}

	w, closeFn, err := openOutput(cmd, out)
	if err != nil {
		return err
	}
	if err := tabular.WriteDataset(w, ds); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}
