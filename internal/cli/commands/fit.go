package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewFitCommand creates the fit command.
func NewFitCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "fit <data.csv>",
		Short: "Fit transformers to a CSV file and save a snapshot",
		Long: `Detect the fields of a CSV file, fit one transformer per field and store
the fitted state under a name in the state database.

Later transform, reverse and config commands load the newest snapshot with
that name. Fitting again under the same name stores a new version.`,
		Example: `  # Fit with defaults
  leaprdt fit people.csv --name people

  # Fit with min/max scaling and clipping
  leaprdt fit people.csv --name people --scaling minmax --enforce-min-max

  # Add an is_null column only when more than 10% of a column is null
  leaprdt fit people.csv --name people --null-threshold 0.1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd, args[0], name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Snapshot name (required)")
	cmd.Flags().String("scaling", "", "Numerical scaling (none|standard|minmax)")
	cmd.Flags().String("order", "", "Category order (frequency|appearance|alphabetical)")
	cmd.Flags().Bool("enforce-min-max", false, "Clip reversed numbers to the fitted range")
	cmd.Flags().Bool("add-noise", false, "Jitter frequency-encoded values within their interval")
	cmd.Flags().Float64("null-threshold", 0, "Null ratio that must be exceeded to add an is_null column")
	cmd.Flags().String("datetime-unit", "", "Datetime resolution as a Go duration (e.g. 1s, 24h)")
	cmd.Flags().Uint64("seed", 0, "Seed for noise")

	_ = cmd.RegisterFlagCompletionFunc("scaling", fixedCompletion("none", "standard", "minmax"))
	_ = cmd.RegisterFlagCompletionFunc("order", fixedCompletion("frequency", "appearance", "alphabetical"))

	return cmd
}

func runFit(cmd *cobra.Command, path, name string) error {
	if err := requireName(name); err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := readDataset(path)
	if err != nil {
		return err
	}
	h, err := cc.NewHyper()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := h.Fit(ctx, ds, nil); err != nil {
		return fmt.Errorf("fit failed: %w", err)
	}

	snap, err := h.Snapshot()
	if err != nil {
		return err
	}
	info, err := cc.Store.SaveSnapshot(ctx, name, snap)
	if err != nil {
		return err
	}

	cc.Logger.Info("saved snapshot",
		slog.String("name", info.Name),
		slog.String("id", info.ID))

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Fitted %d fields into %d columns from %d rows\n",
		info.Fields, info.Outputs, ds.Rows())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (%s)\n", info.Name, info.ID)
	return nil
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
