package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leaprdt/internal/state"
	"github.com/spf13/cobra"
)

// NewSnapshotsCommand creates the snapshots command.
func NewSnapshotsCommand() *cobra.Command {
	var deleteName string

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List stored snapshots",
		Long:  `List every stored snapshot version, newest first, or delete all versions of one.`,
		Example: `  # List snapshots
  leaprdt snapshots

  # Remove every version of a snapshot
  leaprdt snapshots --delete people`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshots(cmd, deleteName)
		},
	}

	cmd.Flags().StringVar(&deleteName, "delete", "", "Delete every version of the named snapshot")

	return cmd
}

func runSnapshots(cmd *cobra.Command, deleteName string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if deleteName != "" {
		n, err := cc.Store.DeleteSnapshots(ctx, deleteName)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", state.ErrSnapshotNotFound, deleteName)
		}
		_, _ = fmt.Fprintf(w, "Deleted %d versions of %s\n", n, deleteName)
		return nil
	}

	infos, err := cc.Store.ListSnapshots(ctx)
	if err != nil {
		return err
	}
	if infos == nil {
		infos = []state.SnapshotInfo{}
	}

	rows := make([][]any, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []any{
			info.Name,
			info.ID,
			info.CreatedAt.Local().Format(time.DateTime),
			info.Fields,
			info.Outputs,
		})
	}
	return render(w, cc.Cfg.OutputFormat, infos, func() {
		renderTable(w, []string{"Name", "ID", "Created", "Fields", "Outputs"}, rows, "snapshots")
	})
}
