package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprdt/pkg/hyper"
)

// BuildInfo identifies a leaprdt build.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

type versionReport struct {
	BuildInfo       `yaml:",inline"`
	GoVersion       string `json:"go_version" yaml:"go_version"`
	SnapshotVersion int    `json:"snapshot_version" yaml:"snapshot_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the leaprdt version, build metadata and the snapshot format
version this build reads and writes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := versionReport{
				BuildInfo:       info,
				GoVersion:       runtime.Version(),
				SnapshotVersion: hyper.SnapshotVersion,
			}
			cc := NewCommandContextWithoutStore(cmd)
			w := cmd.OutOrStdout()
			return render(w, cc.Cfg.OutputFormat, report, func() {
				_, _ = fmt.Fprintf(w, "leaprdt v%s\n", info.Version)
				_, _ = fmt.Fprintln(w, "Reversible data transforms for tabular data")
				_, _ = fmt.Fprintf(w, "  commit:    %s\n", info.Commit)
				_, _ = fmt.Fprintf(w, "  built:     %s\n", info.BuildDate)
				_, _ = fmt.Fprintf(w, "  go:        %s\n", report.GoVersion)
				_, _ = fmt.Fprintf(w, "  snapshots: v%d\n", report.SnapshotVersion)
			})
		},
	}
}
