package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprdt/internal/cli/config"
)

type fieldNode struct {
	Field       string   `json:"field"`
	SDType      string   `json:"sdtype"`
	Transformer string   `json:"transformer"`
	Outputs     []string `json:"outputs"`
}

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the fitted transformer of every field",
		Long: `Load the newest snapshot with the given name and print, for every field,
its semantic type, transformer and output columns.`,
		Example: `  # As a table
  leaprdt config --name people

  # As YAML
  leaprdt config --name people --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Snapshot name (required)")

	return cmd
}

func runConfig(cmd *cobra.Command, name string) error {
	if err := requireName(name); err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	h, _, err := cc.LoadHyper(cmd.Context(), name)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if cc.Cfg.OutputFormat == config.OutputYAML {
		tree, err := h.TransformerTreeYAML()
		if err != nil {
			return err
		}
		_, err = w.Write(tree)
		return err
	}

	fields := h.Fields()
	nodes := make([]fieldNode, 0, len(fields))
	rows := make([][]any, 0, len(fields))
	for _, f := range fields {
		node := fieldNode{Field: f.Name, SDType: f.SDType.String(), Outputs: []string{}}
		if t, ok := h.Transformer(f.Name); ok {
			node.Transformer = t.Name()
		}
		if outputs, ok := h.FieldOutputs(f.Name); ok {
			node.Outputs = outputs
		}
		nodes = append(nodes, node)
		rows = append(rows, []any{node.Field, node.SDType, node.Transformer, strings.Join(node.Outputs, ", ")})
	}

	return render(w, cc.Cfg.OutputFormat, nodes, func() {
		renderTable(w, []string{"Field", "SDType", "Transformer", "Outputs"}, rows, "fields")
	})
}
