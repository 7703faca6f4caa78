package commands

import (
	"github.com/spf13/cobra"
)

// detectedField is one row of the detect output.
type detectedField struct {
	Name        string `json:"name" yaml:"name"`
	SDType      string `json:"sdtype" yaml:"sdtype"`
	SubType     string `json:"subtype" yaml:"subtype"`
	Nullable    bool   `json:"nullable" yaml:"nullable"`
	Transformer string `json:"transformer" yaml:"transformer"`
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <data.csv>",
		Short: "Detect the semantic type of every column",
		Long: `Inspect a CSV file and print the detected fields: semantic type,
storage sub-type, whether nulls were seen and the transformer that fit would use.

Field sdtypes and transformers configured in leaprdt.yaml are applied.`,
		Example: `  # Detect fields as a table
  leaprdt detect people.csv

  # Detect fields as YAML
  leaprdt detect people.csv --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args[0])
		},
	}
}

func runDetect(cmd *cobra.Command, path string) error {
	cc := NewCommandContextWithoutStore(cmd)

	ds, err := readDataset(path)
	if err != nil {
		return err
	}
	h, err := cc.NewHyper()
	if err != nil {
		return err
	}

	fields := h.DetectSchema(ds)
	assigned := h.Config().Transformers

	out := make([]detectedField, 0, len(fields))
	rows := make([][]any, 0, len(fields))
	for _, f := range fields {
		d := detectedField{
			Name:        f.Name,
			SDType:      f.SDType.String(),
			SubType:     f.SubType,
			Nullable:    f.Nullable,
			Transformer: assigned[f.Name],
		}
		out = append(out, d)
		rows = append(rows, []any{d.Name, d.SDType, d.SubType, d.Nullable, d.Transformer})
	}

	w := cmd.OutOrStdout()
	return render(w, cc.Cfg.OutputFormat, out, func() {
		renderTable(w, []string{"Field", "SDType", "SubType", "Nullable", "Transformer"}, rows, "fields")
	})
}
