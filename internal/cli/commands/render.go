package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaprdt/internal/cli/config"
)

// renderTable writes rows as a light-style table followed by a row count.
func renderTable(w io.Writer, header []string, rows [][]any, noun string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintf(w, "(0 %s)\n", noun)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)
	for _, r := range rows {
		t.AppendRow(table.Row(r))
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d %s)\n", len(rows), noun)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// render dispatches structured output on the configured format. tableFn is
// used for the table format.
func render(w io.Writer, format string, v any, tableFn func()) error {
	switch format {
	case config.OutputJSON:
		return renderJSON(w, v)
	case config.OutputYAML:
		return renderYAML(w, v)
	default:
		tableFn()
		return nil
	}
}
