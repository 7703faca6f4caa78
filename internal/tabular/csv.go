// Package tabular reads and writes datasets and numeric tables as CSV.
//
// The first record is the header. An empty cell is a null on input, and
// nulls are written as empty cells.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

// ReadDataset reads raw values. Cells stay strings; empty cells become nil.
func ReadDataset(r io.Reader) (*core.Dataset, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}

	columns := make([]core.Column, len(header))
	for j, name := range header {
		columns[j] = core.Column{Name: name, Values: make([]any, len(records))}
	}
	for i, rec := range records {
		for j, cell := range rec {
			if cell != "" {
				columns[j].Values[i] = cell
			}
		}
	}
	return core.NewDataset(columns...)
}

// ReadNumeric reads a numeric table. Empty cells become NaN.
func ReadNumeric(r io.Reader) (*core.NumericTable, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}

	data := make([][]float64, len(header))
	for j := range data {
		data[j] = make([]float64, len(records))
	}
	for i, rec := range records {
		for j, cell := range rec {
			if cell == "" {
				data[j][i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &core.InvalidDataError{Field: header[j], Row: i, Value: cell, Reason: "not a number", Cause: err}
			}
			data[j][i] = v
		}
	}

	table := core.NewNumericTable()
	if err := table.SetRows(len(records)); err != nil {
		return nil, err
	}
	for j, name := range header {
		if err := table.Add(name, data[j]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// WriteDataset writes a dataset with one column per field.
func WriteDataset(w io.Writer, ds *core.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Names()); err != nil {
		return err
	}

	columns := ds.Columns()
	record := make([]string, len(columns))
	for i := 0; i < ds.Rows(); i++ {
		for j, c := range columns {
			record[j] = FormatValue(c.Values[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNumeric writes a numeric table. NaN is written as an empty cell.
func WriteNumeric(w io.Writer, table *core.NumericTable) error {
	cw := csv.NewWriter(w)
	names := table.Names()
	if err := cw.Write(names); err != nil {
		return err
	}

	columns := make([][]float64, len(names))
	for j, name := range names {
		columns[j], _ = table.Column(name)
	}
	record := make([]string, len(names))
	for i := 0; i < table.Rows(); i++ {
		for j, c := range columns {
			record[j] = formatFloat(c[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatValue renders one decoded value as a CSV cell.
func FormatValue(v any) string {
	if core.IsNull(v) {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// readAll returns the header and the data records. Every record must have
// one cell per header column.
func readAll(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("empty input: missing header")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read records: %w", err)
	}
	return header, records, nil
}
