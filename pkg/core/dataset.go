package core

import (
	"fmt"
	"math"
)

// Column is a named, ordered sequence of raw values. A nil entry is a null.
type Column struct {
	Name   string
	Values []any
}

// Len returns the number of rows in the column.
func (c Column) Len() int { return len(c.Values) }

// NullCount returns the number of null entries.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if IsNull(v) {
			n++
		}
	}
	return n
}

// IsNull reports whether v represents a missing value.
// nil and NaN floats are treated as missing.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Dataset is an ordered collection of named columns with aligned rows.
// The zero value is an empty dataset ready to use.
type Dataset struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewDataset builds a dataset from columns, validating names and row counts.
func NewDataset(columns ...Column) (*Dataset, error) {
	ds := &Dataset{}
	for _, c := range columns {
		if err := ds.Add(c); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Add appends a column. All columns must share the same row count.
func (d *Dataset) Add(c Column) error {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if _, ok := d.index[c.Name]; ok {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	if len(d.columns) > 0 && c.Len() != d.rows {
		return fmt.Errorf("column %q has %d rows, dataset has %d", c.Name, c.Len(), d.rows)
	}
	d.rows = c.Len()
	d.index[c.Name] = len(d.columns)
	d.columns = append(d.columns, c)
	return nil
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. The slice must not be modified.
func (d *Dataset) Columns() []Column { return d.columns }

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// Select returns a new dataset holding the named columns in the given order.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	out := &Dataset{}
	for _, n := range names {
		c, ok := d.Column(n)
		if !ok {
			return nil, &MissingColumnsError{Columns: []string{n}}
		}
		if err := out.Add(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Clone returns a deep copy of the dataset's column slices.
// The values themselves are shared.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{}
	for _, c := range d.columns {
		values := make([]any, len(c.Values))
		copy(values, c.Values)
		_ = out.Add(Column{Name: c.Name, Values: values})
	}
	return out
}

// NumericTable is an ordered collection of named float columns with aligned rows.
type NumericTable struct {
	names []string
	data  map[string][]float64
	rows  int
}

// NewNumericTable creates an empty numeric table.
func NewNumericTable() *NumericTable {
	return &NumericTable{data: make(map[string][]float64)}
}

// Add appends a float column.
func (t *NumericTable) Add(name string, values []float64) error {
	if t.data == nil {
		t.data = make(map[string][]float64)
	}
	if _, ok := t.data[name]; ok {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(t.names) > 0 && len(values) != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", name, len(values), t.rows)
	}
	t.rows = len(values)
	t.names = append(t.names, name)
	t.data[name] = values
	return nil
}

// SetRows fixes the row count of a table that has no columns.
// A dataset whose fields all fan out to zero columns still has rows.
func (t *NumericTable) SetRows(n int) error {
	if len(t.names) > 0 && n != t.rows {
		return fmt.Errorf("table already has %d rows", t.rows)
	}
	t.rows = n
	return nil
}

// Names returns the column names in order.
func (t *NumericTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column returns the named column.
func (t *NumericTable) Column(name string) ([]float64, bool) {
	v, ok := t.data[name]
	return v, ok
}

// Rows returns the row count.
func (t *NumericTable) Rows() int { return t.rows }

// Width returns the number of columns.
func (t *NumericTable) Width() int { return len(t.names) }
