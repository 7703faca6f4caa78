package testutil

import (
	"testing"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

// Col builds a column.
func Col(name string, values ...any) core.Column {
	return core.Column{Name: name, Values: values}
}

// Dataset builds a dataset and fails the test if the columns do not align.
func Dataset(t testing.TB, columns ...core.Column) *core.Dataset {
	t.Helper()
	ds, err := core.NewDataset(columns...)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return ds
}

// People is a small mixed-type dataset covering every sdtype, with nulls in
// the numerical, categorical and identifier columns.
func People(t testing.TB) *core.Dataset {
	t.Helper()
	return Dataset(t,
		Col("id", "u-001", "u-002", "u-003", "u-004", "u-005", "u-006", "u-007", "u-008"),
		Col("age", int64(25), nil, int64(40), int64(25), int64(31), int64(58), nil, int64(19)),
		Col("color", "red", "blue", "red", "green", "red", nil, "green", "red"),
		Col("active", true, false, true, true, false, true, true, false),
		Col("joined", "2020-01-01", "2020-02-15", "2021-03-31", "2019-12-24",
			"2022-07-04", "2020-01-01", "2023-11-30", "2018-05-05"),
	)
}
