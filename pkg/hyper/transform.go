package hyper

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

// Transform encodes ds into one numeric table. The dataset must hold exactly
// the fitted fields, in any order. Output groups are concatenated in fit order.
func (h *HyperTransformer) Transform(ctx context.Context, ds *core.Dataset) (*core.NumericTable, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := h.ready(); err != nil {
		return nil, err
	}
	if err := h.checkFields(ds.Names()); err != nil {
		return nil, err
	}

	groups := make([][][]float64, len(h.fields))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for i, f := range h.fields {
		col, _ := ds.Column(f.Name)
		t := h.transformers[f.Name]
		names, _ := h.names.Outputs(f.Name)
		width := len(names)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := t.Transform(col.Values)
			if err != nil {
				return fieldError(f.Name, err)
			}
			if len(out) != width {
				return fmt.Errorf("field %q: %s produced %d columns, expected %d", f.Name, t.Name(), len(out), width)
			}
			groups[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := core.NewNumericTable()
	if err := table.SetRows(ds.Rows()); err != nil {
		return nil, err
	}
	for i, f := range h.fields {
		names, _ := h.names.Outputs(f.Name)
		for j, name := range names {
			if err := table.Add(name, groups[i][j]); err != nil {
				return nil, err
			}
		}
	}

	h.logger.Debug("transformed dataset", "rows", table.Rows(), "columns", table.Width())
	return table, nil
}

// FitTransform fits on ds and returns its encoding.
func (h *HyperTransformer) FitTransform(ctx context.Context, ds *core.Dataset) (*core.NumericTable, error) {
	if err := h.Fit(ctx, ds, nil); err != nil {
		return nil, err
	}
	return h.Transform(ctx, ds)
}

// ReverseTransform decodes a numeric table back into the fitted fields.
// Columns are located by name, so their order in the table does not matter,
// but the set of names must equal the fitted output columns. Perturbed values
// decode through each transformer's fallback rules and never fail.
func (h *HyperTransformer) ReverseTransform(ctx context.Context, table *core.NumericTable) (*core.Dataset, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := h.ready(); err != nil {
		return nil, err
	}
	missing, unknown := h.names.Check(table.Names())
	if len(missing) > 0 {
		return nil, &core.MissingColumnsError{Columns: missing}
	}
	if len(unknown) > 0 {
		return nil, &core.UnknownColumnsError{Columns: unknown}
	}

	rows := table.Rows()
	values := make([][]any, len(h.fields))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for i, f := range h.fields {
		names, _ := h.names.Outputs(f.Name)
		group := make([][]float64, len(names))
		for j, name := range names {
			group[j], _ = table.Column(name)
		}
		t := h.transformers[f.Name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := t.ReverseTransform(group, rows)
			if err != nil {
				return fieldError(f.Name, err)
			}
			values[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	columns := make([]core.Column, len(h.fields))
	for i, f := range h.fields {
		columns[i] = core.Column{Name: f.Name, Values: values[i]}
	}
	ds, err := core.NewDataset(columns...)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("reversed table", "rows", rows, "fields", len(columns))
	return ds, nil
}

// ready fails unless every field has a fitted transformer. The caller holds
// the lock.
func (h *HyperTransformer) ready() error {
	if !h.fitted {
		return &core.NotFittedError{Component: component}
	}
	for _, f := range h.fields {
		if !h.transformers[f.Name].IsFitted() {
			return &core.NotFittedError{Component: fmt.Sprintf("transformer for field %q", f.Name)}
		}
	}
	return nil
}

// checkFields compares dataset column names against the fitted fields.
func (h *HyperTransformer) checkFields(names []string) error {
	fitted := make(map[string]struct{}, len(h.fields))
	for _, f := range h.fields {
		fitted[f.Name] = struct{}{}
	}
	present := make(map[string]struct{}, len(names))
	var unknown []string
	for _, n := range names {
		present[n] = struct{}{}
		if _, ok := fitted[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	var missing []string
	for _, f := range h.fields {
		if _, ok := present[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}

	if len(missing) > 0 {
		return &core.MissingColumnsError{Columns: missing}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &core.UnknownColumnsError{Columns: unknown}
	}
	return nil
}
