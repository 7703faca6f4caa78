package hyper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/naming"
)

// DetectSchema infers the fields of a dataset. Explicitly configured sdtypes
// take precedence over detected ones. The result is advisory and is used by
// the next Fit for columns it covers.
func (h *HyperTransformer) DetectSchema(ds *core.Dataset) []core.Field {
	h.mu.Lock()
	defer h.mu.Unlock()

	fields := h.detector.Detect(ds)
	for i := range fields {
		if st, ok := h.sdtypes[fields[i].Name]; ok {
			fields[i].SDType = st
		}
		h.logger.Debug("detected field",
			"field", fields[i].Name,
			"sdtype", fields[i].SDType.String(),
			"subtype", fields[i].SubType,
			"nullable", fields[i].Nullable)
	}
	h.detected = fields

	out := make([]core.Field, len(fields))
	copy(out, fields)
	return out
}

// Fit assigns and fits one transformer per column of ds. Overrides map field
// names to transformer instances and are kept for later fits; other fields use
// their configured transformer or the default for their sdtype.
//
// The HyperTransformer's own state is replaced only when every field fits.
// Already fitted pinned or caller-supplied transformers that support
// snapshots are restored when any field fails. The dataset is retained so UpdateTransformers can refit single fields.
func (h *HyperTransformer) Fit(ctx context.Context, ds *core.Dataset, overrides map[string]core.Transformer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()

	var missing []string
	for name := range overrides {
		if _, ok := ds.Column(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &core.MissingColumnsError{Columns: missing}
	}

	fields := h.fieldsFor(ds)
	assigned := make([]core.Transformer, len(fields))
	for i, f := range fields {
		t, err := h.resolve(f, overrides[f.Name])
		if err != nil {
			return err
		}
		assigned[i] = t
	}

	saved, err := h.checkpoint(fields, assigned)
	if err != nil {
		return err
	}
	if err := h.fitFields(ctx, ds, fields, assigned); err != nil {
		return rollback(saved, err)
	}

	byField := make(map[string]core.Transformer, len(fields))
	for i, f := range fields {
		byField[f.Name] = assigned[i]
	}
	names, err := allocate(fields, byField)
	if err != nil {
		return rollback(saved, err)
	}

	for name, t := range overrides {
		h.pinned[name] = t
	}
	h.fields = fields
	h.transformers = byField
	h.names = names
	h.data = ds.Clone()
	h.fitted = true

	h.logger.Info("fit complete",
		"fields", len(fields),
		"outputs", names.Count(),
		"duration", time.Since(start))
	return nil
}

// UpdateTransformers refits only the named fields against the data seen by
// the last Fit, leaving every other field's transformer untouched. A nil
// transformer means the field's configured or default transformer.
func (h *HyperTransformer) UpdateTransformers(ctx context.Context, updates map[string]core.Transformer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refit(ctx, updates)
}

// refit implements UpdateTransformers. The caller holds the write lock.
func (h *HyperTransformer) refit(ctx context.Context, updates map[string]core.Transformer) error {
	if !h.fitted || h.data == nil {
		return &core.NotFittedError{Component: component}
	}

	index := make(map[string]int, len(h.fields))
	for i, f := range h.fields {
		index[f.Name] = i
	}
	var unknown []string
	for name := range updates {
		if _, ok := index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &core.UnknownColumnsError{Columns: unknown}
	}

	// Fit order keeps logging and error reporting deterministic.
	var fields []core.Field
	for _, f := range h.fields {
		if _, ok := updates[f.Name]; ok {
			fields = append(fields, f)
		}
	}

	assigned := make([]core.Transformer, len(fields))
	for i, f := range fields {
		t, err := h.resolve(f, updates[f.Name])
		if err != nil {
			return err
		}
		assigned[i] = t
	}

	saved, err := h.checkpoint(fields, assigned)
	if err != nil {
		return err
	}
	if err := h.fitFields(ctx, h.data, fields, assigned); err != nil {
		return rollback(saved, err)
	}

	byField := make(map[string]core.Transformer, len(h.transformers))
	for name, t := range h.transformers {
		byField[name] = t
	}
	for i, f := range fields {
		byField[f.Name] = assigned[i]
	}
	names, err := allocate(h.fields, byField)
	if err != nil {
		return rollback(saved, err)
	}

	for i, f := range fields {
		if updates[f.Name] != nil {
			h.pinned[f.Name] = assigned[i]
		}
	}
	h.transformers = byField
	h.names = names
	h.logger.Info("refit fields", "fields", len(fields), "outputs", names.Count())
	return nil
}

// fieldsFor returns one field per column of ds, reusing detected fields and
// applying configured sdtypes.
func (h *HyperTransformer) fieldsFor(ds *core.Dataset) []core.Field {
	detected := make(map[string]core.Field, len(h.detected))
	for _, f := range h.detected {
		detected[f.Name] = f
	}

	fields := make([]core.Field, 0, len(ds.Columns()))
	for _, col := range ds.Columns() {
		f, ok := detected[col.Name]
		if !ok {
			f = h.detector.DetectColumn(col)
		}
		if st, ok := h.sdtypes[col.Name]; ok {
			f.SDType = st
		}
		fields = append(fields, f)
	}
	return fields
}

// fitFields fits transformers[i] on the column of fields[i], fanning out over
// the worker pool. Each transformer is touched by exactly one goroutine.
func (h *HyperTransformer) fitFields(ctx context.Context, ds *core.Dataset, fields []core.Field, assigned []core.Transformer) error {
	columns := make([]core.Column, len(fields))
	for i, f := range fields {
		col, ok := ds.Column(f.Name)
		if !ok {
			return &core.MissingColumnsError{Columns: []string{f.Name}}
		}
		columns[i] = col
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)

	for i, f := range fields {
		t, col := assigned[i], columns[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := t.Fit(col); err != nil {
				return fieldError(f.Name, err)
			}
			h.logger.Debug("fitted field",
				"field", f.Name,
				"transformer", t.Name(),
				"outputs", len(t.OutputSuffixes()))
			return nil
		})
	}
	return g.Wait()
}

// savedState is the fitted state of a transformer captured before a refit.
type savedState struct {
	field string
	t     core.Snapshotter
	state json.RawMessage
}

// checkpoint captures every already fitted transformer in assigned. Default
// transformers are fresh and unfitted, so only pinned instances and caller
// overrides are captured. Fitted transformers without snapshot support are
// refitted without a checkpoint.
func (h *HyperTransformer) checkpoint(fields []core.Field, assigned []core.Transformer) ([]savedState, error) {
	var out []savedState
	for i, t := range assigned {
		if !t.IsFitted() {
			continue
		}
		s, ok := t.(core.Snapshotter)
		if !ok {
			h.logger.Warn("transformer cannot be restored if the fit fails",
				"field", fields[i].Name,
				"transformer", t.Name())
			continue
		}
		state, err := s.MarshalState()
		if err != nil {
			return nil, fieldError(fields[i].Name, err)
		}
		out = append(out, savedState{field: fields[i].Name, t: s, state: state})
	}
	return out, nil
}

// rollback restores checkpointed transformers after a failed fit and
// returns the original error.
func rollback(states []savedState, cause error) error {
	errs := []error{cause}
	for _, s := range states {
		if err := s.t.UnmarshalState(s.state); err != nil {
			errs = append(errs, fmt.Errorf("field %q: restore after failed fit: %w", s.field, err))
		}
	}
	if len(errs) == 1 {
		return cause
	}
	return errors.Join(errs...)
}

// allocate names every field's output group in fit order from one goroutine.
func allocate(fields []core.Field, byField map[string]core.Transformer) (*naming.Resolver, error) {
	names := naming.NewResolver()
	for _, f := range fields {
		if _, err := names.Allocate(f.Name, byField[f.Name].OutputSuffixes()); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// fieldError attaches a field name to an error raised by a transformer.
func fieldError(field string, err error) error {
	var invalid *core.InvalidDataError
	if errors.As(err, &invalid) && invalid.Field == "" {
		invalid.Field = field
	}
	return fmt.Errorf("field %q: %w", field, err)
}
