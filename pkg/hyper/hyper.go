// Package hyper provides the HyperTransformer, which assigns a transformer to
// every field of a dataset, composes their output groups into one numeric
// table and reverses that composition field by field.
package hyper

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/naming"
	"github.com/leapstack-labs/leaprdt/pkg/schema"
	"github.com/leapstack-labs/leaprdt/pkg/transformers"
)

// component is the name reported in errors raised by the HyperTransformer itself.
const component = "HyperTransformer"

// Config holds HyperTransformer configuration.
type Config struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Workers bounds how many fields are processed concurrently.
	// Zero means GOMAXPROCS.
	Workers int
	// Options configure every transformer built from the registry.
	// The zero value means transformers.DefaultOptions().
	Options transformers.Options
	// Detector tunes schema detection. The zero value means schema.DefaultConfig().
	Detector schema.Config
	// Defaults replaces the registry default transformer for an sdtype.
	Defaults map[core.SDType]string
}

// HyperTransformer orchestrates per-field transformers.
//
// Lifecycle: unfit → Fit → (Transform | ReverseTransform)*. Reconfiguring a
// field unfits only that field; Transform and ReverseTransform report it as
// not fitted until Fit or UpdateTransformers refits it.
type HyperTransformer struct {
	mu sync.RWMutex

	logger   *slog.Logger
	workers  int
	opts     transformers.Options
	detector *schema.Detector
	defaults map[core.SDType]string

	// detected holds the fields from the last DetectSchema call.
	detected []core.Field

	// Explicit per-field configuration, applied on every Fit.
	sdtypes map[string]core.SDType
	choices map[string]string
	pinned  map[string]core.Transformer

	// Fitted state, replaced as a whole by Fit.
	fields       []core.Field
	transformers map[string]core.Transformer
	names        *naming.Resolver
	data         *core.Dataset
	fitted       bool
}

// New creates an unfitted HyperTransformer.
func New(cfg Config) (*HyperTransformer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	opts := cfg.Options
	if opts == (transformers.Options{}) {
		opts = transformers.DefaultOptions()
	}

	detectorCfg := cfg.Detector
	if detectorCfg == (schema.Config{}) {
		detectorCfg = schema.DefaultConfig()
	}

	defaults := make(map[core.SDType]string, len(cfg.Defaults))
	for sdtype, name := range cfg.Defaults {
		t, err := transformers.New(name, opts)
		if err != nil {
			return nil, err
		}
		if !core.Accepts(t, sdtype) {
			return nil, &core.SchemaMismatchError{SDType: sdtype, Transformer: name, Accepts: t.InputSDTypes()}
		}
		defaults[sdtype] = name
	}

	return &HyperTransformer{
		logger:   logger,
		workers:  workers,
		opts:     opts,
		detector: schema.NewDetector(detectorCfg),
		defaults: defaults,
		sdtypes:  make(map[string]core.SDType),
		choices:  make(map[string]string),
		pinned:   make(map[string]core.Transformer),
	}, nil
}

// IsFitted reports whether Fit or Restore has completed.
func (h *HyperTransformer) IsFitted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fitted
}

// Fields returns the fitted fields in fit order.
func (h *HyperTransformer) Fields() []core.Field {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]core.Field, len(h.fields))
	copy(out, h.fields)
	return out
}

// Transformer returns the transformer assigned to a fitted field.
func (h *HyperTransformer) Transformer(field string) (core.Transformer, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.transformers[field]
	return t, ok
}

// OutputColumns returns every output column name, grouped by field in fit order.
func (h *HyperTransformer) OutputColumns() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.names == nil {
		return nil
	}
	return h.names.Names()
}

// FieldOutputs returns the output column names of one field.
func (h *HyperTransformer) FieldOutputs(field string) ([]string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.names == nil {
		return nil, false
	}
	return h.names.Outputs(field)
}

// defaultName returns the default transformer name for an sdtype.
func (h *HyperTransformer) defaultName(sdtype core.SDType) (string, error) {
	if name, ok := h.defaults[sdtype]; ok {
		return name, nil
	}
	if name, ok := transformers.DefaultFor(sdtype); ok {
		return name, nil
	}
	return "", fmt.Errorf("no default transformer for sdtype %s", sdtype)
}

// resolve picks the transformer for a field: the explicit override, then a
// pinned instance, then a configured name, then the sdtype default.
func (h *HyperTransformer) resolve(f core.Field, override core.Transformer) (core.Transformer, error) {
	t := override
	if t == nil {
		t = h.pinned[f.Name]
	}
	if t == nil {
		name, ok := h.choices[f.Name]
		if !ok {
			var err error
			if name, err = h.defaultName(f.SDType); err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		var err error
		if t, err = transformers.New(name, h.opts); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
	}

	if !core.Accepts(t, f.SDType) {
		return nil, &core.SchemaMismatchError{
			Field:       f.Name,
			SDType:      f.SDType,
			Transformer: t.Name(),
			Accepts:     t.InputSDTypes(),
		}
	}
	return t, nil
}

// knownField looks a field up among the fitted and then the detected fields.
func (h *HyperTransformer) knownField(name string) (core.Field, bool) {
	for _, f := range h.fields {
		if f.Name == name {
			return f, true
		}
	}
	for _, f := range h.detected {
		if f.Name == name {
			return f, true
		}
	}
	return core.Field{}, false
}

// knownFields returns the fitted fields followed by detected fields that
// were not fitted.
func (h *HyperTransformer) knownFields() []core.Field {
	out := make([]core.Field, 0, len(h.fields)+len(h.detected))
	seen := make(map[string]struct{}, len(h.fields))
	for _, f := range h.fields {
		out = append(out, f)
		seen[f.Name] = struct{}{}
	}
	for _, f := range h.detected {
		if _, ok := seen[f.Name]; !ok {
			out = append(out, f)
		}
	}
	return out
}
