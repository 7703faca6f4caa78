package hyper

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/transformers"
)

// FieldConfig is the per-field view of the configuration: each field's sdtype
// and the name of its transformer.
type FieldConfig struct {
	SDTypes      map[string]core.SDType `json:"sdtypes" yaml:"sdtypes"`
	Transformers map[string]string      `json:"transformers" yaml:"transformers"`
}

// Config returns the sdtype and transformer name of every known field.
// Fitted fields report the transformer they were fitted with.
func (h *HyperTransformer) Config() FieldConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cfg := FieldConfig{
		SDTypes:      make(map[string]core.SDType),
		Transformers: make(map[string]string),
	}
	for _, f := range h.knownFields() {
		cfg.SDTypes[f.Name] = f.SDType
		switch {
		case h.transformers[f.Name] != nil:
			cfg.Transformers[f.Name] = h.transformers[f.Name].Name()
		case h.pinned[f.Name] != nil:
			cfg.Transformers[f.Name] = h.pinned[f.Name].Name()
		case h.choices[f.Name] != "":
			cfg.Transformers[f.Name] = h.choices[f.Name]
		default:
			if name, err := h.defaultName(f.SDType); err == nil {
				cfg.Transformers[f.Name] = name
			}
		}
	}
	for name, st := range h.sdtypes {
		if _, ok := cfg.SDTypes[name]; !ok {
			cfg.SDTypes[name] = st
		}
	}
	for name, choice := range h.choices {
		if _, ok := cfg.Transformers[name]; !ok {
			cfg.Transformers[name] = choice
		}
	}
	return cfg
}

// SetConfig applies sdtypes and transformer names. Fields may be named before
// they are seen; the configuration is applied on the next Fit. Fitted fields
// whose configuration changes are unfitted.
func (h *HyperTransformer) SetConfig(cfg FieldConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed := make(map[string]struct{}, len(cfg.SDTypes)+len(cfg.Transformers))
	for name := range cfg.SDTypes {
		changed[name] = struct{}{}
	}
	for name := range cfg.Transformers {
		changed[name] = struct{}{}
	}
	names := make([]string, 0, len(changed))
	for name := range changed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checkFieldConfig(name, cfg); err != nil {
			return err
		}
	}

	for name, st := range cfg.SDTypes {
		h.sdtypes[name] = st
	}
	for name, tname := range cfg.Transformers {
		h.choices[name] = tname
		delete(h.pinned, name)
	}
	for _, name := range names {
		if err := h.unfit(name); err != nil {
			return err
		}
	}
	return nil
}

// checkFieldConfig verifies that the transformer a field would use once cfg
// is applied accepts the field's resulting sdtype. The caller holds the lock.
func (h *HyperTransformer) checkFieldConfig(name string, cfg FieldConfig) error {
	st, known := cfg.SDTypes[name]
	if known {
		if !st.Valid() {
			return fmt.Errorf("field %q: invalid sdtype %q", name, st)
		}
	} else if f, ok := h.knownField(name); ok {
		st, known = f.SDType, true
	} else if configured, ok := h.sdtypes[name]; ok {
		st, known = configured, true
	}

	var t core.Transformer
	tname, chosen := cfg.Transformers[name]
	switch {
	case chosen:
	case h.pinned[name] != nil:
		t = h.pinned[name]
	case h.choices[name] != "":
		tname = h.choices[name]
	case known:
		var err error
		if tname, err = h.defaultName(st); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	default:
		return nil
	}
	if t == nil {
		var err error
		if t, err = transformers.New(tname, h.opts); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}

	if known && !core.Accepts(t, st) {
		return &core.SchemaMismatchError{Field: name, SDType: st, Transformer: t.Name(), Accepts: t.InputSDTypes()}
	}
	return nil
}

// UpdateFieldSDTypes changes the sdtype of known fields. Each changed field
// falls back to the default transformer of its new sdtype and is unfitted.
func (h *HyperTransformer) UpdateFieldSDTypes(updates map[string]core.SDType) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var unknown []string
	for name, st := range updates {
		if !st.Valid() {
			return fmt.Errorf("field %q: invalid sdtype %q", name, st)
		}
		if _, ok := h.knownField(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &core.UnknownColumnsError{Columns: unknown}
	}

	for name, st := range updates {
		h.sdtypes[name] = st
		delete(h.choices, name)
		delete(h.pinned, name)
		if err := h.unfit(name); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTransformersBySDType assigns the named transformer to every known
// field of an sdtype. If the HyperTransformer is fitted, those fields are
// refitted immediately.
func (h *HyperTransformer) UpdateTransformersBySDType(ctx context.Context, sdtype core.SDType, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := transformers.New(name, h.opts)
	if err != nil {
		return err
	}
	if !core.Accepts(t, sdtype) {
		return &core.SchemaMismatchError{SDType: sdtype, Transformer: name, Accepts: t.InputSDTypes()}
	}

	updates := make(map[string]core.Transformer)
	for _, f := range h.knownFields() {
		if f.SDType != sdtype {
			continue
		}
		h.choices[f.Name] = name
		delete(h.pinned, f.Name)
		if _, fitted := h.transformers[f.Name]; fitted {
			updates[f.Name] = nil
		}
	}

	if !h.fitted || h.data == nil || len(updates) == 0 {
		return nil
	}
	return h.refit(ctx, updates)
}

// unfit replaces a fitted field's transformer with a fresh, unfitted one
// built from the current configuration. Unfitted fields are left alone.
// The caller holds the write lock.
func (h *HyperTransformer) unfit(name string) error {
	for i, f := range h.fields {
		if f.Name != name {
			continue
		}
		if st, ok := h.sdtypes[name]; ok {
			h.fields[i].SDType = st
		}
		t, err := h.resolve(h.fields[i], nil)
		if err != nil {
			return err
		}
		h.transformers[name] = t
		h.logger.Info("field unfitted", "field", name, "sdtype", h.fields[i].SDType.String(), "transformer", t.Name())
	}
	for i, f := range h.detected {
		if st, ok := h.sdtypes[f.Name]; ok && f.Name == name {
			h.detected[i].SDType = st
		}
	}
	return nil
}

type treeNode struct {
	Field       string   `yaml:"field"`
	SDType      string   `yaml:"sdtype"`
	Transformer string   `yaml:"transformer"`
	Fitted      bool     `yaml:"fitted"`
	Outputs     []string `yaml:"outputs"`
}

// TransformerTreeYAML renders the fitted fields, their transformers and
// output columns as YAML, in fit order.
func (h *HyperTransformer) TransformerTreeYAML() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.fitted {
		return nil, &core.NotFittedError{Component: component}
	}

	nodes := make([]treeNode, 0, len(h.fields))
	for _, f := range h.fields {
		t := h.transformers[f.Name]
		outputs, _ := h.names.Outputs(f.Name)
		if outputs == nil {
			outputs = []string{}
		}
		nodes = append(nodes, treeNode{
			Field:       f.Name,
			SDType:      f.SDType.String(),
			Transformer: t.Name(),
			Fitted:      t.IsFitted(),
			Outputs:     outputs,
		})
	}
	return yaml.Marshal(nodes)
}
