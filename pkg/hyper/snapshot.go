package hyper

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/transformers"
)

// SnapshotVersion is the version written by Snapshot and accepted by Restore.
const SnapshotVersion = 1

// Snapshot is the serializable fitted state of a HyperTransformer. It is
// enough to transform and reverse in another process, but not to refit,
// since the fit data is not included.
type Snapshot struct {
	Version int             `json:"version"`
	Fields  []FieldSnapshot `json:"fields"`
}

// FieldSnapshot is the fitted state of one field.
type FieldSnapshot struct {
	Field       core.Field      `json:"field"`
	Transformer string          `json:"transformer"`
	Outputs     []string        `json:"outputs"`
	State       json.RawMessage `json:"state"`
}

// OutputCount returns the total number of output columns.
func (s *Snapshot) OutputCount() int {
	n := 0
	for _, f := range s.Fields {
		n += len(f.Outputs)
	}
	return n
}

// Snapshot captures the fitted state. Every transformer must be fitted and
// implement core.Snapshotter.
func (h *HyperTransformer) Snapshot() (*Snapshot, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := h.ready(); err != nil {
		return nil, err
	}

	snap := &Snapshot{Version: SnapshotVersion, Fields: make([]FieldSnapshot, 0, len(h.fields))}
	for _, f := range h.fields {
		t := h.transformers[f.Name]
		s, ok := t.(core.Snapshotter)
		if !ok {
			return nil, fmt.Errorf("field %q: transformer %s does not support snapshots", f.Name, t.Name())
		}
		state, err := s.MarshalState()
		if err != nil {
			return nil, fieldError(f.Name, err)
		}
		outputs, _ := h.names.Outputs(f.Name)
		snap.Fields = append(snap.Fields, FieldSnapshot{
			Field:       f,
			Transformer: t.Name(),
			Outputs:     outputs,
			State:       state,
		})
	}
	return snap, nil
}

// Restore replaces the fitted state with a snapshot. Output names are
// re-derived and must match the ones recorded in the snapshot.
func (h *HyperTransformer) Restore(snap *Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d (want %d)", snap.Version, SnapshotVersion)
	}

	fields := make([]core.Field, len(snap.Fields))
	byField := make(map[string]core.Transformer, len(snap.Fields))
	for i, fs := range snap.Fields {
		if _, dup := byField[fs.Field.Name]; dup {
			return fmt.Errorf("snapshot lists field %q twice", fs.Field.Name)
		}
		t, err := transformers.Restore(fs.Transformer, fs.State)
		if err != nil {
			return fieldError(fs.Field.Name, err)
		}
		if !core.Accepts(t, fs.Field.SDType) {
			return &core.SchemaMismatchError{
				Field:       fs.Field.Name,
				SDType:      fs.Field.SDType,
				Transformer: t.Name(),
				Accepts:     t.InputSDTypes(),
			}
		}
		fields[i] = fs.Field
		byField[fs.Field.Name] = t
	}

	names, err := allocate(fields, byField)
	if err != nil {
		return err
	}
	for _, fs := range snap.Fields {
		got, _ := names.Outputs(fs.Field.Name)
		if !slices.Equal(got, fs.Outputs) {
			return fmt.Errorf("field %q: restored outputs %v do not match snapshot %v", fs.Field.Name, got, fs.Outputs)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.fields = fields
	h.transformers = byField
	h.names = names
	h.data = nil
	h.fitted = true
	h.logger.Info("restored snapshot", "fields", len(fields), "outputs", names.Count())
	return nil
}
