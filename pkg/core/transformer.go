package core

import "encoding/json"

// Transformer reversibly maps one input column to one or more float columns.
//
// Output columns are addressed by suffix; the orchestrator turns suffixes
// into globally unique names. Transform returns one slice per suffix, in the
// order given by OutputSuffixes, each holding one value per input row.
type Transformer interface {
	// Name identifies the transformer kind, e.g. "FrequencyEncoder".
	Name() string

	// InputSDTypes lists the semantic types the transformer accepts.
	InputSDTypes() []SDType

	// Fit learns parameters from the column. On error the previous fitted
	// state is left untouched.
	Fit(col Column) error

	// IsFitted reports whether Fit has completed successfully.
	IsFitted() bool

	// OutputSuffixes returns the output sub-column suffixes fixed at fit.
	OutputSuffixes() []string

	Transform(values []any) ([][]float64, error)

	// ReverseTransform decodes a group of output columns holding rows rows.
	// The row count is explicit because a group may have no columns. It never
	// fails on perturbed values, only on structural problems.
	ReverseTransform(columns [][]float64, rows int) ([]any, error)
}

// Snapshotter is implemented by transformers whose fitted state can be
// serialized and restored in another process.
type Snapshotter interface {
	MarshalState() (json.RawMessage, error)
	UnmarshalState(state json.RawMessage) error
}

// Accepts reports whether t accepts fields of the given semantic type.
func Accepts(t Transformer, sdtype SDType) bool {
	for _, s := range t.InputSDTypes() {
		if s == sdtype {
			return true
		}
	}
	return false
}

// unknownCategory is the type of the Unknown sentinel.
type unknownCategory struct{}

func (unknownCategory) String() string { return "<unknown>" }

func (unknownCategory) MarshalJSON() ([]byte, error) { return []byte(`"<unknown>"`), nil }

// Unknown is decoded in place of a category that was not seen during fit.
var Unknown any = unknownCategory{}

// IsUnknown reports whether v is the Unknown sentinel.
func IsUnknown(v any) bool {
	_, ok := v.(unknownCategory)
	return ok
}
