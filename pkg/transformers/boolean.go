package transformers

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
	"github.com/leapstack-labs/leaprdt/pkg/schema"
)

// BinaryEncoderConfig configures a BinaryEncoder.
type BinaryEncoderConfig struct {
	Nulls nulls.Config `json:"nulls"`
}

type binaryState struct {
	Config BinaryEncoderConfig `json:"config"`
	Nulls  nulls.State         `json:"null_state"`
}

// BinaryEncoder encodes booleans as 1 and 0. Reverse decodes values above
// 0.5 as true, so out-of-range values clip to the nearest boolean.
type BinaryEncoder struct {
	cfg    BinaryEncoderConfig
	nulls  *nulls.Strategy
	fitted bool
}

// NewBinaryEncoder creates an unfitted BinaryEncoder.
func NewBinaryEncoder(cfg BinaryEncoderConfig) *BinaryEncoder {
	return &BinaryEncoder{cfg: cfg}
}

func (t *BinaryEncoder) Name() string { return "BinaryEncoder" }

func (t *BinaryEncoder) InputSDTypes() []core.SDType { return []core.SDType{core.Boolean} }

func (t *BinaryEncoder) IsFitted() bool { return t.fitted }

func (t *BinaryEncoder) OutputSuffixes() []string {
	if !t.fitted {
		return nil
	}
	return nullSuffixes(t.nulls, SuffixValue)
}

func (t *BinaryEncoder) Fit(col core.Column) error {
	values, err := toBinary(col.Name, col.Values)
	if err != nil {
		return err
	}
	strategy := nulls.New(t.cfg.Nulls)
	strategy.Fit(values)

	t.nulls = strategy
	t.fitted = true
	return nil
}

func (t *BinaryEncoder) Transform(values []any) ([][]float64, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	raw, err := toBinary("", values)
	if err != nil {
		return nil, err
	}
	return emit(t.nulls.Transform(raw)), nil
}

func (t *BinaryEncoder) ReverseTransform(columns [][]float64, rows int) ([]any, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	if err := checkGroup(t.Name(), columns, len(t.OutputSuffixes()), rows); err != nil {
		return nil, err
	}

	var indicator []float64
	if t.nulls.NeedsIndicator() {
		indicator = columns[1]
	}
	mask := t.nulls.Reverse(columns[0], indicator)

	out := make([]any, rows)
	for i, v := range columns[0] {
		if mask[i] {
			continue
		}
		out[i] = v > 0.5
	}
	return out, nil
}

// MarshalState implements core.Snapshotter.
func (t *BinaryEncoder) MarshalState() (json.RawMessage, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	return json.Marshal(binaryState{Config: t.cfg, Nulls: t.nulls.MarshalState()})
}

// UnmarshalState implements core.Snapshotter.
func (t *BinaryEncoder) UnmarshalState(data json.RawMessage) error {
	var st binaryState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode %s state: %w", t.Name(), err)
	}
	strategy := nulls.New(st.Config.Nulls)
	strategy.RestoreState(st.Nulls)

	t.cfg = st.Config
	t.nulls = strategy
	t.fitted = true
	return nil
}

func toBinary(field string, values []any) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if core.IsNull(v) {
			out[i] = math.NaN()
			continue
		}
		b, ok := schema.ToBool(v)
		if !ok {
			return nil, &core.InvalidDataError{Field: field, Row: i, Value: v, Reason: "not a boolean"}
		}
		if b {
			out[i] = 1
		}
	}
	return out, nil
}
