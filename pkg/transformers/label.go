package transformers

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

// LabelEncoderConfig configures a LabelEncoder.
type LabelEncoderConfig struct {
	Order Order `json:"order"`
}

type labelState struct {
	Config     LabelEncoderConfig `json:"config"`
	Categories []category         `json:"categories"`
}

// LabelEncoder maps categories to the integer codes 0..N-1 in category
// order. Unseen categories encode to UnknownCode. Reverse rounds to the
// nearest code within [UnknownCode, N-1]; halfway values go to the lower code.
type LabelEncoder struct {
	cfg    LabelEncoderConfig
	state  labelState
	index  map[string]int
	fitted bool
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder(cfg LabelEncoderConfig) *LabelEncoder {
	if cfg.Order == "" {
		cfg.Order = OrderFrequency
	}
	return &LabelEncoder{cfg: cfg}
}

func (t *LabelEncoder) Name() string { return "LabelEncoder" }

func (t *LabelEncoder) InputSDTypes() []core.SDType {
	return []core.SDType{core.Categorical, core.Boolean, core.Identifier}
}

func (t *LabelEncoder) IsFitted() bool { return t.fitted }

func (t *LabelEncoder) OutputSuffixes() []string {
	if !t.fitted {
		return nil
	}
	return []string{SuffixValue}
}

func (t *LabelEncoder) Fit(col core.Column) error {
	if err := t.cfg.Order.Validate(); err != nil {
		return err
	}
	cats := learnCategories(col.Values, t.cfg.Order)

	t.state = labelState{Config: t.cfg, Categories: cats}
	t.index = categoryIndex(cats)
	t.fitted = true
	return nil
}

func (t *LabelEncoder) Transform(values []any) ([][]float64, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	out := make([]float64, len(values))
	for i, v := range values {
		pos, ok := t.index[categoryKey(v)]
		if !ok {
			out[i] = UnknownCode
			continue
		}
		out[i] = float64(pos)
	}
	return [][]float64{out}, nil
}

func (t *LabelEncoder) ReverseTransform(columns [][]float64, rows int) ([]any, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	if err := checkGroup(t.Name(), columns, 1, rows); err != nil {
		return nil, err
	}

	top := float64(len(t.state.Categories) - 1)
	out := make([]any, rows)
	for i, v := range columns[0] {
		if math.IsNaN(v) {
			continue
		}
		code := clip(math.Ceil(v-0.5), UnknownCode, top)
		if code < 0 {
			out[i] = core.Unknown
			continue
		}
		out[i] = t.state.Categories[int(code)].Value
	}
	return out, nil
}

// MarshalState implements core.Snapshotter.
func (t *LabelEncoder) MarshalState() (json.RawMessage, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	return json.Marshal(t.state)
}

// UnmarshalState implements core.Snapshotter.
func (t *LabelEncoder) UnmarshalState(data json.RawMessage) error {
	var st labelState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode %s state: %w", t.Name(), err)
	}
	t.cfg = st.Config
	t.state = st
	t.index = categoryIndex(st.Categories)
	t.fitted = true
	return nil
}
