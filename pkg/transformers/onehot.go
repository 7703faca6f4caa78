package transformers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

// OneHotEncoderConfig configures a OneHotEncoder.
type OneHotEncoderConfig struct {
	Order Order `json:"order"`
}

type oneHotState struct {
	Config     OneHotEncoderConfig `json:"config"`
	Categories []category          `json:"categories"`
}

// OneHotEncoder emits one column per category, "value0" through "valueN-1".
// An unseen category encodes to all zeros. On reverse the largest column
// wins, ties going to the lowest index; a row with no positive value
// decodes to core.Unknown.
type OneHotEncoder struct {
	cfg    OneHotEncoderConfig
	state  oneHotState
	index  map[string]int
	fitted bool
}

// NewOneHotEncoder creates an unfitted OneHotEncoder.
func NewOneHotEncoder(cfg OneHotEncoderConfig) *OneHotEncoder {
	if cfg.Order == "" {
		cfg.Order = OrderFrequency
	}
	return &OneHotEncoder{cfg: cfg}
}

func (t *OneHotEncoder) Name() string { return "OneHotEncoder" }

func (t *OneHotEncoder) InputSDTypes() []core.SDType {
	return []core.SDType{core.Categorical, core.Boolean, core.Identifier}
}

func (t *OneHotEncoder) IsFitted() bool { return t.fitted }

func (t *OneHotEncoder) OutputSuffixes() []string {
	if !t.fitted {
		return nil
	}
	out := make([]string, len(t.state.Categories))
	for i := range out {
		out[i] = SuffixValue + strconv.Itoa(i)
	}
	return out
}

func (t *OneHotEncoder) Fit(col core.Column) error {
	if err := t.cfg.Order.Validate(); err != nil {
		return err
	}
	cats := learnCategories(col.Values, t.cfg.Order)

	t.state = oneHotState{Config: t.cfg, Categories: cats}
	t.index = categoryIndex(cats)
	t.fitted = true
	return nil
}

func (t *OneHotEncoder) Transform(values []any) ([][]float64, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	out := make([][]float64, len(t.state.Categories))
	for j := range out {
		out[j] = make([]float64, len(values))
	}
	for i, v := range values {
		if pos, ok := t.index[categoryKey(v)]; ok {
			out[pos][i] = 1
		}
	}
	return out, nil
}

func (t *OneHotEncoder) ReverseTransform(columns [][]float64, rows int) ([]any, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	if err := checkGroup(t.Name(), columns, len(t.state.Categories), rows); err != nil {
		return nil, err
	}

	out := make([]any, rows)
	for i := 0; i < rows; i++ {
		best, bestVal := -1, 0.0
		for j, c := range columns {
			v := c[i]
			if math.IsNaN(v) {
				continue
			}
			if v > bestVal {
				best, bestVal = j, v
			}
		}
		if best < 0 {
			out[i] = core.Unknown
			continue
		}
		out[i] = t.state.Categories[best].Value
	}
	return out, nil
}

// MarshalState implements core.Snapshotter.
func (t *OneHotEncoder) MarshalState() (json.RawMessage, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	return json.Marshal(t.state)
}

// UnmarshalState implements core.Snapshotter.
func (t *OneHotEncoder) UnmarshalState(data json.RawMessage) error {
	var st oneHotState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode %s state: %w", t.Name(), err)
	}
	t.cfg = st.Config
	t.state = st
	t.index = categoryIndex(st.Categories)
	t.fitted = true
	return nil
}
