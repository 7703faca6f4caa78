package transformers

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

// FrequencyEncoderConfig configures a FrequencyEncoder.
type FrequencyEncoderConfig struct {
	Order Order `json:"order"`
	// AddNoise emits a uniformly drawn point of the category interval
	// instead of its midpoint. Draws are seeded so output is reproducible.
	AddNoise bool   `json:"add_noise"`
	Seed     uint64 `json:"seed"`
}

type interval struct {
	category
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type frequencyState struct {
	Config    FrequencyEncoderConfig `json:"config"`
	Intervals []interval             `json:"intervals"`
}

// FrequencyEncoder maps each category to an interval of [0, 1) whose width
// is the category's frequency. Intervals are laid out in category order, so
// with the default order the most frequent category starts at 0.
//
// Nulls are a category of their own. Unseen categories encode to
// UnknownCode, which decodes to core.Unknown.
type FrequencyEncoder struct {
	cfg    FrequencyEncoderConfig
	state  frequencyState
	index  map[string]int
	fitted bool
}

// NewFrequencyEncoder creates an unfitted FrequencyEncoder.
func NewFrequencyEncoder(cfg FrequencyEncoderConfig) *FrequencyEncoder {
	if cfg.Order == "" {
		cfg.Order = OrderFrequency
	}
	return &FrequencyEncoder{cfg: cfg}
}

func (t *FrequencyEncoder) Name() string { return "FrequencyEncoder" }

func (t *FrequencyEncoder) InputSDTypes() []core.SDType {
	return []core.SDType{core.Categorical, core.Boolean, core.Identifier}
}

func (t *FrequencyEncoder) IsFitted() bool { return t.fitted }

func (t *FrequencyEncoder) OutputSuffixes() []string {
	if !t.fitted {
		return nil
	}
	return []string{SuffixValue}
}

// Intervals returns the learned [start, end) interval of every category in
// interval order.
func (t *FrequencyEncoder) Intervals() []Interval {
	out := make([]Interval, len(t.state.Intervals))
	for i, iv := range t.state.Intervals {
		out[i] = Interval{Value: iv.Value, Start: iv.Start, End: iv.End}
	}
	return out
}

// Interval is the public view of a learned category interval.
type Interval struct {
	Value      any
	Start, End float64
}

// Fit learns one interval per category.
func (t *FrequencyEncoder) Fit(col core.Column) error {
	if err := t.cfg.Order.Validate(); err != nil {
		return err
	}

	cats := learnCategories(col.Values, t.cfg.Order)
	intervals := make([]interval, len(cats))
	total := float64(len(col.Values))
	cum := 0
	for i, c := range cats {
		intervals[i] = interval{
			category: c,
			Start:    float64(cum) / total,
			End:      float64(cum+c.Count) / total,
		}
		cum += c.Count
	}

	t.state = frequencyState{Config: t.cfg, Intervals: intervals}
	t.index = categoryIndex(cats)
	t.fitted = true
	return nil
}

// Transform emits the interval midpoint, or a seeded draw from the interval
// when noise is enabled.
func (t *FrequencyEncoder) Transform(values []any) ([][]float64, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}

	var rng *rand.Rand
	if t.cfg.AddNoise {
		rng = rand.New(rand.NewPCG(t.cfg.Seed, uint64(len(values))))
	}

	out := make([]float64, len(values))
	for i, v := range values {
		pos, ok := t.index[categoryKey(v)]
		if !ok {
			out[i] = UnknownCode
			continue
		}
		iv := t.state.Intervals[pos]
		if rng != nil {
			out[i] = iv.Start + rng.Float64()*(iv.End-iv.Start)
		} else {
			out[i] = (iv.Start + iv.End) / 2
		}
	}
	return [][]float64{out}, nil
}

// ReverseTransform snaps every value to the nearest interval. Values inside
// an interval decode to its category; values outside all intervals decode to
// the closest one, and on a tie the lower interval wins. The unknown code is
// a point interval below all categories. NaN decodes to null.
func (t *FrequencyEncoder) ReverseTransform(columns [][]float64, rows int) ([]any, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	if err := checkGroup(t.Name(), columns, 1, rows); err != nil {
		return nil, err
	}

	out := make([]any, rows)
	for i, v := range columns[0] {
		if math.IsNaN(v) {
			continue
		}
		pos := t.nearest(v)
		if pos < 0 {
			out[i] = core.Unknown
			continue
		}
		out[i] = t.state.Intervals[pos].Value
	}
	return out, nil
}

// nearest returns the index of the closest interval to v, or -1 for the
// unknown code.
func (t *FrequencyEncoder) nearest(v float64) int {
	ivs := t.state.Intervals
	if len(ivs) == 0 {
		return -1
	}

	// First interval whose end lies beyond v.
	j := sort.Search(len(ivs), func(i int) bool { return ivs[i].End > v })

	best, bestDist := -1, math.Abs(v-UnknownCode)
	for _, k := range []int{j, j - 1} {
		if k < 0 || k >= len(ivs) {
			continue
		}
		d := distance(v, ivs[k].Start, ivs[k].End)
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// distance from v to the half-open interval [start, end).
func distance(v, start, end float64) float64 {
	switch {
	case v < start:
		return start - v
	case v >= end:
		return v - end
	}
	return 0
}

// MarshalState implements core.Snapshotter.
func (t *FrequencyEncoder) MarshalState() (json.RawMessage, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	return json.Marshal(t.state)
}

// UnmarshalState implements core.Snapshotter.
func (t *FrequencyEncoder) UnmarshalState(data json.RawMessage) error {
	var st frequencyState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode %s state: %w", t.Name(), err)
	}
	cats := make([]category, len(st.Intervals))
	for i, iv := range st.Intervals {
		cats[i] = iv.category
	}

	t.cfg = st.Config
	t.state = st
	t.index = categoryIndex(cats)
	t.fitted = true
	return nil
}
