package transformers

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
	"github.com/leapstack-labs/leaprdt/pkg/schema"
)

// UnixTimestampEncoderConfig configures a UnixTimestampEncoder.
type UnixTimestampEncoderConfig struct {
	Nulls nulls.Config `json:"nulls"`
	// Unit is the duration one output unit represents. Zero means nanoseconds.
	Unit time.Duration `json:"unit"`
	// Origin is the instant encoded as zero. The zero time means the Unix epoch.
	Origin time.Time `json:"origin"`
	// Layout formats reversed values as strings. When empty, the layout
	// learned from string input is used, and time inputs reverse to time.Time.
	Layout        string `json:"layout,omitempty"`
	EnforceMinMax bool   `json:"enforce_min_max"`
}

type datetimeState struct {
	Config UnixTimestampEncoderConfig `json:"config"`
	// Layout is the layout reversed values are formatted with; empty means
	// reversed values are time.Time.
	Layout string      `json:"layout,omitempty"`
	Min    float64     `json:"min"`
	Max    float64     `json:"max"`
	Nulls  nulls.State `json:"null_state"`
}

// UnixTimestampEncoder encodes datetimes as the number of units elapsed since
// an origin.
type UnixTimestampEncoder struct {
	cfg    UnixTimestampEncoderConfig
	state  datetimeState
	nulls  *nulls.Strategy
	fitted bool
}

// NewUnixTimestampEncoder creates an unfitted UnixTimestampEncoder.
func NewUnixTimestampEncoder(cfg UnixTimestampEncoderConfig) *UnixTimestampEncoder {
	if cfg.Unit <= 0 {
		cfg.Unit = time.Nanosecond
	}
	if cfg.Origin.IsZero() {
		cfg.Origin = time.Unix(0, 0).UTC()
	}
	return &UnixTimestampEncoder{cfg: cfg}
}

func (t *UnixTimestampEncoder) Name() string { return "UnixTimestampEncoder" }

func (t *UnixTimestampEncoder) InputSDTypes() []core.SDType { return []core.SDType{core.Datetime} }

func (t *UnixTimestampEncoder) IsFitted() bool { return t.fitted }

func (t *UnixTimestampEncoder) OutputSuffixes() []string {
	if !t.fitted {
		return nil
	}
	return nullSuffixes(t.nulls, SuffixValue)
}

// Fit learns the layout of string input, the observed range and the null
// decision. A value that is neither a time nor a parseable date string is
// invalid.
func (t *UnixTimestampEncoder) Fit(col core.Column) error {
	values, layout, err := t.toUnits(col.Name, col.Values)
	if err != nil {
		return err
	}
	strategy := nulls.New(t.cfg.Nulls)
	strategy.Fit(values)

	st := datetimeState{Config: t.cfg, Layout: t.cfg.Layout}
	if st.Layout == "" {
		st.Layout = layout
	}
	st.Min, st.Max, _ = nulls.Summary(values)
	st.Nulls = strategy.MarshalState()

	t.state = st
	t.nulls = strategy
	t.fitted = true
	return nil
}

func (t *UnixTimestampEncoder) Transform(values []any) ([][]float64, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	raw, _, err := t.toUnits("", values)
	if err != nil {
		return nil, err
	}
	return emit(t.nulls.Transform(raw)), nil
}

func (t *UnixTimestampEncoder) ReverseTransform(columns [][]float64, rows int) ([]any, error) {
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

	origin := t.cfg.Origin.UnixNano()
	out := make([]any, rows)
	for i, v := range columns[0] {
		if mask[i] {
			continue
		}
		if t.cfg.EnforceMinMax {
			v = clip(v, t.state.Min, t.state.Max)
		}
		// Times beyond the representable range saturate at its ends.
		ns := addSaturating(origin, saturateInt64(v*float64(t.cfg.Unit)))
		ts := time.Unix(0, ns).UTC()
		if t.state.Layout != "" {
			out[i] = ts.Format(t.state.Layout)
		} else {
			out[i] = ts
		}
	}
	return out, nil
}

// MarshalState implements core.Snapshotter.
func (t *UnixTimestampEncoder) MarshalState() (json.RawMessage, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	return json.Marshal(t.state)
}

// UnmarshalState implements core.Snapshotter.
func (t *UnixTimestampEncoder) UnmarshalState(data json.RawMessage) error {
	var st datetimeState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode %s state: %w", t.Name(), err)
	}
	if st.Config.Unit <= 0 {
		st.Config.Unit = time.Nanosecond
	}
	strategy := nulls.New(st.Config.Nulls)
	strategy.RestoreState(st.Nulls)

	t.cfg = st.Config
	t.state = st
	t.nulls = strategy
	t.fitted = true
	return nil
}

// toUnits converts raw values to units since the origin. It returns the
// layout of the first string value.
func (t *UnixTimestampEncoder) toUnits(field string, values []any) ([]float64, string, error) {
	origin := t.cfg.Origin.UnixNano()
	unit := float64(t.cfg.Unit)

	var layout string
	out := make([]float64, len(values))
	for i, v := range values {
		if core.IsNull(v) {
			out[i] = math.NaN()
			continue
		}
		ts, l, ok := schema.ToTime(v)
		if !ok {
			return nil, "", &core.InvalidDataError{Field: field, Row: i, Value: v, Reason: "not a datetime"}
		}
		if layout == "" {
			layout = l
		}
		out[i] = float64(ts.UnixNano()-origin) / unit
	}
	return out, layout, nil
}
