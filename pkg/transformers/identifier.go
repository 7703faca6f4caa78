package transformers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leaprdt/pkg/core"
	"github.com/leapstack-labs/leaprdt/pkg/nulls"
)

// AnonymizedIdentifierConfig configures an AnonymizedIdentifier.
type AnonymizedIdentifierConfig struct {
	Nulls nulls.Config `json:"nulls"`
	// Prefix is prepended to every generated identifier.
	Prefix string `json:"prefix,omitempty"`
}

type identifierState struct {
	Config AnonymizedIdentifierConfig `json:"config"`
	Field  string                     `json:"field"`
	Nulls  nulls.State                `json:"null_state"`
}

// AnonymizedIdentifier drops identifier values entirely. Its output group is
// empty unless nulls must be modelled, in which case it holds only the null
// indicator. Reverse generates name-based UUIDs from the field name and row
// position, so the same table always decodes to the same identifiers.
type AnonymizedIdentifier struct {
	cfg    AnonymizedIdentifierConfig
	state  identifierState
	nulls  *nulls.Strategy
	fitted bool
}

// NewAnonymizedIdentifier creates an unfitted AnonymizedIdentifier.
func NewAnonymizedIdentifier(cfg AnonymizedIdentifierConfig) *AnonymizedIdentifier {
	return &AnonymizedIdentifier{cfg: cfg}
}

func (t *AnonymizedIdentifier) Name() string { return "AnonymizedIdentifier" }

func (t *AnonymizedIdentifier) InputSDTypes() []core.SDType {
	return []core.SDType{core.Identifier}
}

func (t *AnonymizedIdentifier) IsFitted() bool { return t.fitted }

func (t *AnonymizedIdentifier) OutputSuffixes() []string {
	if !t.fitted {
		return nil
	}
	return nullSuffixes(t.nulls)
}

func (t *AnonymizedIdentifier) Fit(col core.Column) error {
	strategy := nulls.New(t.cfg.Nulls)
	strategy.Fit(presence(col.Values))

	t.state = identifierState{Config: t.cfg, Field: col.Name, Nulls: strategy.MarshalState()}
	t.nulls = strategy
	t.fitted = true
	return nil
}

func (t *AnonymizedIdentifier) Transform(values []any) ([][]float64, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	_, indicator := t.nulls.Transform(presence(values))
	if indicator == nil {
		return [][]float64{}, nil
	}
	return [][]float64{indicator}, nil
}

func (t *AnonymizedIdentifier) ReverseTransform(columns [][]float64, rows int) ([]any, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	if err := checkGroup(t.Name(), columns, len(t.OutputSuffixes()), rows); err != nil {
		return nil, err
	}

	var mask []bool
	if len(columns) == 1 {
		mask = t.nulls.Reverse(make([]float64, rows), columns[0])
	}

	out := make([]any, rows)
	for i := range out {
		if mask != nil && mask[i] {
			continue
		}
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(t.state.Field+"/"+strconv.Itoa(i)))
		out[i] = t.cfg.Prefix + id.String()
	}
	return out, nil
}

// MarshalState implements core.Snapshotter.
func (t *AnonymizedIdentifier) MarshalState() (json.RawMessage, error) {
	if !t.fitted {
		return nil, notFitted(t.Name())
	}
	return json.Marshal(t.state)
}

// UnmarshalState implements core.Snapshotter.
func (t *AnonymizedIdentifier) UnmarshalState(data json.RawMessage) error {
	var st identifierState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode %s state: %w", t.Name(), err)
	}
	strategy := nulls.New(st.Config.Nulls)
	strategy.RestoreState(st.Nulls)

	t.cfg = st.Config
	t.state = st
	t.nulls = strategy
	t.fitted = true
	return nil
}

// presence maps values to 0 and nulls to NaN so the null strategy can
// reason about them.
func presence(values []any) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if core.IsNull(v) {
			out[i] = math.NaN()
		}
	}
	return out
}
