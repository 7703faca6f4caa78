// Package schema infers the semantic type of dataset columns from their
// values. Detection is advisory: callers can override any field before fit.
package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leaprdt/pkg/core"
)

// Storage sub-types reported on detected fields.
const (
	SubTypeBool     = "boolean"
	SubTypeInteger  = "integer"
	SubTypeFloat    = "float"
	SubTypeDate     = "date"
	SubTypeDateTime = "datetime"
	SubTypeString   = "string"
	SubTypeNull     = "null"
)

// Config tunes detection. All thresholds are deterministic for a fixed sample.
type Config struct {
	// SampleSize bounds the number of leading rows inspected. Zero inspects all rows.
	SampleSize int
	// MaxCategories is the distinct count at or below which string columns are
	// always categorical.
	MaxCategories int
	// MaxCategoricalRatio is the distinct/non-null ratio below which string
	// columns with more than MaxCategories values are still categorical.
	MaxCategoricalRatio float64
}

// DefaultConfig returns the detection defaults.
func DefaultConfig() Config {
	return Config{
		SampleSize:          1000,
		MaxCategories:       20,
		MaxCategoricalRatio: 0.9,
	}
}

// Detector infers fields from a dataset.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect returns one field per column in column order.
func (d *Detector) Detect(ds *core.Dataset) []core.Field {
	fields := make([]core.Field, 0, len(ds.Columns()))
	for _, c := range ds.Columns() {
		fields = append(fields, d.DetectColumn(c))
	}
	return fields
}

// DetectColumn infers the field for a single column.
func (d *Detector) DetectColumn(c core.Column) core.Field {
	p := newColumnProfile()

	values := c.Values
	if d.cfg.SampleSize > 0 && len(values) > d.cfg.SampleSize {
		values = values[:d.cfg.SampleSize]
	}
	for _, v := range values {
		p.record(v)
	}
	// Nulls beyond the sample still make the field nullable.
	if !p.nullable && c.NullCount() > 0 {
		p.nullable = true
	}

	f := core.Field{Name: c.Name, Nullable: p.nullable}
	f.SDType, f.SubType = d.classify(p)
	return f
}

func (d *Detector) classify(p *columnProfile) (core.SDType, string) {
	if p.count == 0 {
		return core.Categorical, SubTypeNull
	}

	switch p.kind() {
	case SubTypeBool:
		return core.Boolean, SubTypeBool
	case SubTypeInteger:
		if p.leadingZeros {
			break
		}
		return core.Numerical, SubTypeInteger
	case SubTypeFloat:
		return core.Numerical, SubTypeFloat
	case SubTypeDate:
		return core.Datetime, SubTypeDate
	case SubTypeDateTime:
		return core.Datetime, SubTypeDateTime
	}

	distinct := len(p.distinct)
	if distinct <= d.cfg.MaxCategories {
		return core.Categorical, SubTypeString
	}
	if float64(distinct)/float64(p.count) < d.cfg.MaxCategoricalRatio {
		return core.Categorical, SubTypeString
	}
	return core.Identifier, SubTypeString
}

// columnProfile aggregates the types observed in one column.
type columnProfile struct {
	count        int
	nullable     bool
	leadingZeros bool
	types        map[string]struct{}
	distinct     map[string]struct{}
}

func newColumnProfile() *columnProfile {
	return &columnProfile{
		types:    make(map[string]struct{}),
		distinct: make(map[string]struct{}),
	}
}

// hasLeadingZeros checks if a valid integer value contains leading zeros.
// This is often an indicator that this is not an integer, but an identifier.
func hasLeadingZeros(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) > 1 && s[0] == '0'
}

func (p *columnProfile) record(v any) {
	if core.IsNull(v) {
		p.nullable = true
		return
	}
	p.count++
	p.distinct[fmt.Sprint(v)] = struct{}{}

	// Short circuit. Already most general type.
	if _, ok := p.types[SubTypeString]; ok {
		return
	}

	switch x := v.(type) {
	case bool:
		p.types[SubTypeBool] = struct{}{}
		return
	case time.Time:
		p.types[SubTypeDateTime] = struct{}{}
		return
	case float32, float64:
		p.types[SubTypeFloat] = struct{}{}
		return
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		p.types[SubTypeInteger] = struct{}{}
		return
	case string:
		p.recordString(x)
		return
	}
	p.types[SubTypeString] = struct{}{}
}

func (p *columnProfile) recordString(s string) {
	if _, ok := ParseInt(s); ok {
		if hasLeadingZeros(s) {
			p.leadingZeros = true
		}
		p.types[SubTypeInteger] = struct{}{}
		return
	}

	if _, ok := ParseFloat(s); ok {
		p.types[SubTypeFloat] = struct{}{}
		return
	}

	if _, ok := ParseBool(s); ok {
		p.types[SubTypeBool] = struct{}{}
		return
	}

	if _, _, ok := ParseDate(s); ok {
		p.types[SubTypeDate] = struct{}{}
		return
	}

	if _, _, ok := ParseDateTime(s); ok {
		p.types[SubTypeDateTime] = struct{}{}
		return
	}

	p.types[SubTypeString] = struct{}{}
}

var generalization = map[[2]string]string{
	{SubTypeInteger, SubTypeFloat}: SubTypeFloat,
	{SubTypeDateTime, SubTypeDate}: SubTypeDateTime,
	{SubTypeDate, SubTypeDateTime}: SubTypeDateTime,
	{SubTypeFloat, SubTypeInteger}: SubTypeFloat,
}

// kind returns the most specific sub-type every recorded value satisfies.
func (p *columnProfile) kind() string {
	var g string
	for _, t := range []string{SubTypeBool, SubTypeInteger, SubTypeFloat, SubTypeDate, SubTypeDateTime, SubTypeString} {
		if _, ok := p.types[t]; !ok {
			continue
		}
		if g == "" {
			g = t
			continue
		}
		if t == g {
			continue
		}
		if next, ok := generalization[[2]string{g, t}]; ok {
			g = next
			continue
		}
		// Everything can be generalized to a string.
		return SubTypeString
	}
	return g
}
