package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SDType is the semantic type of a field.
type SDType uint8

// Semantic types. The set is closed.
const (
	UnknownSDType SDType = iota
	Numerical
	Categorical
	Boolean
	Datetime
	Identifier
)

// SDTypes lists every valid semantic type in declaration order.
var SDTypes = []SDType{Numerical, Categorical, Boolean, Datetime, Identifier}

func (t SDType) String() string {
	switch t {
	case Numerical:
		return "numerical"
	case Categorical:
		return "categorical"
	case Boolean:
		return "boolean"
	case Datetime:
		return "datetime"
	case Identifier:
		return "identifier"
	}
	return "unknown"
}

// Valid reports whether t is one of the known semantic types.
func (t SDType) Valid() bool {
	return t >= Numerical && t <= Identifier
}

// ParseSDType parses the textual form of a semantic type.
func ParseSDType(s string) (SDType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numerical", "numeric", "float", "integer":
		return Numerical, nil
	case "categorical", "category":
		return Categorical, nil
	case "boolean", "bool":
		return Boolean, nil
	case "datetime", "date":
		return Datetime, nil
	case "identifier", "id", "pii", "text":
		return Identifier, nil
	}
	return UnknownSDType, fmt.Errorf("unknown sdtype %q", s)
}

func (t SDType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *SDType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseSDType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t SDType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *SDType) UnmarshalText(b []byte) error {
	parsed, err := ParseSDType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
