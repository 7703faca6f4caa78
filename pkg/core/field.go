package core

// Field describes one named, typed column of a dataset.
type Field struct {
	Name string `json:"name" yaml:"name"`
	// SDType is the semantic type used to pick a default transformer.
	SDType SDType `json:"sdtype" yaml:"sdtype"`
	// SubType is the detected storage type of the raw values,
	// e.g. "integer", "float", "date", "string".
	SubType  string `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
}
