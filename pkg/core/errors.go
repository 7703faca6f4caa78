package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrNotFitted      = errors.New("not fitted")
	ErrInvalidData    = errors.New("invalid data")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrUnknownColumns = errors.New("unknown columns")
	ErrMissingColumns = errors.New("missing columns")
)

// NotFittedError is returned when transform or reverse transform is called
// before a successful fit.
type NotFittedError struct {
	Component string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s is not fitted: call Fit before using it", e.Component)
}

func (e *NotFittedError) Is(target error) bool { return target == ErrNotFitted }

// InvalidDataError reports a value that cannot be interpreted as the
// semantic type its field declares.
type InvalidDataError struct {
	Field  string
	Row    int
	Value  any
	Reason string
	Cause  error
}

func (e *InvalidDataError) Error() string {
	var b strings.Builder
	b.WriteString("invalid data")
	if e.Field != "" {
		fmt.Fprintf(&b, " in field %q", e.Field)
	}
	if e.Row >= 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Value != nil {
		fmt.Fprintf(&b, " (%v)", e.Value)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *InvalidDataError) Unwrap() error { return e.Cause }

func (e *InvalidDataError) Is(target error) bool { return target == ErrInvalidData }

// SchemaMismatchError is returned when a transformer is assigned to a field
// whose semantic type it does not accept.
type SchemaMismatchError struct {
	Field       string
	SDType      SDType
	Transformer string
	Accepts     []SDType
}

func (e *SchemaMismatchError) Error() string {
	accepts := make([]string, len(e.Accepts))
	for i, t := range e.Accepts {
		accepts[i] = t.String()
	}
	return fmt.Sprintf("transformer %s cannot be used for field %q of sdtype %s (accepts: %s)",
		e.Transformer, e.Field, e.SDType, strings.Join(accepts, ", "))
}

func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// UnknownColumnsError lists input columns that were not part of the fit.
type UnknownColumnsError struct {
	Columns []string
}

func (e *UnknownColumnsError) Error() string {
	return fmt.Sprintf("unknown columns: %s", strings.Join(e.Columns, ", "))
}

func (e *UnknownColumnsError) Is(target error) bool { return target == ErrUnknownColumns }

// MissingColumnsError lists expected columns that are absent from the input.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumns }
