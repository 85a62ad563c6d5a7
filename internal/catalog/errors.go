package catalog

import (
	"errors"
	"fmt"

	"catnorm/internal"
)

var (
	// ErrNotFound is returned when the input document does not exist.
	ErrNotFound = errors.New("input not found")

	// ErrParse is returned when the input is not a JSON array.
	ErrParse = errors.New("invalid catalog json")

	// ErrMissingField is returned when a record lacks a category or brand string.
	ErrMissingField = errors.New("missing field")

	// ErrLookup is returned when a record value has no dictionary identifier.
	ErrLookup = errors.New("value not in dictionary")

	// ErrWrite is returned when an output document cannot be written.
	ErrWrite = errors.New("write failed")
)

// FieldError points at the record that broke a build or rewrite.
type FieldError struct {
	Index  int
	Field  internal.Field
	Value  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("product %d: %s %s", e.Index, e.Field, e.Err)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
