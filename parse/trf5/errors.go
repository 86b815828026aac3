package trf5

import (
	"errors"
	"fmt"
)

var (
	ErrMissingIdentifier = errors.New("neither case numbers nor taxpayer id supplied")
	ErrDateParse         = errors.New("invalid calendar date")
	ErrNotFound          = errors.New("element not found")
)

// ConfigurationError reports unusable task input. It is returned before any
// request is emitted.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "trf5: configuration: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ExtractionGap is a field that could not be recovered from a detail page.
// Gaps are absorbed as null values in the record.
type ExtractionGap struct {
	Field string
	Err   error
}

func (g *ExtractionGap) Error() string {
	return fmt.Sprintf("%s: %v", g.Field, g.Err)
}

func (g *ExtractionGap) Unwrap() error {
	return g.Err
}
