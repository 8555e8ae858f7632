package value

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaViolation is returned when a row disagrees with its schema.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrMalformedRow is returned when decoding a binary row fails.
	ErrMalformedRow = errors.New("malformed row encoding")
)

// ErrShapeMismatch reports a field whose length disagrees with the schema.
//
// It matches ErrSchemaViolation via errors.Is.
type ErrShapeMismatch struct {
	Field string
	Want  int
	Got   int
	// AtMost is set when Want is an upper bound rather than an exact size.
	AtMost bool
}

func (e *ErrShapeMismatch) Error() string {
	if e.AtMost {
		return fmt.Sprintf("schema violation: %s size %d exceeds %d", e.Field, e.Got, e.Want)
	}
	return fmt.Sprintf("schema violation: %s size %d, want %d", e.Field, e.Got, e.Want)
}

func (e *ErrShapeMismatch) Unwrap() error { return ErrSchemaViolation }

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...))
}
