package mixgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mixgo/distributions"
	"github.com/hupe1980/mixgo/internal/stream"
	"github.com/hupe1980/mixgo/mixture"
	"github.com/hupe1980/mixgo/value"
)

var (
	// ErrInvalidOperation is returned for operations the current state does
	// not allow, such as removing from the designated empty group.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrSchemaViolation is returned for rows that do not match the model.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrNotImplemented is returned for feature kinds with no model wired.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidModel is returned when a model definition fails validation.
	ErrInvalidModel = errors.New("invalid model")

	// ErrCorruptDump is returned when a groups or assignments dump cannot be
	// read back.
	ErrCorruptDump = errors.New("corrupt dump")

	// ErrNoAssignment is returned when removing a row that was never added.
	ErrNoAssignment = fmt.Errorf("%w: row has no assignment", ErrInvalidOperation)

	// ErrDuplicateAssignment is returned when adding a row id twice.
	ErrDuplicateAssignment = fmt.Errorf("%w: row already assigned", ErrInvalidOperation)
)

// ErrRow reports which row of an inference pass failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrRow struct {
	RowID  uint64
	Offset int
	cause  error
}

func (e *ErrRow) Error() string {
	return fmt.Sprintf("row %d (offset %d): %v", e.RowID, e.Offset, e.cause)
}

func (e *ErrRow) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already translated.
	if errors.Is(err, ErrInvalidOperation) || errors.Is(err, ErrSchemaViolation) ||
		errors.Is(err, ErrNotImplemented) || errors.Is(err, ErrInvalidModel) ||
		errors.Is(err, ErrCorruptDump) {
		return err
	}

	if errors.Is(err, mixture.ErrEmptyGroup) || errors.Is(err, mixture.ErrGroupOutOfRange) {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	if errors.Is(err, value.ErrSchemaViolation) || errors.Is(err, value.ErrMalformedRow) {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	if errors.Is(err, mixture.ErrNotImplemented) || errors.Is(err, distributions.ErrNotImplemented) {
		return fmt.Errorf("%w: %w", ErrNotImplemented, err)
	}
	if errors.Is(err, mixture.ErrInvalidModel) || errors.Is(err, distributions.ErrInvalidHyperparameter) {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if errors.Is(err, mixture.ErrCorruptDump) || errors.Is(err, stream.ErrInvalidCRC) ||
		errors.Is(err, stream.ErrInvalidHeader) || errors.Is(err, stream.ErrIncompatibleVersion) ||
		errors.Is(err, stream.ErrTruncated) || errors.Is(err, stream.ErrRecordTooLarge) {
		return fmt.Errorf("%w: %w", ErrCorruptDump, err)
	}

	return err
}
