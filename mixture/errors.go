package mixture

import "errors"

var (
	// ErrEmptyGroup is returned when removing the designated empty slot or
	// a value from an unoccupied slot.
	ErrEmptyGroup = errors.New("empty group")

	// ErrGroupOutOfRange is returned for slot indices beyond the slot count.
	ErrGroupOutOfRange = errors.New("group out of range")

	// ErrNotImplemented is returned for feature kinds with no model wired.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidModel is returned when a model definition fails validation.
	ErrInvalidModel = errors.New("invalid model")

	// ErrCorruptDump is returned when a group dump does not match the model.
	ErrCorruptDump = errors.New("corrupt group dump")
)
