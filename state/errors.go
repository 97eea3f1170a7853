package state

import (
	"errors"
	"fmt"
)

// OutdatedBlockError indicates a finalized DS block closing an epoch that was
// already closed. Applying it again would rotate the committee twice, so the
// block is rejected and the state stays unchanged. This is a benign failure:
// it typically means the block was delivered more than once.
type OutdatedBlockError struct {
	error
}

func NewOutdatedBlockErrorf(msg string, args ...interface{}) error {
	return OutdatedBlockError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e OutdatedBlockError) Unwrap() error {
	return e.error
}

// IsOutdatedBlockError returns whether the given error is an OutdatedBlockError error
func IsOutdatedBlockError(err error) bool {
	return errors.As(err, &OutdatedBlockError{})
}

// InvalidBlockError indicates a finalized DS block whose content cannot be
// applied to the committee state, independently of the current state.
type InvalidBlockError struct {
	error
}

func NewInvalidBlockErrorf(msg string, args ...interface{}) error {
	return InvalidBlockError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e InvalidBlockError) Unwrap() error {
	return e.error
}

// IsInvalidBlockError returns whether the given error is an InvalidBlockError error
func IsInvalidBlockError(err error) bool {
	return errors.As(err, &InvalidBlockError{})
}
