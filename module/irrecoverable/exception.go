package irrecoverable

import (
	"errors"
	"fmt"
)

// exception represents an unexpected error. An unexpected error is any error
// returned by a function, other than the error types documented as possible
// return values of that function. For committee bookkeeping, this covers every
// condition under which honest nodes could diverge; the block being processed
// must be aborted and the error surfaced to the operator.
type exception struct {
	err error
}

func (e exception) Error() string {
	return e.err.Error()
}

func (e exception) Unwrap() error {
	return e.err
}

// NewException wraps the input error as an exception, stripping any sentinel
// error information from the error string so that it cannot be mistaken for
// a benign error further up the stack.
func NewException(err error) error {
	return exception{err: err}
}

// NewExceptionf is like NewException but formats the message.
func NewExceptionf(msg string, args ...interface{}) error {
	return NewException(fmt.Errorf(msg, args...))
}

// IsException reports whether the error chain contains an exception.
func IsException(err error) bool {
	var e exception
	return errors.As(err, &e)
}
