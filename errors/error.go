// Package errors is just a simple error package which maintains a
// stack trace with every error. It is meant for the host-side parts of
// this repository (drivers, tooling); sentinel errors that must stay
// identity-comparable, like nb.ErrWouldBlock, come from the standard
// library instead.
package errors

import (
	"fmt"
	"runtime/debug"
)

type Error struct {
	Err   error
	Stack []byte
}

func Errorf(format string, args ...interface{}) error {
	return &Error{
		Err:   fmt.Errorf(format, args...),
		Stack: debug.Stack(),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s\n%s", e.Err, string(e.Stack))
}

func (e *Error) String() string {
	return e.Error()
}

// Unwrap exposes the underlying error so errors.Is and errors.As see
// through the attached trace.
func (e *Error) Unwrap() error {
	return e.Err
}
