package vm

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of these, so callers
// can match with errors.Is.
var (
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrInvalidJumpTarget = errors.New("invalid jump target")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrIO                = errors.New("i/o error")
	ErrOverflow          = errors.New("integer overflow")
)

// Error is a fatal runtime error. It aborts Run.
type Error struct {
	Kind   error
	Op     string // opcode being executed
	IP     int    // address of that opcode
	Detail string
	Err    error // underlying cause, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s at %d (%s)", e.Kind, e.IP, e.Op)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// opError is returned by op implementations; Run fills in Op and IP.
type opError struct {
	kind   error
	detail string
	err    error
}

func (e *opError) Error() string {
	if e.detail != "" {
		return e.kind.Error() + ": " + e.detail
	}
	return e.kind.Error()
}

func fail(kind error, format string, args ...any) error {
	return &opError{kind: kind, detail: fmt.Sprintf(format, args...)}
}

func failIO(err error) error {
	return &opError{kind: ErrIO, err: err}
}
