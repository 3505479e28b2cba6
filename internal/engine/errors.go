package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// Error is returned by every failed Service operation. Kind is one of the
// sentinel errors above, so callers can use errors.Is.
type Error struct {
	Kind error
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func notFound(op, format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func precondition(op, format string, args ...any) *Error {
	return &Error{Kind: ErrPreconditionFailed, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalid(op, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}
