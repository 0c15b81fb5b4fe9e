package luajit

// #include "shim.h"
import "C"

import (
	"errors"
	"fmt"
)

// Status is the outcome of a load, call or resume.
//
// Status also implements error so it can be used as a target for
// [errors.Is]:
//
//	if errors.Is(err, luajit.StatusSyntaxError) { ... }
type Status int

const (
	StatusOK Status = iota
	StatusYield
	StatusRuntimeError
	StatusSyntaxError
	StatusMemoryError
	StatusHandlerError
	StatusFileError
	StatusUnknown
)

// statusFromCode maps a native status code to a Status.
func statusFromCode(code int) Status {
	switch code {
	case C.LUA_OK:
		return StatusOK
	case C.LUA_YIELD:
		return StatusYield
	case C.LUA_ERRRUN:
		return StatusRuntimeError
	case C.LUA_ERRSYNTAX:
		return StatusSyntaxError
	case C.LUA_ERRMEM:
		return StatusMemoryError
	case C.LUA_ERRERR:
		return StatusHandlerError
	case C.LUA_ERRFILE:
		return StatusFileError
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusYield:
		return "yield"
	case StatusRuntimeError:
		return "runtime error"
	case StatusSyntaxError:
		return "syntax error"
	case StatusMemoryError:
		return "memory allocation error"
	case StatusHandlerError:
		return "error in error handler"
	case StatusFileError:
		return "file error"
	default:
		return "unknown error"
	}
}

func (s Status) Error() string { return s.String() }

// Error is returned by operations that fail inside the interpreter.
// Message is the error value left on top of the stack, if it was a string.
type Error struct {
	Status  Status
	Code    int // raw native status code
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status == StatusUnknown {
		return fmt.Sprintf("unknown error (status %d)", e.Code)
	}
	return e.Status.String()
}

// Is reports whether target is the Status carried by e.
func (e *Error) Is(target error) bool {
	s, ok := target.(Status)
	return ok && s == e.Status
}

// StatusOf returns the Status carried by err.
// A nil error is StatusOK and an error not produced by this package is
// StatusUnknown.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusUnknown
}

// newError builds an Error from code and the message on top of the stack.
// The stack is left unchanged.
func (l *State) newError(code C.int) *Error {
	e := &Error{Status: statusFromCode(int(code)), Code: int(code)}
	if l.Type(-1) == TypeString {
		e.Message, _ = l.ToString(-1)
	}
	return e
}
