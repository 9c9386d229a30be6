package ccode

import "errors"

// Sentinel errors returned by ccode operations.
//
// Callers classify with [errors.Is]. Verification failures wrap
// [bytecode.ErrInvalidBytecode] and are surfaced by every operation that
// requires internalization.
var (
	// ErrBadBoundary indicates a breakpoint ip that is not an
	// instruction boundary.
	ErrBadBoundary = errors.New("ccode: not an instruction boundary")

	// ErrNoBreakpoint indicates a clear for an ip with no breakpoint.
	ErrNoBreakpoint = errors.New("ccode: no breakpoint at ip")

	// ErrNoMethod indicates dispatch found no installable method for a
	// name along the receiver's module chain.
	ErrNoMethod = errors.New("ccode: undefined method")

	// ErrPrimitiveFailed is returned by a primitive executor to decline
	// the call and fall back to the interpreter path.
	ErrPrimitiveFailed = errors.New("ccode: primitive failed")

	// ErrArity indicates an argument count outside the code's shape.
	ErrArity = errors.New("ccode: wrong number of arguments")

	// ErrTypeMismatch indicates an operand of the wrong runtime type.
	ErrTypeMismatch = errors.New("ccode: type mismatch")
)
