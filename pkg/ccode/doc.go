// Package ccode implements compiled-code objects: a bytecode body plus its
// lazily materialized machine form, breakpoint state, and a small cache of
// type-specialized execution entry points.
//
// # Basic Usage
//
//	prog, _ := bytecode.Assemble(src)
//	code := ccode.FromProgram("main", "script.rbx", prog)
//
//	th := ccode.NewThread()
//	result, err := ccode.ExecuteScript(th, code, root)
//
// # Internalization
//
// A code object starts as portable bytecode. The first execution (or the
// first breakpoint operation) internalizes it: the verifier runs exactly
// once, the machine form is built, and the result is published with
// release semantics so every other goroutine observes a fully constructed
// value. Internalization is monotone; a code object never returns to the
// uninternalized state except through Duplicate, which resets the copy.
//
// # Concurrency
//
// Reads of the machine-code slot and the executor slot are lock-free.
// Internalization, breakpoint administration and specialization
// registration serialize on the code object's own lock. The package never
// creates goroutines.
//
// # Error Handling
//
// Operations that require internalization surface verification failures
// as errors wrapping [bytecode.ErrInvalidBytecode]. Absence (unknown name,
// no enclosing frame, no line info) is reported through a boolean or a
// sentinel value, not an error. Structural invariant violations are
// programming errors and abort the process.
package ccode
