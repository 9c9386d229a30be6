package ccode

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nicolasleger/rubinius/pkg/bytecode"
	"github.com/nicolasleger/rubinius/pkg/object"
	"github.com/nicolasleger/rubinius/pkg/symbol"
)

// Line sentinels.
const (
	// NoStartLine is returned by StartLine when the line map is empty.
	NoStartLine = -1
	// NoLineInfo is returned by Line when the code carries no line map.
	NoLineInfo = -3
)

// NoSplat marks the absence of a splat argument.
const NoSplat = -1

// Executor is a dispatch entry function: given a receiver and arguments,
// it executes a code object on the calling thread.
type Executor func(t *Thread, c *Code, recv object.Value, args []object.Value) (object.Value, error)

// Code is a compiled-code object.
//
// The metadata fields are established at creation and treated as
// immutable from then on. The machine-code slot, the executor slot and
// the breakpoint table follow the locking rules described in the package
// documentation.
type Code struct {
	Bytecode   []uint64
	Literals   []object.Value
	Name       symbol.Symbol
	File       symbol.Symbol
	Scope      *object.Scope
	LocalCount int
	LocalNames []symbol.Symbol

	RequiredArgs int
	TotalArgs    int
	Splat        int // NoSplat when absent
	StackSize    int

	// Primitive names a built-in fast path; the zero symbol means none.
	Primitive symbol.Symbol

	// Lines is the alternating (ip, line) map: [ip0, line0, ip1, line1, ...].
	Lines []int

	hardLock    sync.Mutex
	machine     atomic.Pointer[MachineCode]
	exec        atomic.Pointer[Executor]
	breakpoints map[uint64]any // guarded by hardLock
}

// New allocates a code object with the default dispatch executor
// installed. Callers fill the metadata fields before first use.
func New() *Code {
	c := &Code{Splat: NoSplat}
	c.setExecutor(defaultDispatch)
	return c
}

// FromProgram builds a script-shaped code object (no arguments) from an
// assembled program. Locals and stack are sized generously for tooling
// use; hand-built code objects set their own shape.
func FromProgram(name, file string, prog bytecode.Program) *Code {
	c := New()
	c.Bytecode = prog.Ops
	c.Literals = prog.Literals
	c.Name = symbol.Intern(name)
	c.File = symbol.Intern(file)
	c.LocalCount = 8
	c.StackSize = 32
	return c
}

// Duplicate produces a shallow field copy with a reset machine-code slot
// and the default executor; the copy re-internalizes on first use.
func (c *Code) Duplicate() *Code {
	c.hardLock.Lock()
	defer c.hardLock.Unlock()

	dup := New()
	dup.Bytecode = c.Bytecode
	dup.Literals = c.Literals
	dup.Name = c.Name
	dup.File = c.File
	dup.Scope = c.Scope
	dup.LocalCount = c.LocalCount
	dup.LocalNames = c.LocalNames
	dup.RequiredArgs = c.RequiredArgs
	dup.TotalArgs = c.TotalArgs
	dup.Splat = c.Splat
	dup.StackSize = c.StackSize
	dup.Primitive = c.Primitive
	dup.Lines = c.Lines

	return dup
}

// verifyFn gates internalization; swapped in tests to count invocations.
var verifyFn = func(c *Code) error {
	return bytecode.Verify(c.Bytecode, bytecode.Meta{
		LiteralCount: len(c.Literals),
		LocalCount:   c.LocalCount,
		StackSize:    c.StackSize,
	})
}

// Internalize materializes the machine form.
//
// The fast path is a single acquire load. Losers of the internalization
// race block on the code's lock until the winner publishes, then observe
// the committed value. Once verification succeeds the verifier never runs
// again for this code object. A failure leaves the code unmutated, so
// every later call verifies again and reports the failure.
func (c *Code) Internalize() (*MachineCode, error) {
	if m := c.machine.Load(); m != nil {
		return m, nil
	}

	c.hardLock.Lock()
	defer c.hardLock.Unlock()

	if m := c.machine.Load(); m != nil {
		return m, nil
	}

	if err := verifyFn(c); err != nil {
		return nil, fmt.Errorf("internalize %s: %w", c.Name, err)
	}

	m := newMachineCode(c)

	if !resolvePrimitive(c, m) {
		m.setupArguments(c)
	}

	// Release store: no goroutine can observe a partially constructed
	// machine code through the fast path above.
	c.machine.Store(m)
	c.setExecutor(m.fallback)

	return m, nil
}

// MachineCode returns the internal form if it has been materialized.
func (c *Code) MachineCode() (*MachineCode, bool) {
	m := c.machine.Load()
	return m, m != nil
}

// Line returns the source line active at ip, or NoLineInfo when the code
// carries no line map.
func (c *Code) Line(ip int) int {
	if len(c.Lines) == 0 {
		return NoLineInfo
	}

	for i := 0; i+3 < len(c.Lines); i += 2 {
		if c.Lines[i] <= ip && ip < c.Lines[i+2] {
			return c.Lines[i+1]
		}
	}

	return c.Lines[len(c.Lines)-1]
}

// StartLine returns the line the code begins on, or NoStartLine.
func (c *Code) StartLine() int {
	if len(c.Lines) < 2 {
		return NoStartLine
	}
	return c.Lines[1]
}

// CallSites returns the instruction offsets of every send in the machine
// form, internalizing first.
func (c *Code) CallSites() ([]int, error) {
	m, err := c.Internalize()
	if err != nil {
		return nil, err
	}
	return m.callSites, nil
}

// ConstantCaches returns the instruction offsets of every literal load in
// the machine form, internalizing first.
func (c *Code) ConstantCaches() ([]int, error) {
	m, err := c.Internalize()
	if err != nil {
		return nil, err
	}
	return m.constantCaches, nil
}

// Installable implements object.Method; compiled code binds directly.
func (c *Code) Installable() bool { return true }

// Run invokes the code through its current executor.
func (c *Code) Run(t *Thread, recv object.Value, args []object.Value) (object.Value, error) {
	return (*c.exec.Load())(t, c, recv, args)
}

// Executor returns the current dispatch entry function.
func (c *Code) Executor() Executor { return *c.exec.Load() }

func (c *Code) setExecutor(e Executor) {
	c.exec.Store(&e)
}

// defaultDispatch internalizes on first call and re-enters through the
// executor internalization installed.
func defaultDispatch(t *Thread, c *Code, recv object.Value, args []object.Value) (object.Value, error) {
	if _, err := c.Internalize(); err != nil {
		return nil, err
	}
	return c.Run(t, recv, args)
}
