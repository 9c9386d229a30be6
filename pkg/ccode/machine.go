package ccode

import (
	"sync/atomic"

	"github.com/nicolasleger/rubinius/pkg/bytecode"
	"github.com/nicolasleger/rubinius/pkg/object"
)

// MachineCode is the interpretable internal form of a code object.
//
// It is constructed once, under the code's lock, from an already verified
// bytecode body, and published through the code's machine slot. After
// publication only the debugging flag, the specialization cache and the
// jit bookkeeping change, each under the rules noted on the field.
type MachineCode struct {
	// Opcodes is the decoded instruction stream. Literal operands are
	// rewritten at build time to index the refs table below.
	Opcodes []uint64

	// refs holds the object references embedded in the instruction
	// stream; references lists the operand-word offsets whose value
	// indexes refs. The collector rewrites refs in place during
	// stop-the-world marking (see Code.Mark).
	refs       []object.Value
	references []int

	boundaries map[uint64]bool

	callSites      []int
	constantCaches []int

	totalArgs    int
	requiredArgs int
	splat        int
	localCount   int
	stackSize    int

	// fallback is the executor installed as the code's entry after
	// internalization: the generic interpreter entry, or the resolved
	// primitive. Set once during build.
	fallback Executor

	// primitive records whether fallback is a resolved primitive.
	primitive bool

	// unspecialized is the executor for receivers with no specialized
	// variant. Written under the code's lock, read lock-free.
	unspecialized atomic.Pointer[Executor]

	specializations [maxSpecializations]specialization

	// debugging selects the debugging interpreter variant.
	debugging atomic.Bool

	// jit bookkeeping; guarded by the code's lock, walked by the
	// collector with mutators stopped.
	jitEligible       bool
	jitData           any
	unspecializedData any
}

// newMachineCode decodes a verified bytecode body into its internal form.
func newMachineCode(c *Code) *MachineCode {
	m := &MachineCode{
		Opcodes:      append([]uint64(nil), c.Bytecode...),
		totalArgs:    c.TotalArgs,
		requiredArgs: c.RequiredArgs,
		splat:        c.Splat,
		localCount:   c.LocalCount,
		stackSize:    c.StackSize,
	}

	// The stream was verified; Boundaries cannot fail here.
	m.boundaries, _ = bytecode.Boundaries(m.Opcodes)

	// Embed the referenced literals: literal operands become indices
	// into the machine code's own refs table.
	for _, off := range bytecode.ReferenceOffsets(m.Opcodes) {
		lit := c.Literals[m.Opcodes[off]]
		m.Opcodes[off] = uint64(len(m.refs))
		m.refs = append(m.refs, lit)
		m.references = append(m.references, off)
	}

	for ip := 0; ip < len(m.Opcodes); {
		op := bytecode.OpCode(m.Opcodes[ip])
		switch op {
		case bytecode.OpSend:
			m.callSites = append(m.callSites, ip)
		case bytecode.OpPushLiteral:
			m.constantCaches = append(m.constantCaches, ip)
		}
		ip += op.Width()
	}

	m.fallback = interpreterEntry

	return m
}

// setupArguments validates the argument shape for codes without a
// primitive. Shape errors surface at call time through checkArity.
func (m *MachineCode) setupArguments(c *Code) {
	if m.totalArgs < m.requiredArgs {
		m.totalArgs = m.requiredArgs
	}
	if m.splat >= 0 && m.splat >= m.localCount {
		bug("splat local out of range")
	}
}

// checkArity validates an incoming argument count against the shape.
func (m *MachineCode) checkArity(argc int) error {
	if argc < m.requiredArgs {
		return ErrArity
	}
	if argc > m.totalArgs && m.splat < 0 {
		return ErrArity
	}
	return nil
}

// IsBoundary reports whether ip starts an instruction.
func (m *MachineCode) IsBoundary(ip uint64) bool { return m.boundaries[ip] }

// Debugging reports whether the debugging interpreter variant is active.
func (m *MachineCode) Debugging() bool { return m.debugging.Load() }

// JITEligible reports whether a specialization has marked this machine
// code for the native backend.
func (m *MachineCode) JITEligible() bool { return m.jitEligible }

// interpreterEntry is the generic interpreter entry: the unspecialized
// fallback installed after internalization when no primitive resolves.
func interpreterEntry(t *Thread, c *Code, recv object.Value, args []object.Value) (object.Value, error) {
	m := c.machine.Load()
	if m == nil {
		bug("interpreter entry without machine code")
	}

	if err := m.checkArity(len(args)); err != nil {
		return nil, err
	}

	if m.debugging.Load() {
		return interpretDebug(t, c, m, recv, args)
	}
	return interpret(t, c, m, recv, args)
}
