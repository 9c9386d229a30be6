// Package bytecode defines the word-encoded instruction stream consumed by
// the compiled-code subsystem: the opcode table, the verifier that gates
// internalization, and a text assembler/disassembler for tooling.
//
// A program is a flat []uint64. Each instruction is an opcode word followed
// by its operand words. Jump targets are absolute word offsets. The stream
// is immutable once attached to a code object.
package bytecode

// OpCode is a single instruction word.
type OpCode uint64

// Instruction set.
const (
	OpNop OpCode = iota
	OpPushInt
	OpPushLiteral
	OpPushSelf
	OpPushNil
	OpPushTrue
	OpPushFalse
	OpPushLocal
	OpSetLocal
	OpPop
	OpAdd
	OpSub
	OpMul
	OpLessThan
	OpJump
	OpJumpIfFalse
	OpSend
	OpRet

	opLast // sentinel, not a real opcode
)

// OperandKind classifies an operand word for verification and tooling.
type OperandKind int

const (
	// OperandNone marks unused operand slots in the metadata table.
	OperandNone OperandKind = iota
	// OperandImmediate is a raw two's-complement immediate.
	OperandImmediate
	// OperandLiteral indexes the code object's literal pool. Literal
	// operands are the reference-bearing slots the collector rewrites.
	OperandLiteral
	// OperandLocal indexes the frame's local slots.
	OperandLocal
	// OperandTarget is an absolute jump target (word offset).
	OperandTarget
	// OperandCount is an argument count.
	OperandCount
)

// opInfo describes one opcode. Pops of -1 means the pop count depends on a
// count operand (OpSend pops argc plus the receiver).
type opInfo struct {
	name       string
	operands   [2]OperandKind
	pops       int
	pushes     int
	terminator bool
}

var opTable = [opLast]opInfo{
	OpNop:         {name: "nop"},
	OpPushInt:     {name: "pushint", operands: [2]OperandKind{OperandImmediate}, pushes: 1},
	OpPushLiteral: {name: "pushliteral", operands: [2]OperandKind{OperandLiteral}, pushes: 1},
	OpPushSelf:    {name: "pushself", pushes: 1},
	OpPushNil:     {name: "pushnil", pushes: 1},
	OpPushTrue:    {name: "pushtrue", pushes: 1},
	OpPushFalse:   {name: "pushfalse", pushes: 1},
	OpPushLocal:   {name: "pushlocal", operands: [2]OperandKind{OperandLocal}, pushes: 1},
	OpSetLocal:    {name: "setlocal", operands: [2]OperandKind{OperandLocal}, pops: 1},
	OpPop:         {name: "pop", pops: 1},
	OpAdd:         {name: "add", pops: 2, pushes: 1},
	OpSub:         {name: "sub", pops: 2, pushes: 1},
	OpMul:         {name: "mul", pops: 2, pushes: 1},
	OpLessThan:    {name: "lt", pops: 2, pushes: 1},
	OpJump:        {name: "jmp", operands: [2]OperandKind{OperandTarget}},
	OpJumpIfFalse: {name: "jif", operands: [2]OperandKind{OperandTarget}, pops: 1},
	OpSend:        {name: "send", operands: [2]OperandKind{OperandLiteral, OperandCount}, pops: -1, pushes: 1},
	OpRet:         {name: "ret", pops: 1, terminator: true},
}

// Valid reports whether op is a defined opcode.
func (op OpCode) Valid() bool { return op < opLast }

// Name returns the mnemonic for op, or "op?" for unknown words.
func (op OpCode) Name() string {
	if !op.Valid() {
		return "op?"
	}
	return opTable[op].name
}

// Operands returns how many operand words follow op.
func (op OpCode) Operands() int {
	n := 0
	for _, k := range opTable[op].operands {
		if k != OperandNone {
			n++
		}
	}
	return n
}

// Width returns the full instruction width of op in words.
func (op OpCode) Width() int { return 1 + op.Operands() }

// opByName maps mnemonics back to opcodes for the assembler.
var opByName = func() map[string]OpCode {
	m := make(map[string]OpCode, opLast)
	for op := OpCode(0); op < opLast; op++ {
		m[opTable[op].name] = op
	}
	return m
}()
