package bytecode

import (
	"errors"
	"fmt"
)

// ErrInvalidBytecode is the classification sentinel for all verification
// failures. Wrapped errors carry the offending word offset.
var ErrInvalidBytecode = errors.New("bytecode: invalid")

// Meta carries the code-object metadata the verifier checks operands
// against.
type Meta struct {
	LiteralCount int
	LocalCount   int
	StackSize    int
}

// Verify validates a program against meta.
//
// Checks performed: every word decodes to a known opcode with its operands
// in range, jump targets land on instruction boundaries, the stream does
// not end mid-instruction, the final instruction terminates or jumps
// backward, and the linearly tracked operand-stack depth never underflows
// or exceeds meta.StackSize. A zero meta.StackSize leaves the depth
// unbounded; only underflow is checked then.
//
// Verify is pure: it never mutates the stream and holds no state between
// calls.
func Verify(ops []uint64, meta Meta) error {
	if len(ops) == 0 {
		return fmt.Errorf("%w: empty program", ErrInvalidBytecode)
	}

	boundaries, err := boundarySet(ops)
	if err != nil {
		return err
	}

	depth := 0
	lastIP := 0

	for ip := 0; ip < len(ops); {
		lastIP = ip
		op := OpCode(ops[ip])
		info := opTable[op]

		for i, kind := range info.operands {
			if kind == OperandNone {
				continue
			}

			operand := ops[ip+1+i]

			switch kind {
			case OperandLiteral:
				if operand >= uint64(meta.LiteralCount) {
					return fmt.Errorf("%w: literal %d out of range at %d", ErrInvalidBytecode, operand, ip)
				}
			case OperandLocal:
				if operand >= uint64(meta.LocalCount) {
					return fmt.Errorf("%w: local %d out of range at %d", ErrInvalidBytecode, operand, ip)
				}
			case OperandTarget:
				if operand >= uint64(len(ops)) || !boundaries[operand] {
					return fmt.Errorf("%w: jump target %d not an instruction boundary at %d", ErrInvalidBytecode, operand, ip)
				}
			case OperandImmediate, OperandCount:
				// Unconstrained here; counts are checked with the
				// stack depth below.
			}
		}

		pops := info.pops
		if op == OpSend {
			argc := int(ops[ip+2])
			pops = argc + 1
		}

		depth -= pops
		if depth < 0 {
			return fmt.Errorf("%w: stack underflow at %d", ErrInvalidBytecode, ip)
		}

		depth += info.pushes
		if meta.StackSize > 0 && depth > meta.StackSize {
			return fmt.Errorf("%w: stack depth %d exceeds %d at %d", ErrInvalidBytecode, depth, meta.StackSize, ip)
		}

		ip += op.Width()
	}

	last := OpCode(ops[lastIP])
	if !opTable[last].terminator && last != OpJump {
		return fmt.Errorf("%w: program falls off the end", ErrInvalidBytecode)
	}

	return nil
}

// Boundaries returns the set of valid instruction start offsets.
func Boundaries(ops []uint64) (map[uint64]bool, error) {
	return boundarySet(ops)
}

func boundarySet(ops []uint64) (map[uint64]bool, error) {
	boundaries := make(map[uint64]bool, len(ops))

	for ip := 0; ip < len(ops); {
		op := OpCode(ops[ip])
		if !op.Valid() {
			return nil, fmt.Errorf("%w: unknown opcode %d at %d", ErrInvalidBytecode, ops[ip], ip)
		}

		if ip+op.Width() > len(ops) {
			return nil, fmt.Errorf("%w: truncated instruction at %d", ErrInvalidBytecode, ip)
		}

		boundaries[uint64(ip)] = true
		ip += op.Width()
	}

	return boundaries, nil
}

// ReferenceOffsets returns the word offsets of every literal operand in
// ops. These are the slots whose decoded form embeds object references.
//
// The stream must already be structurally valid (see Boundaries).
func ReferenceOffsets(ops []uint64) []int {
	var offsets []int

	for ip := 0; ip < len(ops); {
		op := OpCode(ops[ip])
		for i, kind := range opTable[op].operands {
			if kind == OperandLiteral {
				offsets = append(offsets, ip+1+i)
			}
		}
		ip += op.Width()
	}

	return offsets
}
