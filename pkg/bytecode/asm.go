package bytecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nicolasleger/rubinius/pkg/object"
	"github.com/nicolasleger/rubinius/pkg/symbol"
)

// ErrSyntax classifies assembler parse failures.
var ErrSyntax = errors.New("bytecode: syntax error")

// Program is the assembler's output: an instruction stream plus the
// literal pool its literal operands index.
type Program struct {
	Ops      []uint64
	Literals []object.Value
}

// Assemble parses the text form of a program.
//
// One instruction per line. Comments start with ';'. Labels are a bare
// identifier followed by ':'. Operands are decimal integers, label
// references, quoted strings (interned into the literal pool), or
// :name symbols (ditto). Example:
//
//	pushint 10
//	setlocal 0
//	loop:
//	pushlocal 0
//	pushint 1
//	sub
//	setlocal 0
//	pushlocal 0
//	jif loop
//	pushself
//	send :report 0
//	ret
func Assemble(src string) (Program, error) {
	var prog Program

	labels := make(map[string]uint64)
	type fixup struct {
		offset int
		label  string
		line   int
	}
	var fixups []fixup

	litIndex := func(v object.Value) uint64 {
		for i, have := range prog.Literals {
			if have == v {
				return uint64(i)
			}
		}
		prog.Literals = append(prog.Literals, v)
		return uint64(len(prog.Literals) - 1)
	}

	for lineNo, raw := range strings.Split(src, "\n") {
		line := raw
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if name, ok := strings.CutSuffix(fields[0], ":"); ok && len(fields) == 1 {
			if _, dup := labels[name]; dup {
				return Program{}, fmt.Errorf("%w: duplicate label %q on line %d", ErrSyntax, name, lineNo+1)
			}
			labels[name] = uint64(len(prog.Ops))
			continue
		}

		op, ok := opByName[fields[0]]
		if !ok {
			return Program{}, fmt.Errorf("%w: unknown mnemonic %q on line %d", ErrSyntax, fields[0], lineNo+1)
		}

		if len(fields)-1 != op.Operands() {
			return Program{}, fmt.Errorf("%w: %s takes %d operand(s), got %d on line %d",
				ErrSyntax, op.Name(), op.Operands(), len(fields)-1, lineNo+1)
		}

		prog.Ops = append(prog.Ops, uint64(op))

		for i, arg := range fields[1:] {
			kind := opTable[op].operands[i]

			switch {
			case kind == OperandLiteral && strings.HasPrefix(arg, ":"):
				prog.Ops = append(prog.Ops, litIndex(symbol.Intern(arg[1:])))
			case kind == OperandLiteral && strings.HasPrefix(arg, `"`):
				s, err := strconv.Unquote(arg)
				if err != nil {
					return Program{}, fmt.Errorf("%w: bad string %s on line %d", ErrSyntax, arg, lineNo+1)
				}
				prog.Ops = append(prog.Ops, litIndex(s))
			case kind == OperandTarget:
				if target, ok := labels[arg]; ok {
					prog.Ops = append(prog.Ops, target)
					continue
				}
				fixups = append(fixups, fixup{offset: len(prog.Ops), label: arg, line: lineNo + 1})
				prog.Ops = append(prog.Ops, 0)
			default:
				n, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return Program{}, fmt.Errorf("%w: bad operand %q on line %d", ErrSyntax, arg, lineNo+1)
				}
				prog.Ops = append(prog.Ops, uint64(n))
			}
		}
	}

	for _, f := range fixups {
		target, ok := labels[f.label]
		if !ok {
			return Program{}, fmt.Errorf("%w: undefined label %q on line %d", ErrSyntax, f.label, f.line)
		}
		prog.Ops[f.offset] = target
	}

	return prog, nil
}

// Disassemble renders ops as one instruction per line, annotating literal
// operands from the pool when one is supplied.
func Disassemble(ops []uint64, literals []object.Value) string {
	var b strings.Builder

	for ip := 0; ip < len(ops); {
		op := OpCode(ops[ip])
		if !op.Valid() {
			fmt.Fprintf(&b, "%04d  .word %d\n", ip, ops[ip])
			ip++
			continue
		}

		fmt.Fprintf(&b, "%04d  %s", ip, op.Name())

		for i := 0; i < op.Operands(); i++ {
			operand := ops[ip+1+i]
			fmt.Fprintf(&b, " %d", operand)

			if opTable[op].operands[i] == OperandLiteral && operand < uint64(len(literals)) {
				fmt.Fprintf(&b, " (%v)", literals[operand])
			}
		}

		b.WriteByte('\n')
		ip += op.Width()
	}

	return b.String()
}
