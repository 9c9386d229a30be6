package ccode

import (
	"fmt"

	"github.com/nicolasleger/rubinius/pkg/bytecode"
	"github.com/nicolasleger/rubinius/pkg/object"
	"github.com/nicolasleger/rubinius/pkg/symbol"
)

// interpret runs the machine form on t. The stream was verified at
// internalization time, so operand and stack bounds hold by construction;
// only value-level conditions (types, arity of sends, unknown names) can
// fail here.
func interpret(t *Thread, c *Code, m *MachineCode, recv object.Value, args []object.Value) (object.Value, error) {
	return run(t, c, m, recv, args, false)
}

// interpretDebug is the debugging variant: it consults the breakpoint
// table before every instruction and invokes the thread's hook on a hit.
func interpretDebug(t *Thread, c *Code, m *MachineCode, recv object.Value, args []object.Value) (object.Value, error) {
	return run(t, c, m, recv, args, true)
}

func run(t *Thread, c *Code, m *MachineCode, recv object.Value, args []object.Value, debug bool) (object.Value, error) {
	frame := &Frame{Code: c}
	t.pushFrame(frame)
	defer t.popFrame()

	locals := make([]object.Value, m.localCount)
	bindArgs(m, locals, args)

	stack := make([]object.Value, 0, m.stackSize)
	push := func(v object.Value) { stack = append(stack, v) }
	pop := func() object.Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for ip := 0; ip < len(m.Opcodes); {
		frame.IP = ip
		op := bytecode.OpCode(m.Opcodes[ip])

		if debug {
			if data, ok := c.breakpointAt(uint64(ip)); ok && t.BreakpointHook != nil {
				t.BreakpointHook(c, ip, data)
			}
		}

		switch op {
		case bytecode.OpNop:

		case bytecode.OpPushInt:
			push(int64(m.Opcodes[ip+1]))

		case bytecode.OpPushLiteral:
			push(m.refs[m.Opcodes[ip+1]])

		case bytecode.OpPushSelf:
			push(recv)

		case bytecode.OpPushNil:
			push(nil)

		case bytecode.OpPushTrue:
			push(true)

		case bytecode.OpPushFalse:
			push(false)

		case bytecode.OpPushLocal:
			push(locals[m.Opcodes[ip+1]])

		case bytecode.OpSetLocal:
			locals[m.Opcodes[ip+1]] = pop()

		case bytecode.OpPop:
			pop()

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpLessThan:
			rhs, lhs := pop(), pop()
			v, err := arith(op, lhs, rhs, c, ip)
			if err != nil {
				return nil, err
			}
			push(v)

		case bytecode.OpJump:
			ip = int(m.Opcodes[ip+1])
			continue

		case bytecode.OpJumpIfFalse:
			if falsy(pop()) {
				ip = int(m.Opcodes[ip+1])
				continue
			}

		case bytecode.OpSend:
			name, _ := m.refs[m.Opcodes[ip+1]].(symbol.Symbol)
			argc := int(m.Opcodes[ip+2])

			callArgs := make([]object.Value, argc)
			for i := argc - 1; i >= 0; i-- {
				callArgs[i] = pop()
			}
			target := pop()

			v, err := send(t, target, name, callArgs)
			if err != nil {
				return nil, err
			}
			push(v)

		case bytecode.OpRet:
			return pop(), nil
		}

		ip += op.Width()
	}

	// Unreachable: the verifier requires a terminating instruction.
	bug("interpreter fell off the end of the stream")
	return nil, nil
}

// bindArgs copies args into the leading local slots; with a splat, the
// overflow is collected into the splat local.
func bindArgs(m *MachineCode, locals []object.Value, args []object.Value) {
	fixed := len(args)
	if fixed > m.totalArgs {
		fixed = m.totalArgs
	}

	copy(locals, args[:fixed])

	if m.splat >= 0 {
		rest := append([]object.Value(nil), args[fixed:]...)
		locals[m.splat] = rest
	}
}

// send resolves name along the receiver's module chain and invokes the
// bound code through its current executor.
func send(t *Thread, recv object.Value, name symbol.Symbol, args []object.Value) (object.Value, error) {
	mod, ok := moduleOf(recv)
	if !ok {
		return nil, fmt.Errorf("%w: %s on unclassed receiver %T", ErrNoMethod, name, recv)
	}

	bucket, ok := mod.ResolveMethod(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s for %s", ErrNoMethod, name, mod.Name)
	}

	code, ok := bucket.Method().(*Code)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not executable", ErrNoMethod, name)
	}

	return code.Run(t, recv, args)
}

func arith(op bytecode.OpCode, lhs, rhs object.Value, c *Code, ip int) (object.Value, error) {
	a, aok := lhs.(int64)
	b, bok := rhs.(int64)
	if !aok || !bok {
		return nil, fmt.Errorf("%w: %s on %T and %T (%s:%d)",
			ErrTypeMismatch, op.Name(), lhs, rhs, c.File, c.Line(ip))
	}

	switch op {
	case bytecode.OpAdd:
		return a + b, nil
	case bytecode.OpSub:
		return a - b, nil
	case bytecode.OpMul:
		return a * b, nil
	default:
		return a < b, nil
	}
}

func falsy(v object.Value) bool {
	return v == nil || v == false
}
