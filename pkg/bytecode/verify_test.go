package bytecode_test

import (
	"errors"
	"testing"

	"github.com/nicolasleger/rubinius/pkg/bytecode"
)

func meta() bytecode.Meta {
	return bytecode.Meta{LiteralCount: 2, LocalCount: 4, StackSize: 8}
}

func Test_Verify_Accepts_A_Well_Formed_Program(t *testing.T) {
	t.Parallel()

	ops := []uint64{
		uint64(bytecode.OpPushInt), 1,
		uint64(bytecode.OpPushInt), 2,
		uint64(bytecode.OpAdd),
		uint64(bytecode.OpRet),
	}

	if err := bytecode.Verify(ops, meta()); err != nil {
		t.Fatalf("Verify rejected valid program: %v", err)
	}
}

func Test_Verify_Rejects_Empty_Program(t *testing.T) {
	t.Parallel()

	err := bytecode.Verify(nil, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_Verify_Rejects_Unknown_Opcode(t *testing.T) {
	t.Parallel()

	err := bytecode.Verify([]uint64{9999}, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_Verify_Rejects_Truncated_Instruction(t *testing.T) {
	t.Parallel()

	// pushint is missing its immediate operand.
	err := bytecode.Verify([]uint64{uint64(bytecode.OpPushInt)}, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_Verify_Rejects_Jump_Into_Operand_Word(t *testing.T) {
	t.Parallel()

	// Offset 1 is pushint's operand, not a boundary.
	ops := []uint64{
		uint64(bytecode.OpPushInt), 7,
		uint64(bytecode.OpJump), 1,
	}

	err := bytecode.Verify(ops, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_Verify_Rejects_Out_Of_Range_Literal(t *testing.T) {
	t.Parallel()

	ops := []uint64{
		uint64(bytecode.OpPushLiteral), 99,
		uint64(bytecode.OpRet),
	}

	err := bytecode.Verify(ops, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_Verify_Rejects_Out_Of_Range_Local(t *testing.T) {
	t.Parallel()

	ops := []uint64{
		uint64(bytecode.OpPushLocal), 4,
		uint64(bytecode.OpRet),
	}

	err := bytecode.Verify(ops, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_Verify_Rejects_Stack_Underflow(t *testing.T) {
	t.Parallel()

	err := bytecode.Verify([]uint64{uint64(bytecode.OpPop), uint64(bytecode.OpRet)}, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_Verify_Rejects_Stack_Depth_Beyond_Declared_Size(t *testing.T) {
	t.Parallel()

	var ops []uint64
	for range 9 {
		ops = append(ops, uint64(bytecode.OpPushInt), 0)
	}
	ops = append(ops, uint64(bytecode.OpRet))

	err := bytecode.Verify(ops, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_Verify_Rejects_Program_Falling_Off_The_End(t *testing.T) {
	t.Parallel()

	err := bytecode.Verify([]uint64{uint64(bytecode.OpPushInt), 1}, meta())
	if !errors.Is(err, bytecode.ErrInvalidBytecode) {
		t.Fatalf("want ErrInvalidBytecode, got %v", err)
	}
}

func Test_ReferenceOffsets_Lists_Literal_Operand_Words(t *testing.T) {
	t.Parallel()

	ops := []uint64{
		uint64(bytecode.OpPushLiteral), 0, // operand at offset 1
		uint64(bytecode.OpSend), 1, 0, // literal operand at offset 3
		uint64(bytecode.OpRet),
	}

	got := bytecode.ReferenceOffsets(ops)
	want := []int{1, 3}

	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ReferenceOffsets = %v, want %v", got, want)
	}
}
