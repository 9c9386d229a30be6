package ccode_test

import (
	"errors"
	"testing"

	"github.com/nicolasleger/rubinius/pkg/ccode"
	"github.com/nicolasleger/rubinius/pkg/methodtable"
	"github.com/nicolasleger/rubinius/pkg/object"
	"github.com/nicolasleger/rubinius/pkg/symbol"
)

func Test_Send_Dispatches_Through_The_Receivers_Module_Chain(t *testing.T) {
	t.Parallel()

	// double(n) = n + n
	double := ccode.FromProgram("double", "lib.rbx", mustAssemble(t, `
		pushlocal 0
		pushlocal 0
		add
		ret
	`))
	double.RequiredArgs = 1
	double.TotalArgs = 1

	parent := ccode.NewModule("Base", 2, nil)
	parent.Define("double", double)

	child := ccode.NewModule("Derived", 3, parent)

	script := ccode.FromProgram("main", "main.rbx", mustAssemble(t, `
		pushself
		pushint 21
		send :double 1
		ret
	`))

	th := ccode.NewThread()
	v, err := script.Run(th, ccode.NewInstance(child), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v != int64(42) {
		t.Fatalf("send :double 21 = %v, want 42", v)
	}
}

func Test_Send_Fails_For_Undefined_Method(t *testing.T) {
	t.Parallel()

	mod := ccode.NewModule("Bare", 4, nil)

	script := ccode.FromProgram("main", "main.rbx", mustAssemble(t, `
		pushself
		send :vanish 0
		ret
	`))

	_, err := script.Run(ccode.NewThread(), mod, nil)
	if !errors.Is(err, ccode.ErrNoMethod) {
		t.Fatalf("want ErrNoMethod, got %v", err)
	}
}

func Test_Send_Stops_At_Undef_Bucket(t *testing.T) {
	t.Parallel()

	inherited := ccode.FromProgram("greet", "lib.rbx", mustAssemble(t, "pushint 1\nret\n"))

	parent := ccode.NewModule("Base", 5, nil)
	parent.Define("greet", inherited)

	child := ccode.NewModule("Derived", 6, parent)

	// Explicitly removed for dispatch on the child.
	name := symbol.Intern("greet")
	child.Table.Store(name, name, nil, nil, 0, methodtable.Undef)

	script := ccode.FromProgram("main", "main.rbx", mustAssemble(t, `
		pushself
		send :greet 0
		ret
	`))

	_, err := script.Run(ccode.NewThread(), ccode.NewInstance(child), nil)
	if !errors.Is(err, ccode.ErrNoMethod) {
		t.Fatalf("undef bucket did not shadow the inherited method: %v", err)
	}
}

func Test_Arity_Is_Enforced_At_Dispatch(t *testing.T) {
	t.Parallel()

	c := ccode.FromProgram("pair", "lib.rbx", mustAssemble(t, "pushlocal 0\nret\n"))
	c.RequiredArgs = 2
	c.TotalArgs = 2

	th := ccode.NewThread()

	_, err := c.Run(th, nil, []object.Value{int64(1)})
	if !errors.Is(err, ccode.ErrArity) {
		t.Fatalf("1 arg for required 2: want ErrArity, got %v", err)
	}

	_, err = c.Run(th, nil, []object.Value{int64(1), int64(2), int64(3)})
	if !errors.Is(err, ccode.ErrArity) {
		t.Fatalf("3 args for total 2: want ErrArity, got %v", err)
	}
}

func Test_Splat_Collects_Overflow_Arguments(t *testing.T) {
	t.Parallel()

	// Returns the splat local itself.
	c := ccode.FromProgram("gather", "lib.rbx", mustAssemble(t, "pushlocal 1\nret\n"))
	c.RequiredArgs = 1
	c.TotalArgs = 1
	c.Splat = 1

	th := ccode.NewThread()

	v, err := c.Run(th, nil, []object.Value{int64(1), int64(2), int64(3)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rest, ok := v.([]object.Value)
	if !ok || len(rest) != 2 || rest[0] != int64(2) || rest[1] != int64(3) {
		t.Fatalf("splat local = %v, want [2 3]", v)
	}
}

func Test_Primitive_Resolves_As_Fallback_Executor(t *testing.T) {
	t.Parallel()

	ccode.RegisterPrimitive("test_forty_two", func(t *ccode.Thread, c *ccode.Code, recv object.Value, args []object.Value) (object.Value, error) {
		return int64(42), nil
	})

	c := ccode.FromProgram("fast", "lib.rbx", mustAssemble(t, "pushint 0\nret\n"))
	c.Primitive = symbol.Intern("test_forty_two")

	v, err := c.Run(ccode.NewThread(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v != int64(42) {
		t.Fatalf("primitive result = %v, want 42", v)
	}
}

func Test_Declining_Primitive_Falls_Back_To_The_Interpreter(t *testing.T) {
	t.Parallel()

	ccode.RegisterPrimitive("test_decline", func(t *ccode.Thread, c *ccode.Code, recv object.Value, args []object.Value) (object.Value, error) {
		return nil, ccode.ErrPrimitiveFailed
	})

	c := ccode.FromProgram("slow", "lib.rbx", mustAssemble(t, "pushint 7\nret\n"))
	c.Primitive = symbol.Intern("test_decline")

	v, err := c.Run(ccode.NewThread(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v != int64(7) {
		t.Fatalf("fallback result = %v, want the interpreted 7", v)
	}
}

func Test_Declining_Primitive_Prefers_A_Specialized_Variant(t *testing.T) {
	t.Parallel()

	ccode.RegisterPrimitive("test_decline_spec", func(t *ccode.Thread, c *ccode.Code, recv object.Value, args []object.Value) (object.Value, error) {
		return nil, ccode.ErrPrimitiveFailed
	})

	c := ccode.FromProgram("hybrid", "lib.rbx", mustAssemble(t, "pushint 7\nret\n"))
	c.Primitive = symbol.Intern("test_decline_spec")

	if _, err := c.Internalize(); err != nil {
		t.Fatalf("Internalize: %v", err)
	}

	c.AddSpecialized(11, 1, constExecutor(1000, "", nil), nil)

	mod := ccode.NewModule("Fast", 11, nil)
	v, err := c.Run(ccode.NewThread(), ccode.NewInstance(mod), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v != int64(1000) {
		t.Fatalf("declined primitive routed to %v, want the specialized 1000", v)
	}
}

func Test_Type_Mismatch_Reports_File_And_Line(t *testing.T) {
	t.Parallel()

	c := ccode.FromProgram("bad", "bad.rbx", mustAssemble(t, "pushnil\npushint 1\nadd\nret\n"))
	c.Lines = []int{0, 12}

	_, err := c.Run(ccode.NewThread(), nil, nil)
	if !errors.Is(err, ccode.ErrTypeMismatch) {
		t.Fatalf("want ErrTypeMismatch, got %v", err)
	}
}
