package ccode

import (
	"errors"
	"sync"

	"github.com/nicolasleger/rubinius/pkg/object"
	"github.com/nicolasleger/rubinius/pkg/symbol"
)

// primitiveRegistry binds primitive names to built-in executors. Writes
// happen at startup; reads happen during internalization.
var (
	primitiveMu       sync.RWMutex
	primitiveRegistry = map[symbol.Symbol]Executor{}
)

// RegisterPrimitive binds name to a built-in fast-path executor. A
// primitive may decline a call by returning ErrPrimitiveFailed, which
// routes the call through the specialization cache and the interpreter.
func RegisterPrimitive(name string, fn Executor) {
	primitiveMu.Lock()
	defer primitiveMu.Unlock()
	primitiveRegistry[symbol.Intern(name)] = fn
}

// resolvePrimitive attempts to bind c.Primitive to a registered executor.
// On success the machine code's fallback becomes the primitive executor
// and true is returned.
func resolvePrimitive(c *Code, m *MachineCode) bool {
	if c.Primitive == (symbol.Symbol{}) {
		return false
	}

	primitiveMu.RLock()
	fn, ok := primitiveRegistry[c.Primitive]
	primitiveMu.RUnlock()

	if !ok {
		return false
	}

	m.primitive = true
	m.fallback = func(t *Thread, c *Code, recv object.Value, args []object.Value) (object.Value, error) {
		v, err := fn(t, c, recv, args)
		if errors.Is(err, ErrPrimitiveFailed) {
			return primitiveFailed(t, c, recv, args)
		}
		return v, err
	}

	return true
}
