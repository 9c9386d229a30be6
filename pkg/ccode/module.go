package ccode

import (
	"github.com/nicolasleger/rubinius/pkg/methodtable"
	"github.com/nicolasleger/rubinius/pkg/object"
	"github.com/nicolasleger/rubinius/pkg/symbol"
)

// Module is a class-like method holder: a method table plus a superclass
// link forming the inheritance chain dispatch resolves along.
type Module struct {
	Name  symbol.Symbol
	Data  object.ClassData
	Super *Module
	Table *methodtable.Table
}

// NewModule creates a module with a fresh method table. id must be
// nonzero; zero is the empty-slot sentinel of specialization caches.
func NewModule(name string, id uint32, super *Module) *Module {
	if id == 0 {
		bug("module created with class id 0")
	}

	return &Module{
		Name:  symbol.Intern(name),
		Data:  object.ClassData{ID: id, Serial: 1},
		Super: super,
		Table: methodtable.New(0),
	}
}

// BumpSerial advances the module's shape version, invalidating
// specializations keyed on the old (id, serial) pair.
func (m *Module) BumpSerial() { m.Data.Serial++ }

// ResolveMethod walks the module chain for the first bucket holding an
// installable method under name. An Undef bucket terminates the walk:
// the name is explicitly removed for dispatch.
//
// Implements methodtable.Resolver.
func (m *Module) ResolveMethod(name symbol.Symbol) (*methodtable.Bucket, bool) {
	for mod := m; mod != nil; mod = mod.Super {
		b, ok := mod.Table.Lookup(name)
		if !ok {
			continue
		}

		if b.Visibility() == methodtable.Undef {
			return nil, false
		}

		if b.Installable() {
			return b, true
		}
	}

	return nil, false
}

// Define binds a compiled code object as a public method on the module.
func (m *Module) Define(name string, code *Code) {
	sym := symbol.Intern(name)
	m.Table.Store(sym, sym, code, code.Scope, 0, methodtable.Public)
}

// Class implements object.Object so a module can itself be a receiver.
func (m *Module) Class() object.ClassData { return m.Data }

// Module returns m; modules dispatch against their own table.
func (m *Module) Module() *Module { return m }

// Instance is a plain object belonging to a module.
type Instance struct {
	Mod *Module

	// IVars is open storage for tests and tooling.
	IVars map[symbol.Symbol]object.Value
}

// NewInstance creates an instance of mod.
func NewInstance(mod *Module) *Instance {
	return &Instance{Mod: mod}
}

// Class implements object.Object.
func (i *Instance) Class() object.ClassData { return i.Mod.Data }

// Module returns the module dispatch resolves against.
func (i *Instance) Module() *Module { return i.Mod }

// moduleOf extracts the dispatch module of a receiver.
func moduleOf(recv object.Value) (*Module, bool) {
	if h, ok := recv.(interface{ Module() *Module }); ok {
		return h.Module(), true
	}
	return nil, false
}
