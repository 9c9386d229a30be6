package ccode

import "github.com/nicolasleger/rubinius/pkg/object"

// Mark is the collector's visit hook for a code object. It walks the
// ordinary owned fields, then the machine form's jit bookkeeping, then
// the references embedded in the instruction stream, writing relocated
// references back and notifying the collector of each rewrite.
//
// Literal operands in the machine form index a reference table rather
// than embedding tagged words directly, so the rewrite mutates the table,
// not the opcode stream. Marking runs with mutators stopped; Mark takes
// no locks.
func (c *Code) Mark(mk object.Marker) {
	for i, v := range c.Literals {
		if v == nil {
			continue
		}
		if r := mk.Mark(v); r != nil {
			c.Literals[i] = r
			mk.JustSet(c, r)
		}
	}

	if c.Scope != nil {
		mk.Mark(c.Scope)
	}

	m := c.machine.Load()
	if m == nil {
		return
	}

	mk.Mark(m)

	if m.jitData != nil {
		mk.Mark(m.jitData)
	}
	if m.unspecializedData != nil {
		mk.Mark(m.unspecializedData)
	}

	for i := range m.specializations {
		if jd := m.specializations[i].jitData; jd != nil {
			mk.Mark(jd)
		}
	}

	for _, off := range m.references {
		idx := m.Opcodes[off]

		v := m.refs[idx]
		if v == nil {
			continue
		}

		if r := mk.Mark(v); r != nil {
			m.refs[idx] = r
			mk.JustSet(c, r)
		}
	}
}
