package ccode

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nicolasleger/rubinius/pkg/object"
)

// maxSpecializations is the fixed size of the per-code specialization
// cache.
const maxSpecializations = 8

// specialization is one cache slot: a (class id, class serial) key and
// the executor compiled for that receiver shape. A zero class id denotes
// an empty slot.
//
// Fields are written under the code's lock and read lock-free by the
// dispatch executors; each key half and the executor live in their own
// word.
type specialization struct {
	classID atomic.Uint32
	serial  atomic.Uint32
	exec    atomic.Pointer[Executor]
	jitData any // guarded by the code's lock
}

// AddSpecialized registers a type-specialized executor for receivers
// whose class data matches (classID, serial).
//
// The first empty slot or the slot already keyed on classID wins. When
// the cache is full, slot 0 is overwritten and a warning is emitted; this
// coarse replacement stands in for an LRU policy.
func (c *Code) AddSpecialized(classID, serial uint32, exec Executor, jitData any) {
	c.hardLock.Lock()
	defer c.hardLock.Unlock()

	m := c.machine.Load()
	if m == nil {
		logger().Error("specialization requested with no machine code",
			zap.String("code", c.Name.String()))
		return
	}

	slot := -1
	for i := range m.specializations {
		id := m.specializations[i].classID.Load()
		if id == 0 || id == classID {
			slot = i
			break
		}
	}

	if slot < 0 {
		logger().Warn("specialization cache full, evicting slot 0",
			zap.String("code", c.Name.String()),
			zap.Uint32("class_id", classID))
		slot = 0
	}

	s := &m.specializations[slot]
	s.serial.Store(serial)
	s.exec.Store(&exec)
	s.jitData = jitData
	s.classID.Store(classID)

	m.jitEligible = true

	if !m.primitive {
		c.setExecutor(specializedDispatch)
	}
}

// SetUnspecialized installs the executor used for receivers with no
// specialized variant.
//
// When the cache is entirely empty and no primitive resolved, the
// top-level executor is set to exec directly, skipping the cache scan.
func (c *Code) SetUnspecialized(exec Executor, jitData any) {
	c.hardLock.Lock()
	defer c.hardLock.Unlock()

	m := c.machine.Load()
	if m == nil {
		logger().Error("unspecialized executor set with no machine code",
			zap.String("code", c.Name.String()))
		return
	}

	m.unspecialized.Store(&exec)
	m.unspecializedData = jitData

	if m.cacheEmpty() && !m.primitive {
		c.setExecutor(exec)
	}
}

// FindSpecialized returns the executor cached for class, if any. No side
// effects.
func (c *Code) FindSpecialized(class object.ClassData) (Executor, bool) {
	m := c.machine.Load()
	if m == nil {
		return nil, false
	}

	if e := m.findSpecialized(class); e != nil {
		return *e, true
	}
	return nil, false
}

// CanSpecialize reports whether any cache slot is empty.
func (c *Code) CanSpecialize() bool {
	m := c.machine.Load()
	if m == nil {
		return false
	}
	return !m.cacheFull()
}

func (m *MachineCode) findSpecialized(class object.ClassData) *Executor {
	for i := range m.specializations {
		s := &m.specializations[i]
		if s.classID.Load() == class.ID && s.serial.Load() == class.Serial {
			return s.exec.Load()
		}
	}
	return nil
}

func (m *MachineCode) cacheEmpty() bool {
	for i := range m.specializations {
		if m.specializations[i].classID.Load() != 0 {
			return false
		}
	}
	return true
}

func (m *MachineCode) cacheFull() bool {
	for i := range m.specializations {
		if m.specializations[i].classID.Load() == 0 {
			return false
		}
	}
	return true
}

// classDataOf extracts the receiver's class identity. Immediate values
// have no class data and always take the unspecialized path.
func classDataOf(recv object.Value) (object.ClassData, bool) {
	if o, ok := recv.(object.Object); ok {
		return o.Class(), true
	}
	return object.ClassData{}, false
}

// specializedDispatch scans the cache for the receiver's class data; on a
// hit it calls the cached executor, on a miss the unspecialized executor,
// and the fallback when no unspecialized executor is installed.
func specializedDispatch(t *Thread, c *Code, recv object.Value, args []object.Value) (object.Value, error) {
	m := c.machine.Load()
	if m == nil {
		bug("specialized dispatch without machine code")
	}

	if cd, ok := classDataOf(recv); ok {
		if e := m.findSpecialized(cd); e != nil {
			return (*e)(t, c, recv, args)
		}
	}

	if u := m.unspecialized.Load(); u != nil {
		return (*u)(t, c, recv, args)
	}

	return m.fallback(t, c, recv, args)
}

// primitiveFailed is the fallback path primitives take when they decline
// a call: the same cache scan as specializedDispatch, with the generic
// interpreter entry on a miss.
func primitiveFailed(t *Thread, c *Code, recv object.Value, args []object.Value) (object.Value, error) {
	m := c.machine.Load()
	if m == nil {
		bug("primitive fallback without machine code")
	}

	if cd, ok := classDataOf(recv); ok {
		if e := m.findSpecialized(cd); e != nil {
			return (*e)(t, c, recv, args)
		}
	}

	if u := m.unspecialized.Load(); u != nil {
		return (*u)(t, c, recv, args)
	}

	return interpreterEntry(t, c, recv, args)
}
