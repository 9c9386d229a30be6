package ccode

// SwapVerifier replaces the internalization verifier and returns a
// restore function. Tests that swap the verifier must not run in
// parallel with other internalizing tests.
func SwapVerifier(fn func(*Code) error) func() {
	old := verifyFn
	verifyFn = fn
	return func() { verifyFn = old }
}

// CacheKeys returns the (class id, serial) pairs currently occupying the
// specialization cache, in slot order, for white-box assertions.
func (c *Code) CacheKeys() [][2]uint32 {
	m := c.machine.Load()
	if m == nil {
		return nil
	}

	keys := make([][2]uint32, maxSpecializations)
	for i := range m.specializations {
		keys[i] = [2]uint32{
			m.specializations[i].classID.Load(),
			m.specializations[i].serial.Load(),
		}
	}
	return keys
}
