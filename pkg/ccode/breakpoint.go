package ccode

import "fmt"

// SetBreakpoint installs a breakpoint at ip with attached user data,
// internalizing first. ip must be an instruction boundary.
//
// While any breakpoint is set, the machine code runs its debugging
// interpreter variant.
func (c *Code) SetBreakpoint(ip uint64, data any) error {
	m, err := c.Internalize()
	if err != nil {
		return err
	}

	if !m.IsBoundary(ip) {
		return fmt.Errorf("%w: %d in %s", ErrBadBoundary, ip, c.Name)
	}

	c.hardLock.Lock()
	defer c.hardLock.Unlock()

	if c.breakpoints == nil {
		c.breakpoints = make(map[uint64]any)
	}
	c.breakpoints[ip] = data

	m.debugging.Store(true)

	return nil
}

// ClearBreakpoint removes the breakpoint at ip. When the last breakpoint
// is cleared, the machine code reverts to the normal interpreter variant.
func (c *Code) ClearBreakpoint(ip uint64) error {
	m, err := c.Internalize()
	if err != nil {
		return err
	}

	c.hardLock.Lock()
	defer c.hardLock.Unlock()

	if _, ok := c.breakpoints[ip]; !ok {
		return fmt.Errorf("%w: %d in %s", ErrNoBreakpoint, ip, c.Name)
	}

	delete(c.breakpoints, ip)

	if len(c.breakpoints) == 0 {
		m.debugging.Store(false)
	}

	return nil
}

// IsBreakpoint reports whether ip carries a breakpoint, internalizing
// first.
func (c *Code) IsBreakpoint(ip uint64) (bool, error) {
	if _, err := c.Internalize(); err != nil {
		return false, err
	}

	_, ok := c.breakpointAt(ip)
	return ok, nil
}

// breakpointAt reads the breakpoint table; used by the debugging
// interpreter variant on every instruction.
func (c *Code) breakpointAt(ip uint64) (any, bool) {
	c.hardLock.Lock()
	defer c.hardLock.Unlock()

	data, ok := c.breakpoints[ip]
	return data, ok
}
