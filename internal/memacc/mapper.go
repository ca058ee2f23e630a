package memacc

import (
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

// Mapper resolves addresses to accessors. Accesses may span adjacent
// accessors; a gap or a short access anywhere fails the whole request.
type Mapper struct {
	accessors []Accessor
	accCurr   Accessor
}

// NewMapper creates an empty memory map.
func NewMapper() *Mapper {
	return &Mapper{}
}

// AddAccessor adds a range. Invalid and overlapping ranges are rejected.
func (m *Mapper) AddAccessor(accessor Accessor) error {
	if !accessor.ValidateRange() {
		st, en := accessor.Range()
		return common.Errorf(dbg.ErrCommandSyntax, "invalid memory range 0x%08x-0x%08x", st, en)
	}
	for _, a := range m.accessors {
		if a.OverlapRange(accessor) {
			st, en := accessor.Range()
			return common.Errorf(dbg.ErrCommandSyntax, "memory range 0x%08x-0x%08x overlaps an existing range", st, en)
		}
	}
	m.accessors = append(m.accessors, accessor)
	return nil
}

// RemoveAccessor removes a range previously added.
func (m *Mapper) RemoveAccessor(accessor Accessor) error {
	for i, a := range m.accessors {
		if a == accessor {
			m.accessors = append(m.accessors[:i], m.accessors[i+1:]...)
			if m.accCurr == accessor {
				m.accCurr = nil
			}
			return nil
		}
	}
	return common.Errorf(dbg.ErrCommandSyntax, "accessor not mapped")
}

// RemoveAllAccessors clears the map.
func (m *Mapper) RemoveAllAccessors() {
	m.accessors = nil
	m.accCurr = nil
}

// Accessors returns the mapped ranges in insertion order.
func (m *Mapper) Accessors() []Accessor {
	return m.accessors
}

func (m *Mapper) findAccessor(address uint32) Accessor {
	// consecutive accesses usually hit the same range
	if m.accCurr != nil && m.accCurr.AddrInRange(address) {
		return m.accCurr
	}
	for _, acc := range m.accessors {
		if acc.AddrInRange(address) {
			m.accCurr = acc
			return acc
		}
	}
	return nil
}

// Read fills buf from address.
func (m *Mapper) Read(address uint32, buf []byte) error {
	return m.access(address, buf, false)
}

// Write stores buf at address.
func (m *Mapper) Write(address uint32, buf []byte) error {
	return m.access(address, buf, true)
}

func (m *Mapper) access(address uint32, buf []byte, write bool) error {
	for done := 0; done < len(buf); {
		addr := address + uint32(done)
		acc := m.findAccessor(addr)
		if acc == nil {
			return common.Errorf(dbg.ErrFail, "no memory mapped at 0x%08x", addr)
		}
		if write && acc.ReadOnly() {
			return common.Errorf(dbg.ErrFail, "memory at 0x%08x is read-only", addr)
		}
		want := acc.BytesInRange(addr, uint32(len(buf)-done))
		var n uint32
		if write {
			n = acc.WriteBytes(addr, buf[done:done+int(want)])
		} else {
			n = acc.ReadBytes(addr, buf[done:done+int(want)])
		}
		if n != want {
			return common.Errorf(dbg.ErrFail, "short access at 0x%08x: %d of %d bytes", addr, n, want)
		}
		done += int(n)
		if addr+n == 0 && done < len(buf) {
			return common.Errorf(dbg.ErrFail, "access wraps the address space")
		}
	}
	return nil
}
