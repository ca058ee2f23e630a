package sim

import (
	"encoding/binary"

	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

// Tick retires up to n instructions while the core runs.
func (c *Core) Tick(n int) {
	for i := 0; i < n && c.state == dbg.StateRunning; i++ {
		if !c.execute(false) {
			break
		}
	}
	c.dccRefill()
}

func (c *Core) halt() {
	if c.srst {
		return
	}
	c.state = dbg.StateHalted
	c.dhcsr |= armv7m.CHalt
}

func (c *Core) run() {
	c.state = dbg.StateRunning
	c.dhcsr &^= armv7m.CHalt
	c.dccRefill()
}

func (c *Core) read16(address uint32) (uint16, error) {
	var buf [2]byte
	if err := c.mem.Read(address, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// execute retires the instruction at PC. A running core halts before a
// comparator match or BKPT; a stepping core halts after the instruction, or
// on a BKPT without retiring it. The result reports whether the core can
// keep running.
func (c *Core) execute(stepping bool) bool {
	pc := c.PC()
	if !stepping && c.hasComparator(pc) {
		c.Logf(common.SeverityDebug, "breakpoint comparator hit at 0x%08x", pc)
		c.halt()
		return false
	}

	hw, err := c.read16(pc)
	if err != nil {
		c.Logf(common.SeverityError, "lockup: instruction fetch at 0x%08x: %v", pc, err)
		c.halt()
		return false
	}
	if armv7m.IsBkpt(hw) {
		c.Logf(common.SeverityDebug, "BKPT 0x%02x at 0x%08x", armv7m.BkptImm(hw), pc)
		c.halt()
		return false
	}

	size := armv7m.ThumbSize(hw)
	inst := uint32(hw) << 16
	if size == 4 {
		hw2, err := c.read16(pc + 2)
		if err != nil {
			c.Logf(common.SeverityError, "lockup: instruction fetch at 0x%08x: %v", pc+2, err)
			c.halt()
			return false
		}
		inst |= uint32(hw2)
	}
	if armv7m.IsUDF(inst) {
		c.Logf(common.SeverityError, "lockup: undefined instruction at 0x%08x", pc)
		c.halt()
		return false
	}
	if !stepping && armv7m.IsWfiWfe(inst) {
		// sleeping until an event that never comes
		return false
	}

	c.regs[armv7m.RegselPC] = pc + size
	c.steps++
	if stepping {
		c.halt()
	}
	return true
}

// SetComparator arms an FPB comparator at a code address.
func (c *Core) SetComparator(address uint32) error {
	if address >= 0x20000000 {
		return common.Errorf(dbg.ErrCommandSyntax, "comparator address 0x%08x outside the code region", address)
	}
	if c.hasComparator(address) {
		return nil
	}
	if len(c.comparators) == NumComparators {
		return common.Errorf(dbg.ErrFail, "no free breakpoint comparator for 0x%08x", address)
	}
	c.comparators = append(c.comparators, address)
	return nil
}

// ClearComparator disarms the comparator at address, if any.
func (c *Core) ClearComparator(address uint32) {
	for i, a := range c.comparators {
		if a == address {
			c.comparators = append(c.comparators[:i], c.comparators[i+1:]...)
			return
		}
	}
}

// Comparators returns the armed comparator addresses.
func (c *Core) Comparators() []uint32 {
	return append([]uint32(nil), c.comparators...)
}

func (c *Core) hasComparator(address uint32) bool {
	for _, a := range c.comparators {
		if a == address&^1 {
			return true
		}
	}
	return false
}
