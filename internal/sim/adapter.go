package sim

import (
	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

func (c *Core) online() error {
	if !c.connected {
		return common.Errorf(dbg.ErrFail, "sim: probe disconnected")
	}
	return nil
}

func (c *Core) regAccess(regsel uint32) error {
	if err := c.online(); err != nil {
		return err
	}
	if c.state != dbg.StateHalted {
		return common.Errorf(dbg.ErrTargetNotHalted, "sim: register access while %s", c.state)
	}
	if regsel > armv7m.RegselSpecialPack || regsel == armv7m.RegselSpecialPack-1 {
		return common.Errorf(dbg.ErrCommandSyntax, "sim: bad register selector 0x%02x", regsel)
	}
	return nil
}

// ReadReg implements adapter.Adapter.
func (c *Core) ReadReg(regsel uint32) (uint32, error) {
	if err := c.regAccess(regsel); err != nil {
		return 0, err
	}
	return c.Reg(regsel), nil
}

// WriteReg implements adapter.Adapter.
func (c *Core) WriteReg(regsel uint32, value uint32) error {
	if err := c.regAccess(regsel); err != nil {
		return err
	}
	c.SetReg(regsel, value)
	return nil
}

func (c *Core) memAccess(addr uint32, size, count uint32, buf []byte) ([]byte, error) {
	if err := c.online(); err != nil {
		return nil, err
	}
	if size != 1 && size != 2 && size != 4 {
		return nil, common.Errorf(dbg.ErrCommandSyntax, "sim: access size %d", size)
	}
	if addr%size != 0 {
		return nil, common.Errorf(dbg.ErrCommandSyntax, "sim: unaligned %d-byte access at 0x%08x", size, addr)
	}
	n := uint64(size) * uint64(count)
	if uint64(len(buf)) < n {
		return nil, common.Errorf(dbg.ErrCommandSyntax, "sim: buffer too small")
	}
	return buf[:n], nil
}

// ReadMem implements adapter.Adapter.
func (c *Core) ReadMem(addr uint32, size, count uint32, buf []byte) error {
	b, err := c.memAccess(addr, size, count, buf)
	if err != nil {
		return err
	}
	return c.mem.Read(addr, b)
}

// WriteMem implements adapter.Adapter.
func (c *Core) WriteMem(addr uint32, size, count uint32, buf []byte) error {
	b, err := c.memAccess(addr, size, count, buf)
	if err != nil {
		return err
	}
	return c.mem.Write(addr, b)
}

// WriteDebugReg implements adapter.Adapter.
func (c *Core) WriteDebugReg(addr uint32, value uint32) error {
	b := []byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)}
	return c.WriteMem(addr, 4, 1, b)
}

// Halt implements adapter.Adapter.
func (c *Core) Halt() error {
	if err := c.online(); err != nil {
		return err
	}
	c.dhcsr |= armv7m.CDebugEn
	c.halt()
	return nil
}

// Run implements adapter.Adapter.
func (c *Core) Run() error {
	if err := c.online(); err != nil {
		return err
	}
	if c.srst {
		return common.Errorf(dbg.ErrFail, "sim: run while held in reset")
	}
	c.run()
	return nil
}

// Step implements adapter.Adapter.
func (c *Core) Step() error {
	if err := c.online(); err != nil {
		return err
	}
	if c.state != dbg.StateHalted {
		return common.Errorf(dbg.ErrTargetNotHalted, "sim: step while %s", c.state)
	}
	c.execute(true)
	return nil
}

// Reset implements adapter.Adapter.
func (c *Core) Reset() error {
	if err := c.online(); err != nil {
		return err
	}
	c.coreReset()
	return nil
}

// State implements adapter.Adapter.
func (c *Core) State() dbg.TargetState {
	if !c.connected {
		return dbg.StateUnknown
	}
	return c.state
}

// AssertSRST implements adapter.ResetLine.
func (c *Core) AssertSRST() error {
	if err := c.online(); err != nil {
		return err
	}
	if !c.cfg.SRSTSupported {
		return common.Errorf(dbg.ErrCommandNotFound, "sim: srst not supported")
	}
	c.srst = true
	c.coreReset()
	return nil
}

// DeassertSRST implements adapter.ResetLine.
func (c *Core) DeassertSRST() error {
	if err := c.online(); err != nil {
		return err
	}
	if !c.cfg.SRSTSupported {
		return common.Errorf(dbg.ErrCommandNotFound, "sim: srst not supported")
	}
	if c.srst {
		c.srst = false
		c.leaveReset()
	}
	return nil
}
