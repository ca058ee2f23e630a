package sim

import (
	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

const dcrsrWrite uint32 = 1 << 16

// scsRead serves byte reads of the system control space.
func (c *Core) scsRead(address uint32, buf []byte) uint32 {
	for i := range buf {
		addr := address + uint32(i)
		word := c.scsLoad(addr &^ 3)
		buf[i] = byte(word >> (8 * (addr & 3)))
	}
	return uint32(len(buf))
}

// scsWrite merges byte writes into whole registers and applies each
// register's side effects once per touched word.
func (c *Core) scsWrite(address uint32, buf []byte) uint32 {
	for i := 0; i < len(buf); {
		addr := address + uint32(i)
		wordAddr := addr &^ 3
		value := c.scsPeek(wordAddr)
		var mask uint32
		for ; i < len(buf) && (address+uint32(i))&^3 == wordAddr; i++ {
			shift := 8 * ((address + uint32(i)) & 3)
			value = value&^(0xFF<<shift) | uint32(buf[i])<<shift
			mask |= 0xFF << shift
		}
		c.scsStore(wordAddr, value, mask)
	}
	return uint32(len(buf))
}

// scsPeek returns a register without read side effects.
func (c *Core) scsPeek(addr uint32) uint32 {
	switch addr {
	case armv7m.DCBDHCSR:
		return c.dhcsr & armv7m.DHCSRCtrlMask
	case armv7m.DCBDCRDR:
		return c.dcrdr
	default:
		return c.scs[addr]
	}
}

func (c *Core) scsLoad(addr uint32) uint32 {
	switch addr {
	case armv7m.CPUID:
		return c.cfg.CPUID
	case armv7m.NVICAIRCR:
		return 0xFA050000 | c.scs[addr]&0x700
	case armv7m.DCBDHCSR:
		v := c.dhcsr&armv7m.DHCSRCtrlMask | armv7m.SRegRdy
		if c.state == dbg.StateHalted {
			v |= armv7m.SHalt
		}
		if c.resetSt {
			v |= armv7m.SResetSt
			c.resetSt = false
		}
		return v
	default:
		return c.scsPeek(addr)
	}
}

func (c *Core) scsStore(addr, value, mask uint32) {
	switch addr {
	case armv7m.CPUID:
		// read-only
	case armv7m.NVICAIRCR:
		if value&armv7m.AIRCRVectKeyMask != armv7m.AIRCRVectKey {
			c.Logf(common.SeverityDebug, "AIRCR write 0x%08x without VECTKEY ignored", value)
			return
		}
		c.scs[addr] = value & 0x700
		if value&(armv7m.AIRCRSysResetReq|armv7m.AIRCRVectReset) != 0 {
			c.coreReset()
		}
	case armv7m.DCBDHCSR:
		c.writeDHCSR(value)
	case armv7m.DCBDCRSR:
		c.writeDCRSR(value)
	case armv7m.DCBDCRDR:
		c.dcrdr = value
		if mask&0xFF != 0 && uint8(value)&armv7m.DCCBusy == 0 {
			c.dccRefill()
		}
	default:
		c.scs[addr] = value
	}
}

func (c *Core) writeDHCSR(value uint32) {
	if value&0xFFFF0000 != armv7m.DBGKEY {
		c.Logf(common.SeverityDebug, "DHCSR write 0x%08x without DBGKEY ignored", value)
		return
	}
	c.dhcsr = value & armv7m.DHCSRCtrlMask
	if c.dhcsr&armv7m.CDebugEn == 0 {
		if c.state == dbg.StateHalted {
			c.run()
		}
		return
	}
	switch {
	case c.dhcsr&armv7m.CHalt != 0:
		c.halt()
	case c.state == dbg.StateHalted:
		if c.dhcsr&armv7m.CStep != 0 {
			c.execute(true)
			return
		}
		c.run()
	}
}

func (c *Core) writeDCRSR(value uint32) {
	if c.state != dbg.StateHalted {
		c.Logf(common.SeverityWarning, "DCRSR access while not halted")
		return
	}
	regsel := value & 0x7F
	if value&dcrsrWrite != 0 {
		c.SetReg(regsel, c.dcrdr)
	} else {
		c.dcrdr = c.Reg(regsel)
	}
}
