// Package sim is an in-memory Cortex-M core behind the adapter contract. It
// models enough of the system control space for a debug session: DHCSR,
// DCRSR/DCRDR, DEMCR and AIRCR, a reset line, FPB comparators, and a
// target-side DCC producer. Execution is straight-line: each tick advances
// PC by one Thumb instruction until a breakpoint, BKPT or WFI/WFE.
//
// A Core is not safe for concurrent use.
package sim

import (
	"encoding/binary"

	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
	"hlatarget/internal/memacc"
)

// Default memory layout of an STM32F1-class part.
const (
	DefaultFlashBase uint32 = 0x08000000
	DefaultFlashSize uint32 = 64 << 10
	DefaultRAMBase   uint32 = 0x20000000
	DefaultRAMSize   uint32 = 20 << 10
	DefaultCPUID     uint32 = 0x410FC241

	// NumComparators is the FPB code comparator count.
	NumComparators = 6

	scsBase uint32 = 0xE000E000
	scsEnd  uint32 = 0xE000EFFF
)

// Config sizes the simulated part.
type Config struct {
	FlashBase     uint32
	FlashSize     uint32
	RAMBase       uint32
	RAMSize       uint32
	CPUID         uint32
	SRSTSupported bool
}

// DefaultConfig returns the default part.
func DefaultConfig() Config {
	return Config{
		FlashBase:     DefaultFlashBase,
		FlashSize:     DefaultFlashSize,
		RAMBase:       DefaultRAMBase,
		RAMSize:       DefaultRAMSize,
		CPUID:         DefaultCPUID,
		SRSTSupported: true,
	}
}

// Core is a simulated Cortex-M core and its memory.
type Core struct {
	common.Component

	cfg   Config
	mem   *memacc.Mapper
	flash *memacc.BufferAccessor
	ram   *memacc.BufferAccessor

	regs [armv7m.RegselSpecialPack + 1]uint32

	state     dbg.TargetState
	srst      bool
	connected bool
	resetSt   bool

	dhcsr uint32
	dcrdr uint32
	scs   map[uint32]uint32

	comparators []uint32
	dcc         []byte

	steps uint64
}

// New builds a core with the configured memory map. The core comes up out
// of reset, running.
func New(cfg Config) (*Core, error) {
	if cfg.CPUID == 0 {
		cfg.CPUID = DefaultCPUID
	}
	c := &Core{
		cfg:       cfg,
		mem:       memacc.NewMapper(),
		connected: true,
		scs:       make(map[uint32]uint32),
	}
	c.InitComponent("sim")

	c.flash = memacc.NewBufferAccessor(cfg.FlashBase, make([]byte, cfg.FlashSize), true)
	c.ram = memacc.NewBufferAccessor(cfg.RAMBase, make([]byte, cfg.RAMSize), false)
	scs := memacc.NewCallbackAccessor(scsBase, scsEnd)
	scs.SetCallbacks(c.scsRead, c.scsWrite)

	for _, acc := range []memacc.Accessor{c.flash, c.ram, scs} {
		if err := c.mem.AddAccessor(acc); err != nil {
			return nil, err
		}
	}

	c.coreReset()
	return c, nil
}

// Config returns the part configuration.
func (c *Core) Config() Config { return c.cfg }

// Steps is the number of instructions retired.
func (c *Core) Steps() uint64 { return c.steps }

// SetConnected simulates losing or regaining the probe connection. While
// disconnected every adapter call fails and State reports unknown.
func (c *Core) SetConnected(connected bool) { c.connected = connected }

// LoadImage places data at address, bypassing flash write protection.
func (c *Core) LoadImage(address uint32, data []byte) error {
	if c.flash.AddrInRange(address) {
		if n := c.flash.Load(address, data); int(n) != len(data) {
			return common.Errorf(dbg.ErrCommandSyntax, "image of %d bytes at 0x%08x overruns flash", len(data), address)
		}
		return nil
	}
	return c.mem.Write(address, data)
}

// Reg returns a register by DCRSR selector.
func (c *Core) Reg(regsel uint32) uint32 {
	if regsel == armv7m.RegselSP {
		return c.regs[c.activeSP()]
	}
	if regsel < uint32(len(c.regs)) {
		return c.regs[regsel]
	}
	return 0
}

// SetReg sets a register by DCRSR selector.
func (c *Core) SetReg(regsel uint32, value uint32) {
	if regsel == armv7m.RegselSP {
		regsel = c.activeSP()
	}
	if regsel < uint32(len(c.regs)) {
		c.regs[regsel] = value
	}
}

// PC returns the program counter.
func (c *Core) PC() uint32 { return c.regs[armv7m.RegselPC] }

func (c *Core) control() uint32 {
	return c.regs[armv7m.RegselSpecialPack] >> 24
}

// activeSP is the selector of the stack pointer banked in as SP.
func (c *Core) activeSP() uint32 {
	handler := c.regs[armv7m.RegselXPSR]&armv7m.ExceptionMask != 0
	if !handler && c.control()&2 != 0 {
		return armv7m.RegselPSP
	}
	return armv7m.RegselMSP
}

// coreReset applies a system reset: registers reload from the vector table
// at the start of flash. DEMCR survives. The core then halts on VC_CORERESET
// with debug enabled, stays in reset while SRST is held, or runs.
func (c *Core) coreReset() {
	c.regs = [armv7m.RegselSpecialPack + 1]uint32{}
	var vec [8]byte
	if err := c.mem.Read(c.cfg.FlashBase, vec[:]); err == nil {
		c.regs[armv7m.RegselMSP] = binary.LittleEndian.Uint32(vec[0:]) &^ 3
		c.regs[armv7m.RegselPC] = binary.LittleEndian.Uint32(vec[4:]) &^ 1
	}
	c.regs[armv7m.RegselXPSR] = 0x01000000
	c.dcrdr = 0
	c.resetSt = true
	c.dhcsr &^= armv7m.CHalt | armv7m.CStep

	c.Logf(common.SeverityDebug, "reset: pc 0x%08x msp 0x%08x", c.PC(), c.regs[armv7m.RegselMSP])
	c.leaveReset()
}

func (c *Core) leaveReset() {
	switch {
	case c.srst:
		c.state = dbg.StateReset
	case c.dhcsr&armv7m.CDebugEn != 0 && c.scs[armv7m.DCBDEMCR]&armv7m.VCCoreReset != 0:
		c.state = dbg.StateHalted
	default:
		c.state = dbg.StateRunning
		c.dccRefill()
	}
}
