package armv7m

import "fmt"

// RegID indexes the core register cache.
type RegID int

const (
	RegR0 RegID = iota
	RegR1
	RegR2
	RegR3
	RegR4
	RegR5
	RegR6
	RegR7
	RegR8
	RegR9
	RegR10
	RegR11
	RegR12
	RegSP
	RegLR
	RegPC
	RegXPSR
	RegMSP
	RegPSP
	RegPRIMASK
	RegBASEPRI
	RegFAULTMASK
	RegCONTROL
	NumCoreRegs
)

// Reg is one cached core register.
type Reg struct {
	Name   string
	ID     RegID
	Regsel uint32
	Shift  uint
	Width  uint
	Value  uint32
	Exist  bool
	Valid  bool
	Dirty  bool
}

func (r *Reg) mask() uint32 {
	if r.Width >= 32 {
		return 0xFFFFFFFF
	}
	return (1 << r.Width) - 1
}

// packed reports whether the register shares its selector with others.
func (r *Reg) packed() bool {
	return r.Width < 32
}

func (r *Reg) String() string {
	if !r.Valid {
		return fmt.Sprintf("%s (/%d): (invalid)", r.Name, r.Width)
	}
	return fmt.Sprintf("%s (/%d): 0x%0*x", r.Name, r.Width, int(r.Width/4), r.Value)
}

// CoreRegAccess is the load/store strategy the cache uses to reach the
// hardware. Values are the raw 32-bit selector contents.
type CoreRegAccess interface {
	LoadCoreReg(regsel uint32) (uint32, error)
	StoreCoreReg(regsel uint32, value uint32) error
}

var coreRegDescs = [NumCoreRegs]struct {
	name   string
	regsel uint32
	shift  uint
	width  uint
}{
	RegR0:        {"r0", 0x00, 0, 32},
	RegR1:        {"r1", 0x01, 0, 32},
	RegR2:        {"r2", 0x02, 0, 32},
	RegR3:        {"r3", 0x03, 0, 32},
	RegR4:        {"r4", 0x04, 0, 32},
	RegR5:        {"r5", 0x05, 0, 32},
	RegR6:        {"r6", 0x06, 0, 32},
	RegR7:        {"r7", 0x07, 0, 32},
	RegR8:        {"r8", 0x08, 0, 32},
	RegR9:        {"r9", 0x09, 0, 32},
	RegR10:       {"r10", 0x0A, 0, 32},
	RegR11:       {"r11", 0x0B, 0, 32},
	RegR12:       {"r12", 0x0C, 0, 32},
	RegSP:        {"sp", RegselSP, 0, 32},
	RegLR:        {"lr", RegselLR, 0, 32},
	RegPC:        {"pc", RegselPC, 0, 32},
	RegXPSR:      {"xpsr", RegselXPSR, 0, 32},
	RegMSP:       {"msp", RegselMSP, 0, 32},
	RegPSP:       {"psp", RegselPSP, 0, 32},
	RegPRIMASK:   {"primask", RegselSpecialPack, 0, 8},
	RegBASEPRI:   {"basepri", RegselSpecialPack, 8, 8},
	RegFAULTMASK: {"faultmask", RegselSpecialPack, 16, 8},
	RegCONTROL:   {"control", RegselSpecialPack, 24, 8},
}

// RegCache is the ordered set of core registers with valid/dirty tracking.
// Values are loaded lazily through the access strategy.
type RegCache struct {
	regs   []*Reg
	access CoreRegAccess
}

// NewRegCache builds the ARMv7-M core register cache.
func NewRegCache(access CoreRegAccess) *RegCache {
	c := &RegCache{
		regs:   make([]*Reg, NumCoreRegs),
		access: access,
	}
	for i, d := range coreRegDescs {
		c.regs[i] = &Reg{
			Name:   d.name,
			ID:     RegID(i),
			Regsel: d.regsel,
			Shift:  d.shift,
			Width:  d.width,
			Exist:  true,
		}
	}
	return c
}

// Reg returns the register with the given id, or nil.
func (c *RegCache) Reg(id RegID) *Reg {
	if id < 0 || int(id) >= len(c.regs) {
		return nil
	}
	return c.regs[id]
}

// Regs returns the registers in cache order.
func (c *RegCache) Regs() []*Reg {
	return c.regs
}

// Find looks a register up by name.
func (c *RegCache) Find(name string) *Reg {
	for _, r := range c.regs {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Value returns the cached value without touching the hardware.
func (c *RegCache) Value(id RegID) uint32 {
	return c.regs[id].Value
}

// Set updates the cached value and marks it for write-back.
func (c *RegCache) Set(id RegID, value uint32) {
	r := c.regs[id]
	r.Value = value & r.mask()
	r.Valid = true
	r.Dirty = true
}

// Read reloads one register from the hardware.
func (c *RegCache) Read(id RegID) error {
	r := c.regs[id]
	v, err := c.access.LoadCoreReg(r.Regsel)
	if err != nil {
		return err
	}
	r.Value = (v >> r.Shift) & r.mask()
	r.Valid = true
	r.Dirty = false
	return nil
}

// Write stores one register to the hardware. Packed registers are merged
// into the current selector contents.
func (c *RegCache) Write(id RegID) error {
	r := c.regs[id]
	v := r.Value
	if r.packed() {
		cur, err := c.access.LoadCoreReg(r.Regsel)
		if err != nil {
			return err
		}
		v = cur&^(r.mask()<<r.Shift) | (r.Value&r.mask())<<r.Shift
	}
	if err := c.access.StoreCoreReg(r.Regsel, v); err != nil {
		return err
	}
	r.Dirty = false
	r.Valid = true
	return nil
}

// Invalidate marks every register stale. Pending writes are discarded.
func (c *RegCache) Invalidate() {
	for _, r := range c.regs {
		r.Valid = false
		r.Dirty = false
	}
}

// LoadContext reloads every existing register that is not valid. Registers
// already valid are left untouched.
func (c *RegCache) LoadContext() error {
	for _, r := range c.regs {
		if r.Exist && !r.Valid {
			if err := c.Read(r.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// RestoreContext writes all dirty registers back, last to first.
func (c *RegCache) RestoreContext() error {
	for i := len(c.regs) - 1; i >= 0; i-- {
		if c.regs[i].Dirty {
			if err := c.Write(c.regs[i].ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// AllInvalid reports whether no register holds a valid value.
func (c *RegCache) AllInvalid() bool {
	for _, r := range c.regs {
		if r.Valid {
			return false
		}
	}
	return true
}
