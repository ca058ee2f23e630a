package sim

import (
	"sort"

	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
	"hlatarget/internal/hla"
)

// Breakpoints is a hardware breakpoint store backed by the core's FPB
// comparators.
type Breakpoints struct {
	core   *Core
	bps    map[uint32]*hla.Breakpoint
	nextID uint32
}

// NewBreakpoints creates an empty store for c.
func NewBreakpoints(c *Core) *Breakpoints {
	return &Breakpoints{core: c, bps: make(map[uint32]*hla.Breakpoint), nextID: 1}
}

// Add creates and installs a breakpoint at address.
func (b *Breakpoints) Add(address uint32) (*hla.Breakpoint, error) {
	address &^= 1
	if _, ok := b.bps[address]; ok {
		return nil, common.Errorf(dbg.ErrCommandSyntax, "breakpoint already set at 0x%08x", address)
	}
	bp := &hla.Breakpoint{Address: address, ID: b.nextID}
	if err := b.Set(bp); err != nil {
		return nil, err
	}
	b.nextID++
	b.bps[address] = bp
	return bp, nil
}

// Remove uninstalls and forgets the breakpoint at address.
func (b *Breakpoints) Remove(address uint32) error {
	address &^= 1
	bp, ok := b.bps[address]
	if !ok {
		return common.Errorf(dbg.ErrCommandSyntax, "no breakpoint at 0x%08x", address)
	}
	if err := b.Unset(bp); err != nil {
		return err
	}
	delete(b.bps, address)
	return nil
}

// List returns the breakpoints ordered by address.
func (b *Breakpoints) List() []*hla.Breakpoint {
	list := make([]*hla.Breakpoint, 0, len(b.bps))
	for _, bp := range b.bps {
		list = append(list, bp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Address < list[j].Address })
	return list
}

// Find implements hla.BreakpointManager.
func (b *Breakpoints) Find(address uint32) *hla.Breakpoint {
	return b.bps[address&^1]
}

// Set implements hla.BreakpointManager.
func (b *Breakpoints) Set(bp *hla.Breakpoint) error {
	if err := b.core.SetComparator(bp.Address); err != nil {
		return err
	}
	bp.Installed = true
	return nil
}

// Unset implements hla.BreakpointManager.
func (b *Breakpoints) Unset(bp *hla.Breakpoint) error {
	b.core.ClearComparator(bp.Address)
	bp.Installed = false
	return nil
}

// EnableAll implements hla.BreakpointManager.
func (b *Breakpoints) EnableAll() error {
	for _, bp := range b.List() {
		if bp.Installed {
			continue
		}
		if err := b.Set(bp); err != nil {
			return err
		}
	}
	return nil
}
