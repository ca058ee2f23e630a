// Package hla implements the target-side control logic for an ARMv7-M core
// reached through a high-level debug adapter: state polling, debug entry,
// reset sequencing, resume and single step around breakpoints, and the DCC
// request channel.
//
// A Target is not safe for concurrent use. All entry points are expected to
// be called from a single loop (see package sched).
package hla

import (
	"fmt"

	"hlatarget/internal/adapter"
	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

// Config holds the session-scoped settings of a target.
type Config struct {
	Name          string
	APNum         int
	Reset         adapter.ResetConfig
	ResetHalt     bool
	DeferExamine  bool
	DbgMsgEnabled bool
}

// DefaultConfig returns a configuration with no access port override, no
// hardware reset line and DCC polling enabled.
func DefaultConfig() Config {
	return Config{
		Name:          "hla_target",
		APNum:         dbg.APSelInvalid,
		DbgMsgEnabled: true,
	}
}

// Breakpoint is a breakpoint owned by a BreakpointManager.
type Breakpoint struct {
	Address   uint32
	ID        uint32
	Installed bool
}

// BreakpointManager is the breakpoint/watchpoint store. The target only looks
// breakpoints up and toggles their installation.
type BreakpointManager interface {
	Find(addr uint32) *Breakpoint
	Set(bp *Breakpoint) error
	Unset(bp *Breakpoint) error
	// EnableAll re-enables breakpoint and watchpoint enforcement.
	EnableAll() error
}

// WorkingAreas releases transient target memory reservations.
type WorkingAreas interface {
	FreeAll()
}

// Semihosting inspects a fresh halt. handled is true when the halt was a
// semihosting call that has been serviced; err is then the result reported
// by the poll.
type Semihosting interface {
	Handle(t *Target) (handled bool, err error)
}

// RequestSource supplies the payload words that follow a request word.
type RequestSource interface {
	RequestData(size uint32, buf []byte) error
}

// RequestHandler consumes request words assembled from the DCC channel.
type RequestHandler interface {
	HandleRequest(src RequestSource, request uint32) error
}

// EventListener is called for every emitted event.
type EventListener func(t *Target, ev dbg.Event)

type noBreakpoints struct{}

func (noBreakpoints) Find(uint32) *Breakpoint { return nil }
func (noBreakpoints) Set(*Breakpoint) error   { return nil }
func (noBreakpoints) Unset(*Breakpoint) error { return nil }
func (noBreakpoints) EnableAll() error        { return nil }

// coreRegs is the register cache access strategy: core registers go through
// the adapter's register primitives.
type coreRegs struct {
	a adapter.Adapter
}

func (c coreRegs) LoadCoreReg(regsel uint32) (uint32, error) {
	return c.a.ReadReg(regsel)
}

func (c coreRegs) StoreCoreReg(regsel uint32, value uint32) error {
	return c.a.WriteReg(regsel, value)
}

// Target is one debug session on an ARMv7-M core.
type Target struct {
	common.Component

	cfg      Config
	adapter  adapter.HLA
	regs     *armv7m.RegCache
	bps      BreakpointManager
	work     WorkingAreas
	semihost Semihosting
	requests RequestHandler

	listeners []EventListener

	state       dbg.TargetState
	debugReason dbg.DebugReason
	// savedDCRDR preserves DCRDR across halts; its low byte carries the DCC
	// handshake bits.
	savedDCRDR uint32
	examined   bool
	demcr      uint32
	execMode   armv7m.ExecMode
	cpuid      uint32
}

// New creates a target session bound to an adapter. An access port other
// than 0 is rejected: high-level adapters only reach AP 0.
func New(cfg Config, a adapter.HLA) (*Target, error) {
	if cfg.APNum != dbg.APSelInvalid && cfg.APNum != 0 {
		return nil, common.Errorf(dbg.ErrCommandSyntax, "hla_target: invalid parameter -ap-num (> 0)")
	}
	if a == nil {
		return nil, common.Errorf(dbg.ErrCommandSyntax, "hla_target: no adapter")
	}
	if cfg.Name == "" {
		cfg.Name = "hla_target"
	}

	t := &Target{
		cfg:         cfg,
		adapter:     a,
		bps:         noBreakpoints{},
		state:       dbg.StateUnknown,
		debugReason: dbg.ReasonNotHalted,
	}
	t.InitComponent(cfg.Name)
	t.regs = armv7m.NewRegCache(coreRegs{a: a})
	return t, nil
}

// SetBreakpoints attaches the breakpoint store. nil detaches it.
func (t *Target) SetBreakpoints(bm BreakpointManager) {
	if bm == nil {
		t.bps = noBreakpoints{}
		return
	}
	t.bps = bm
}

func (t *Target) SetWorkingAreas(w WorkingAreas)     { t.work = w }
func (t *Target) SetSemihosting(s Semihosting)       { t.semihost = s }
func (t *Target) SetRequestHandler(h RequestHandler) { t.requests = h }
func (t *Target) AddEventListener(fn EventListener)  { t.listeners = append(t.listeners, fn) }
func (t *Target) Config() Config                     { return t.cfg }
func (t *Target) State() dbg.TargetState             { return t.state }
func (t *Target) DebugReason() dbg.DebugReason       { return t.debugReason }
func (t *Target) ExecMode() armv7m.ExecMode          { return t.execMode }
func (t *Target) SavedDCRDR() uint32                 { return t.savedDCRDR }
func (t *Target) Examined() bool                     { return t.examined }
func (t *Target) CPUID() uint32                      { return t.cpuid }
func (t *Target) Regs() *armv7m.RegCache             { return t.regs }
func (t *Target) ResetHalt() bool                    { return t.cfg.ResetHalt }
func (t *Target) SetResetHalt(halt bool)             { t.cfg.ResetHalt = halt }
func (t *Target) DbgMsgEnabled() bool                { return t.cfg.DbgMsgEnabled }
func (t *Target) SetDbgMsgEnabled(enable bool)       { t.cfg.DbgMsgEnabled = enable }
func (t *Target) VectorCatch() uint32                { return t.demcr }

// SetVectorCatch records the user DEMCR flags applied on every resume.
func (t *Target) SetVectorCatch(demcr uint32) {
	t.demcr = demcr
}

// RegList returns the core registers for the front end.
func (t *Target) RegList() []*armv7m.Reg {
	return t.regs.Regs()
}

// GDBArch is the architecture name reported to GDB.
func (t *Target) GDBArch() string {
	return "arm"
}

// Examine reads CPUID and marks the target examined.
func (t *Target) Examine() error {
	cpuid, err := t.readU32(armv7m.CPUID)
	if err != nil {
		return err
	}
	t.cpuid = cpuid
	t.examined = true
	t.Logf(common.SeverityInfo, "%s %s processor detected (CPUID 0x%08x)",
		armv7m.CPUIDPartName(cpuid), armv7m.CPUIDRevision(cpuid), cpuid)
	return nil
}

// ArchState describes the halted core for the front end.
func (t *Target) ArchState() string {
	sp, spName := t.regs.Value(armv7m.RegMSP), 'm'
	if t.execMode.Stack == armv7m.StackProcess {
		sp, spName = t.regs.Value(armv7m.RegPSP), 'p'
	}
	mode := t.execMode.CoreMode.String()
	if t.execMode.CoreMode == armv7m.ModeHandler {
		mode = fmt.Sprintf("%s exception %d", mode, t.execMode.ExceptionNumber)
	}
	return fmt.Sprintf("target halted due to %s, current mode: %s\nxPSR: %#8.8x pc: %#8.8x %csp: %#8.8x",
		t.debugReason, mode,
		t.regs.Value(armv7m.RegXPSR), t.regs.Value(armv7m.RegPC), spName, sp)
}

func (t *Target) emit(ev dbg.Event) {
	for _, fn := range t.listeners {
		fn(t, ev)
	}
}

func (t *Target) pc() uint32 {
	return t.regs.Value(armv7m.RegPC)
}
