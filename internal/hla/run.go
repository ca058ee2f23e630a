package hla

import (
	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

func (t *Target) notHalted() error {
	t.Logf(common.SeverityError, "not halted")
	return common.Errorf(dbg.ErrTargetNotHalted, "%s: target not halted", t.ComponentName())
}

// Halt requests the core to stop. The poller observes the transition.
func (t *Target) Halt() error {
	t.Logf(common.SeverityDebug, "halt")

	if t.state == dbg.StateHalted {
		t.Logf(common.SeverityDebug, "target was already halted")
		return nil
	}

	if t.state == dbg.StateUnknown {
		t.Logf(common.SeverityWarning, "target was in unknown state when halt was requested")
	}

	if err := t.adapter.Halt(); err != nil {
		return err
	}

	t.debugReason = dbg.ReasonDbgRq
	return nil
}

// maybeSkipBkptInst steps PC over a BKPT instruction that caused the last
// halt; otherwise the core would trap on it again. A failed opcode read
// leaves PC alone.
func (t *Target) maybeSkipBkptInst() bool {
	if t.debugReason != dbg.ReasonBreakpoint {
		return false
	}

	pc := t.pc()
	op, err := t.readU16(pc &^ 1)
	if err != nil || !armv7m.IsBkpt(op) {
		return false
	}

	t.regs.Set(armv7m.RegPC, pc+2)
	t.Logf(common.SeverityDebug, "Skipping over BKPT instruction")
	return true
}

// Resume restarts the core. With current false execution continues at
// address. A breakpoint at the resume address is stepped over first when
// handleBreakpoints is set. debugExecution resumes for algorithm execution:
// working areas and breakpoint enforcement are left alone and the target
// enters DebugRunning.
//
// A failure part way leaves the session as of the last completed step.
func (t *Target) Resume(current bool, address uint32, handleBreakpoints, debugExecution bool) error {
	t.Logf(common.SeverityDebug, "resume %t 0x%08x %t %t", current, address, handleBreakpoints, debugExecution)

	if t.state != dbg.StateHalted {
		return t.notHalted()
	}

	if !debugExecution {
		if t.work != nil {
			t.work.FreeAll()
		}
		if err := t.bps.EnableAll(); err != nil {
			return err
		}
	}

	if !current {
		t.regs.Set(armv7m.RegPC, address)
	}

	if t.bps.Find(t.pc()) == nil && !debugExecution {
		t.maybeSkipBkptInst()
	}

	resumePC := t.pc()

	// write any user vector flags
	if err := t.writeU32(armv7m.DCBDEMCR, armv7m.TRCENA|t.demcr); err != nil {
		return err
	}

	if err := t.regs.RestoreContext(); err != nil {
		return err
	}

	if err := t.writeU32(armv7m.DCBDCRDR, t.savedDCRDR); err != nil {
		return err
	}

	// registers are now invalid
	t.regs.Invalidate()

	if handleBreakpoints {
		// single step past breakpoint at current address
		if bp := t.bps.Find(resumePC); bp != nil {
			t.Logf(common.SeverityDebug, "unset breakpoint at 0x%08x (ID: %d)", bp.Address, bp.ID)
			if err := t.bps.Unset(bp); err != nil {
				return err
			}
			if err := t.adapter.Step(); err != nil {
				return err
			}
			if err := t.bps.Set(bp); err != nil {
				return err
			}
		}
	}

	if err := t.adapter.Run(); err != nil {
		return err
	}

	t.debugReason = dbg.ReasonNotHalted

	if !debugExecution {
		t.state = dbg.StateRunning
		t.emit(dbg.EventResumed)
	} else {
		t.state = dbg.StateDebugRunning
		t.emit(dbg.EventDebugResumed)
	}

	return nil
}

// Step executes a single instruction. A breakpoint at the step address is
// removed for the duration of the step when handleBreakpoints is set; if the
// step fails it stays removed.
func (t *Target) Step(current bool, address uint32, handleBreakpoints bool) error {
	t.Logf(common.SeverityDebug, "step %t 0x%08x %t", current, address, handleBreakpoints)

	if t.state != dbg.StateHalted {
		return t.notHalted()
	}

	if !current {
		t.regs.Set(armv7m.RegPC, address)
	}

	var bp *Breakpoint
	if handleBreakpoints {
		bp = t.bps.Find(t.pc())
		if bp != nil {
			if err := t.bps.Unset(bp); err != nil {
				return err
			}
		}
	}

	t.maybeSkipBkptInst()

	t.debugReason = dbg.ReasonSingleStep

	if err := t.regs.RestoreContext(); err != nil {
		return err
	}

	if err := t.writeU32(armv7m.DCBDCRDR, t.savedDCRDR); err != nil {
		return err
	}

	t.emit(dbg.EventResumed)

	if err := t.adapter.Step(); err != nil {
		return err
	}

	// registers are now invalid
	t.regs.Invalidate()

	if bp != nil {
		if err := t.bps.Set(bp); err != nil {
			return err
		}
	}

	if err := t.debugEntry(); err != nil {
		return err
	}
	t.emit(dbg.EventHalted)

	t.Logf(common.SeverityInfo, "halted: PC: 0x%08x", t.pc())
	return nil
}
