package hla

import (
	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

// Poll queries the adapter state and applies any transition. A transition
// into Halted runs debug entry and emits a halted notification.
func (t *Target) Poll() error {
	prev := t.state
	state := t.adapter.State()

	if state == dbg.StateUnknown || !state.IsValid() {
		t.Logf(common.SeverityError, "jtag status contains invalid mode value - communication failure")
		return common.Errorf(dbg.ErrTargetFailure, "adapter reported state %s", state)
	}

	if prev == state {
		return nil
	}

	// resumes in debug mode are not surfaced as ordinary run transitions
	if prev == dbg.StateDebugRunning && state == dbg.StateRunning {
		return nil
	}

	t.state = state

	if state == dbg.StateHalted {
		if err := t.debugEntry(); err != nil {
			return err
		}

		if prev == dbg.StateDebugRunning {
			t.emit(dbg.EventDebugHalted)
		} else {
			if t.semihost != nil {
				if handled, err := t.semihost.Handle(t); handled {
					return err
				}
			}
			t.emit(dbg.EventHalted)
		}

		t.Logf(common.SeverityDebug, "halted: PC: 0x%08x", t.pc())
	}

	return nil
}

// examineDebugReason attributes halts not explained by a request or a step
// to a breakpoint.
func (t *Target) examineDebugReason() {
	if t.debugReason != dbg.ReasonDbgRq && t.debugReason != dbg.ReasonSingleStep {
		t.debugReason = dbg.ReasonBreakpoint
	}
}

// debugEntry captures the halted context. DCRDR is read first: nothing else
// may touch the debug registers before it is preserved.
func (t *Target) debugEntry() error {
	dcrdr, err := t.readU32(armv7m.DCBDCRDR)
	if err != nil {
		return err
	}
	t.savedDCRDR = dcrdr

	t.examineDebugReason()

	if err := t.regs.LoadContext(); err != nil {
		return err
	}

	// make sure we clear the vector catch bit
	if err := t.adapter.WriteDebugReg(armv7m.DCBDEMCR, armv7m.TRCENA); err != nil {
		return err
	}

	t.execMode = armv7m.DecodeExecMode(
		t.regs.Value(armv7m.RegXPSR),
		t.regs.Value(armv7m.RegCONTROL))

	t.Logf(common.SeverityDebug, "entered debug state in core mode: %s at PC 0x%08x, target->state: %s",
		t.execMode.CoreMode, t.pc(), t.state)
	return nil
}
