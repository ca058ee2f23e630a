package hla

import (
	"errors"

	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

// AssertReset puts the core into reset. With a hardware reset line the line
// is used, falling back to a SYSRESETREQ software reset when the adapter
// cannot drive it. The adapter's own reset primitive always finishes the
// sequence and its failure aborts.
func (t *Target) AssertReset() error {
	t.Logf(common.SeverityDebug, "assert_reset")

	rc := t.cfg.Reset
	useSRSTFallback := true
	srstAsserted := false
	var res error

	if rc.HasSRST() && rc.SRSTNoGating() {
		res = t.adapter.AssertSRST()
		srstAsserted = true
	}

	if err := t.adapter.WriteDebugReg(armv7m.DCBDHCSR, armv7m.DBGKEY|armv7m.CDebugEn); err != nil {
		t.Logf(common.SeverityWarning, "failed to enable debug: %v", err)
	}

	if !t.examined && !t.cfg.DeferExamine && srstAsserted && res == nil {
		// held in reset: a good time to retry examination
		t.Logf(common.SeverityDebug, "Trying to re-examine under reset")
		if err := t.Examine(); err != nil {
			t.Logf(common.SeverityDebug, "examine under reset failed: %v", err)
		}
	}

	// only set vector catch if halt is requested
	demcr := armv7m.TRCENA
	if t.cfg.ResetHalt {
		demcr |= armv7m.VCCoreReset
	}
	if err := t.adapter.WriteDebugReg(armv7m.DCBDEMCR, demcr); err != nil {
		t.Logf(common.SeverityWarning, "failed to set vector catch: %v", err)
	}

	if rc.HasSRST() {
		if !srstAsserted {
			res = t.adapter.AssertSRST()
		}
		if errors.Is(res, common.ErrNotSupported) {
			t.Logf(common.SeverityError, "Hardware srst not supported, falling back to software reset")
		} else if res == nil {
			useSRSTFallback = false
		}
	}

	if useSRSTFallback {
		if err := t.adapter.WriteDebugReg(armv7m.NVICAIRCR, armv7m.AIRCRVectKey|armv7m.AIRCRSysResetReq); err != nil {
			t.Logf(common.SeverityWarning, "software reset request failed: %v", err)
		}
	}

	if err := t.adapter.Reset(); err != nil {
		return err
	}

	// registers are now invalid
	t.regs.Invalidate()

	if t.cfg.ResetHalt {
		t.state = dbg.StateReset
		t.debugReason = dbg.ReasonDbgRq
	} else {
		t.state = dbg.StateHalted
	}

	return nil
}

// DeassertReset releases reset. Unless a halt was requested the core is
// resumed at its current PC.
func (t *Target) DeassertReset() error {
	t.Logf(common.SeverityDebug, "deassert_reset")

	if t.cfg.Reset.HasSRST() {
		if err := t.adapter.DeassertSRST(); err != nil {
			t.Logf(common.SeverityWarning, "failed to release srst: %v", err)
		}
	}

	// clear both DCC busy bits on initial resume
	t.savedDCRDR = 0

	if t.cfg.ResetHalt {
		return nil
	}
	return t.Resume(true, 0, false, false)
}
