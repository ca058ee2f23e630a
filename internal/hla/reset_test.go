package hla

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hlatarget/internal/adapter"
	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

const (
	logDHCSREnable   = "WriteDebugReg 0xe000edf0=0xa05f0001"
	logDEMCRTrace    = "WriteDebugReg 0xe000edfc=0x01000000"
	logDEMCRCatch    = "WriteDebugReg 0xe000edfc=0x01000001"
	logAIRCRSysReset = "WriteDebugReg 0xe000ed0c=0x05fa0004"
	logCPUIDRead     = "ReadMem 0xe000ed00 4x1"
)

func TestAssertResetSequences(t *testing.T) {
	tests := []struct {
		name      string
		reset     adapter.ResetConfig
		resetHalt bool
		srstErr   error
		want      []string
		state     dbg.TargetState
	}{
		{
			name:  "software reset",
			reset: adapter.ResetNone,
			want:  []string{logDHCSREnable, logDEMCRTrace, logAIRCRSysReset, "Reset"},
			state: dbg.StateHalted,
		},
		{
			name:      "software reset with halt",
			reset:     adapter.ResetNone,
			resetHalt: true,
			want:      []string{logDHCSREnable, logDEMCRCatch, logAIRCRSysReset, "Reset"},
			state:     dbg.StateReset,
		},
		{
			name:      "srst",
			reset:     adapter.ResetHasSRST,
			resetHalt: true,
			want:      []string{logDHCSREnable, logDEMCRCatch, "AssertSRST", "Reset"},
			state:     dbg.StateReset,
		},
		{
			name:  "srst nogate examines under reset",
			reset: adapter.ResetHasSRST | adapter.ResetSRSTNoGating,
			want:  []string{"AssertSRST", logDHCSREnable, logCPUIDRead, logDEMCRTrace, "Reset"},
			state: dbg.StateHalted,
		},
		{
			name:    "srst not supported falls back",
			reset:   adapter.ResetHasSRST,
			srstErr: common.Errorf(dbg.ErrCommandNotFound, "no srst"),
			want:    []string{logDHCSREnable, logDEMCRTrace, "AssertSRST", logAIRCRSysReset, "Reset"},
			state:   dbg.StateHalted,
		},
		{
			name:    "srst failure falls back",
			reset:   adapter.ResetHasSRST | adapter.ResetSRSTNoGating,
			srstErr: errUSB,
			want:    []string{"AssertSRST", logDHCSREnable, logDEMCRTrace, logAIRCRSysReset, "Reset"},
			state:   dbg.StateHalted,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Reset = tc.reset
			cfg.ResetHalt = tc.resetHalt
			tgt, f, _ := newTestTarget(t, cfg)
			f.assertSRSTErr = tc.srstErr
			f.putU32(armv7m.CPUID, 0x410FC241)

			if err := tgt.AssertReset(); err != nil {
				t.Fatalf("AssertReset: %v", err)
			}
			got := f.filtered("WriteDebugReg", "AssertSRST", "Reset", "ReadMem")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("adapter calls mismatch (-want +got):\n%s", diff)
			}
			if tgt.State() != tc.state {
				t.Errorf("state %s, want %s", tgt.State(), tc.state)
			}
			if tc.resetHalt && tgt.DebugReason() != dbg.ReasonDbgRq {
				t.Errorf("reason %s, want debug-request", tgt.DebugReason())
			}
			if !tgt.Regs().AllInvalid() {
				t.Errorf("register cache still valid after reset")
			}
		})
	}
}

func TestAssertResetSkipsExamineWhenDeferred(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reset = adapter.ResetHasSRST | adapter.ResetSRSTNoGating
	cfg.DeferExamine = true
	tgt, f, _ := newTestTarget(t, cfg)

	if err := tgt.AssertReset(); err != nil {
		t.Fatalf("AssertReset: %v", err)
	}
	if got := f.filtered("ReadMem"); len(got) != 0 {
		t.Errorf("examined under reset despite deferral: %v", got)
	}
	if tgt.Examined() {
		t.Errorf("target marked examined")
	}
}

func TestAssertResetDebugRegisterWritesAreBestEffort(t *testing.T) {
	tgt, f, _ := newTestTarget(t, DefaultConfig())
	f.fail["WriteDebugReg"] = errUSB

	if err := tgt.AssertReset(); err != nil {
		t.Fatalf("AssertReset: %v", err)
	}
	if tgt.State() != dbg.StateHalted {
		t.Errorf("state %s, want halted", tgt.State())
	}
}

func TestAssertResetAdapterFailureAborts(t *testing.T) {
	tgt, f, _ := haltedTarget(t, 0x08000100)
	f.fail["Reset"] = errUSB

	if err := tgt.AssertReset(); !errors.Is(err, errUSB) {
		t.Fatalf("AssertReset: got %v, want %v", err, errUSB)
	}
	if tgt.Regs().AllInvalid() {
		t.Errorf("register cache invalidated by failed reset")
	}
	if tgt.State() != dbg.StateHalted {
		t.Errorf("state %s changed by failed reset", tgt.State())
	}
}

func TestDeassertResetResumes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reset = adapter.ResetHasSRST
	tgt, f, rec := newTestTarget(t, cfg)
	f.putU32(armv7m.DCBDCRDR, 0x0101)
	f.state = dbg.StateHalted
	if err := tgt.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if err := tgt.AssertReset(); err != nil {
		t.Fatalf("AssertReset: %v", err)
	}
	f.log = nil
	rec.events = nil

	if err := tgt.DeassertReset(); err != nil {
		t.Fatalf("DeassertReset: %v", err)
	}
	const clearDCRDR = "WriteMem 0xe000edf8=0x00000000"
	got := f.filtered("DeassertSRST", "Run")
	if diff := cmp.Diff([]string{"DeassertSRST", "Run"}, got); diff != "" {
		t.Errorf("adapter calls mismatch (-want +got):\n%s", diff)
	}
	if tgt.SavedDCRDR() != 0 {
		t.Errorf("saved DCRDR 0x%x, want 0", tgt.SavedDCRDR())
	}
	wrote := false
	for _, entry := range f.log {
		if entry == clearDCRDR {
			wrote = true
		}
	}
	if !wrote {
		t.Errorf("cleared DCRDR not written back: %v", f.log)
	}
	if tgt.State() != dbg.StateRunning {
		t.Errorf("state %s, want running", tgt.State())
	}
	if diff := cmp.Diff([]dbg.Event{dbg.EventResumed}, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDeassertResetWithHaltStaysPut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResetHalt = true
	tgt, f, _ := newTestTarget(t, cfg)
	if err := tgt.AssertReset(); err != nil {
		t.Fatalf("AssertReset: %v", err)
	}
	f.log = nil

	if err := tgt.DeassertReset(); err != nil {
		t.Fatalf("DeassertReset: %v", err)
	}
	if len(f.log) != 0 {
		t.Errorf("unexpected adapter calls %v", f.log)
	}
	if tgt.State() != dbg.StateReset {
		t.Errorf("state %s, want reset", tgt.State())
	}
}
