package semihost

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hlatarget/internal/armv7m"
	"hlatarget/internal/dbg"
	"hlatarget/internal/hla"
	"hlatarget/internal/sim"
)

const strAddr = 0x20000000

type rig struct {
	core   *sim.Core
	target *hla.Target
	h      *Handler
	out    *bytes.Buffer
	events []dbg.Event
}

// newRig boots code at 0x08000100: bkpt 0xab; nop; bkpt 0; wfi.
func newRig(t *testing.T) *rig {
	t.Helper()
	cfg := sim.DefaultConfig()
	core, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	img := make([]byte, 0x108)
	binary.LittleEndian.PutUint32(img[0:], 0x20005000)
	binary.LittleEndian.PutUint32(img[4:], 0x08000101)
	for i, hw := range []uint16{0xBEAB, 0xBF00, 0xBE00, 0xBF30} {
		binary.LittleEndian.PutUint16(img[0x100+2*i:], hw)
	}
	if err := core.LoadImage(cfg.FlashBase, img); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if err := core.LoadImage(strAddr, []byte("hi\n\x00A")); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if err := core.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	r := &rig{core: core, out: &bytes.Buffer{}}
	r.target, err = hla.New(hla.DefaultConfig(), core)
	if err != nil {
		t.Fatalf("hla.New: %v", err)
	}
	r.h = New(r.out)
	r.target.SetSemihosting(r.h)
	r.target.AddEventListener(func(_ *hla.Target, ev dbg.Event) { r.events = append(r.events, ev) })
	if err := r.target.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	return r
}

// trap runs into the semihosting BKPT with r0 and r1 loaded.
func (r *rig) trap(t *testing.T, op Op, param uint32) {
	t.Helper()
	r.core.SetReg(armv7m.RegselR0, uint32(op))
	r.core.SetReg(armv7m.RegselR0+1, param)
	r.core.Tick(10)
	if err := r.target.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
}

func TestWrite0ResumesPastTrap(t *testing.T) {
	r := newRig(t)
	r.trap(t, OpWrite0, strAddr)

	if got := r.out.String(); got != "hi\n" {
		t.Errorf("output %q, want %q", got, "hi\n")
	}
	if r.target.State() != dbg.StateRunning {
		t.Fatalf("state %s, want running", r.target.State())
	}

	// the next BKPT is an ordinary breakpoint
	r.core.Tick(10)
	if err := r.target.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if r.target.State() != dbg.StateHalted || r.core.PC() != 0x08000104 {
		t.Errorf("state %s pc 0x%08x, want halted at 0x08000104", r.target.State(), r.core.PC())
	}
	want := []dbg.Event{dbg.EventResumed, dbg.EventHalted}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteC(t *testing.T) {
	r := newRig(t)
	r.trap(t, OpWriteC, strAddr+4)
	if got := r.out.String(); got != "A" {
		t.Errorf("output %q, want %q", got, "A")
	}
}

func TestUnsupportedOperation(t *testing.T) {
	r := newRig(t)
	r.trap(t, Op(0x01), 0)
	if got := r.core.Reg(armv7m.RegselR0); got != retUnsupported {
		t.Errorf("r0 0x%08x, want 0x%08x", got, retUnsupported)
	}
	if r.target.State() != dbg.StateRunning {
		t.Errorf("state %s, want running", r.target.State())
	}
}

func TestExitReportsHalt(t *testing.T) {
	r := newRig(t)
	r.trap(t, OpExit, 0x20026)

	if exited, code := r.h.Exited(); !exited || code != 0x20026 {
		t.Errorf("Exited() = %v 0x%x", exited, code)
	}
	if r.target.State() != dbg.StateHalted || r.core.PC() != 0x08000100 {
		t.Errorf("state %s pc 0x%08x, want halted on the trap", r.target.State(), r.core.PC())
	}
	if diff := cmp.Diff([]dbg.Event{dbg.EventHalted}, r.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}
