package hla

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"

	"hlatarget/internal/adapter"
	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

var errUSB = errors.New("usb transfer timed out")

// fakeAdapter records every capability call in order.
type fakeAdapter struct {
	log    []string
	state  dbg.TargetState
	states []dbg.TargetState
	regs   map[uint32]uint32
	mem    map[uint32]byte
	dcc    []uint16
	fail   map[string]error

	assertSRSTErr error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		regs:  map[uint32]uint32{},
		mem:   map[uint32]byte{},
		fail:  map[string]error{},
		state: dbg.StateRunning,
	}
}

func (f *fakeAdapter) record(op string, format string, args ...interface{}) error {
	entry := op
	if format != "" {
		entry += " " + fmt.Sprintf(format, args...)
	}
	f.log = append(f.log, entry)
	if err, ok := f.fail[entry]; ok {
		return err
	}
	return f.fail[op]
}

func (f *fakeAdapter) ReadReg(regsel uint32) (uint32, error) {
	if err := f.record("ReadReg", "0x%02x", regsel); err != nil {
		return 0, err
	}
	return f.regs[regsel], nil
}

func (f *fakeAdapter) WriteReg(regsel uint32, value uint32) error {
	if err := f.record("WriteReg", "0x%02x=0x%08x", regsel, value); err != nil {
		return err
	}
	f.regs[regsel] = value
	return nil
}

func (f *fakeAdapter) ReadMem(addr uint32, size, count uint32, buf []byte) error {
	if err := f.record("ReadMem", "0x%08x %dx%d", addr, size, count); err != nil {
		return err
	}
	if addr == armv7m.DCBDCRDR && size == 1 && count == 2 && len(f.dcc) > 0 {
		binary.LittleEndian.PutUint16(buf, f.dcc[0])
		f.dcc = f.dcc[1:]
		return nil
	}
	for i := uint32(0); i < size*count; i++ {
		buf[i] = f.mem[addr+i]
	}
	return nil
}

func (f *fakeAdapter) WriteMem(addr uint32, size, count uint32, buf []byte) error {
	n := size * count
	var err error
	if size == 4 && count == 1 {
		err = f.record("WriteMem", "0x%08x=0x%08x", addr, binary.LittleEndian.Uint32(buf))
	} else {
		err = f.record("WriteMem", "0x%08x %dx%d % x", addr, size, count, buf[:n])
	}
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		f.mem[addr+i] = buf[i]
	}
	return nil
}

func (f *fakeAdapter) WriteDebugReg(addr uint32, value uint32) error {
	return f.record("WriteDebugReg", "0x%08x=0x%08x", addr, value)
}

func (f *fakeAdapter) Halt() error  { return f.record("Halt", "") }
func (f *fakeAdapter) Run() error   { return f.record("Run", "") }
func (f *fakeAdapter) Step() error  { return f.record("Step", "") }
func (f *fakeAdapter) Reset() error { return f.record("Reset", "") }

func (f *fakeAdapter) State() dbg.TargetState {
	if len(f.states) > 0 {
		f.state = f.states[0]
		f.states = f.states[1:]
	}
	return f.state
}

func (f *fakeAdapter) AssertSRST() error {
	if err := f.record("AssertSRST", ""); err != nil {
		return err
	}
	return f.assertSRSTErr
}

func (f *fakeAdapter) DeassertSRST() error { return f.record("DeassertSRST", "") }

func (f *fakeAdapter) putU32(addr, value uint32) {
	for i := uint32(0); i < 4; i++ {
		f.mem[addr+i] = byte(value >> (8 * i))
	}
}

func (f *fakeAdapter) putU16(addr uint32, value uint16) {
	f.mem[addr] = byte(value)
	f.mem[addr+1] = byte(value >> 8)
}

// filtered keeps log entries whose op is one of ops.
func (f *fakeAdapter) filtered(ops ...string) []string {
	var out []string
	for _, entry := range f.log {
		op := strings.SplitN(entry, " ", 2)[0]
		for _, want := range ops {
			if op == want {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

// fakeBreakpoints shares the adapter log so ordering can be checked.
type fakeBreakpoints struct {
	bps     map[uint32]*Breakpoint
	log     *[]string
	failSet error
}

func newFakeBreakpoints(f *fakeAdapter) *fakeBreakpoints {
	return &fakeBreakpoints{bps: map[uint32]*Breakpoint{}, log: &f.log}
}

func (b *fakeBreakpoints) add(addr, id uint32) *Breakpoint {
	bp := &Breakpoint{Address: addr, ID: id, Installed: true}
	b.bps[addr] = bp
	return bp
}

func (b *fakeBreakpoints) Find(addr uint32) *Breakpoint { return b.bps[addr] }

func (b *fakeBreakpoints) Set(bp *Breakpoint) error {
	*b.log = append(*b.log, fmt.Sprintf("SetBP 0x%08x", bp.Address))
	if b.failSet != nil {
		return b.failSet
	}
	bp.Installed = true
	return nil
}

func (b *fakeBreakpoints) Unset(bp *Breakpoint) error {
	*b.log = append(*b.log, fmt.Sprintf("UnsetBP 0x%08x", bp.Address))
	bp.Installed = false
	return nil
}

func (b *fakeBreakpoints) EnableAll() error {
	*b.log = append(*b.log, "EnableBP")
	return nil
}

type eventRecorder struct {
	events []dbg.Event
}

func (e *eventRecorder) listen(t *Target, ev dbg.Event) {
	e.events = append(e.events, ev)
}

func newTestTarget(t *testing.T, cfg Config) (*Target, *fakeAdapter, *eventRecorder) {
	t.Helper()
	f := newFakeAdapter()
	tgt, err := New(cfg, f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec := &eventRecorder{}
	tgt.AddEventListener(rec.listen)
	return tgt, f, rec
}

// haltedTarget returns a target that has been polled into Halted with the
// given PC, with the adapter log cleared.
func haltedTarget(t *testing.T, pc uint32) (*Target, *fakeAdapter, *eventRecorder) {
	t.Helper()
	tgt, f, rec := newTestTarget(t, DefaultConfig())
	f.regs[armv7m.RegselPC] = pc
	f.regs[armv7m.RegselXPSR] = 0x01000000
	f.state = dbg.StateHalted
	if err := tgt.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	f.log = nil
	rec.events = nil
	return tgt, f, rec
}

func isCode(err error, code dbg.Err) bool {
	return common.CodeOf(err) == code
}

var _ adapter.HLA = (*fakeAdapter)(nil)
