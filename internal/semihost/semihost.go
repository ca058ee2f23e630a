// Package semihost services ARM semihosting calls trapped with BKPT 0xAB.
// Console output operations are forwarded to a writer; the target is then
// resumed past the trap.
package semihost

import (
	"encoding/binary"
	"io"

	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
	"hlatarget/internal/hla"
)

// Op is a semihosting operation number, passed in r0.
type Op uint32

const (
	OpWriteC Op = 0x03
	OpWrite0 Op = 0x04
	OpExit   Op = 0x18
)

// maxString bounds SYS_WRITE0 reads on a target with no terminator.
const maxString = 4096

// retUnsupported is the -1 result left in r0 for unknown operations.
const retUnsupported uint32 = 0xFFFFFFFF

// Handler implements hla.Semihosting.
type Handler struct {
	common.Component

	out    io.Writer
	exited bool
	code   uint32
}

// New creates a handler writing console output to out.
func New(out io.Writer) *Handler {
	h := &Handler{out: out}
	h.InitComponent("semihosting")
	return h
}

// Exited reports whether the target issued SYS_EXIT, and its reason code.
func (h *Handler) Exited() (bool, uint32) {
	return h.exited, h.code
}

// Handle services the call if the halt was a semihosting trap. SYS_EXIT is
// not handled so the halt is reported normally.
func (h *Handler) Handle(t *hla.Target) (bool, error) {
	if t.DebugReason() != dbg.ReasonBreakpoint {
		return false, nil
	}

	regs := t.Regs()
	pc := regs.Value(armv7m.RegPC)
	var hw [2]byte
	if err := t.ReadMemory(pc&^1, 2, 1, hw[:]); err != nil {
		return false, nil
	}
	if !armv7m.IsSemihostingBkpt(binary.LittleEndian.Uint16(hw[:])) {
		return false, nil
	}

	op := Op(regs.Value(armv7m.RegR0))
	param := regs.Value(armv7m.RegR1)

	switch op {
	case OpWriteC:
		var c [1]byte
		if err := t.ReadMemory(param, 1, 1, c[:]); err != nil {
			return true, err
		}
		if _, err := h.out.Write(c[:]); err != nil {
			return true, err
		}
	case OpWrite0:
		s, err := readString(t, param)
		if err != nil {
			return true, err
		}
		if _, err := io.WriteString(h.out, s); err != nil {
			return true, err
		}
	case OpExit:
		h.exited = true
		h.code = param
		h.Logf(common.SeverityInfo, "target exited with reason 0x%x", param)
		return false, nil
	default:
		h.Logf(common.SeverityWarning, "unsupported semihosting operation 0x%02x", uint32(op))
		regs.Set(armv7m.RegR0, retUnsupported)
	}

	// the BKPT is skipped on resume
	return true, t.Resume(true, 0, true, false)
}

func readString(t *hla.Target, address uint32) (string, error) {
	var s []byte
	var c [1]byte
	for len(s) < maxString {
		if err := t.ReadMemory(address, 1, 1, c[:]); err != nil {
			return "", err
		}
		if c[0] == 0 {
			break
		}
		s = append(s, c[0])
		address++
	}
	return string(s), nil
}
