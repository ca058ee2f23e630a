// Package adapter defines the capability contract of a high-level debug
// adapter (ST-Link, J-Link and similar probes) as consumed by the target
// session, together with the global reset configuration.
package adapter

import "hlatarget/internal/dbg"

// Adapter is the register/memory level interface of a debug probe. Every
// call may block for the duration of a physical transaction.
type Adapter interface {
	// ReadReg reads a core register by DCRSR selector.
	ReadReg(regsel uint32) (uint32, error)
	// WriteReg writes a core register by DCRSR selector.
	WriteReg(regsel uint32, value uint32) error
	// ReadMem reads count units of size bytes at addr into buf.
	ReadMem(addr uint32, size, count uint32, buf []byte) error
	// WriteMem writes count units of size bytes from buf to addr.
	WriteMem(addr uint32, size, count uint32, buf []byte) error
	// WriteDebugReg writes a 32-bit debug register.
	WriteDebugReg(addr uint32, value uint32) error

	Halt() error
	Run() error
	Step() error
	Reset() error

	// State returns the coarse core state. StateUnknown signals a
	// communication failure.
	State() dbg.TargetState
}

// ResetLine drives the hardware system reset line. Implementations return an
// error matching common.ErrNotSupported when the probe cannot drive it.
type ResetLine interface {
	AssertSRST() error
	DeassertSRST() error
}

// HLA is an adapter that also owns the reset line.
type HLA interface {
	Adapter
	ResetLine
}

// ResetConfig is the global reset configuration.
type ResetConfig uint32

const (
	ResetNone         ResetConfig = 0
	ResetHasSRST      ResetConfig = 1 << 0
	ResetSRSTNoGating ResetConfig = 1 << 1
)

// HasSRST reports whether a hardware reset line is wired.
func (r ResetConfig) HasSRST() bool {
	return r&ResetHasSRST != 0
}

// SRSTNoGating reports whether the debug interface survives SRST, so the line
// may be asserted before debug is enabled.
func (r ResetConfig) SRSTNoGating() bool {
	return r&ResetSRSTNoGating != 0
}

func (r ResetConfig) String() string {
	s := "none"
	if r.HasSRST() {
		s = "srst_only"
	}
	if r.SRSTNoGating() {
		s += " srst_nogate"
	}
	return s
}
