// Package memacc models target memory as a set of non-overlapping address
// ranges, each served by an accessor backed by a byte buffer or by
// callbacks.
package memacc

import "fmt"

// Type describes the storage behind an accessor.
type Type int

const (
	TypeUnknown  Type = iota
	TypeBuffer        // byte buffer
	TypeCallback      // read/write callbacks, used for live register blocks
)

func (t Type) String() string {
	switch t {
	case TypeBuffer:
		return "Buffer"
	case TypeCallback:
		return "Callback"
	default:
		return "Unknown"
	}
}

// Accessor serves one inclusive address range.
type Accessor interface {
	// ReadBytes reads up to len(buf) bytes at address and returns the count
	// read. Reads stop at the end of the range.
	ReadBytes(address uint32, buf []byte) uint32

	// WriteBytes writes up to len(buf) bytes at address and returns the count
	// written. A read-only accessor writes nothing.
	WriteBytes(address uint32, buf []byte) uint32

	// AddrInRange tests if an address is in the inclusive range.
	AddrInRange(address uint32) bool

	// BytesInRange is the number of bytes available from address, capped at
	// reqBytes.
	BytesInRange(address uint32, reqBytes uint32) uint32

	// OverlapRange tests if another accessor's range intersects this one.
	OverlapRange(other Accessor) bool

	// ValidateRange checks the range is halfword aligned and non-empty.
	ValidateRange() bool

	Type() Type
	Range() (start, end uint32)
	ReadOnly() bool
}

// BaseAccessor implements the range logic shared by all accessors.
type BaseAccessor struct {
	StartAddress uint32
	EndAddress   uint32
	AccType      Type
	ReadOnlyAcc  bool
}

func (b *BaseAccessor) AddrInRange(address uint32) bool {
	return address >= b.StartAddress && address <= b.EndAddress
}

func (b *BaseAccessor) BytesInRange(address uint32, reqBytes uint32) uint32 {
	if !b.AddrInRange(address) {
		return 0
	}
	avail := uint64(b.EndAddress) - uint64(address) + 1
	if avail > uint64(reqBytes) {
		return reqBytes
	}
	return uint32(avail)
}

func (b *BaseAccessor) OverlapRange(other Accessor) bool {
	st, en := other.Range()
	return st <= b.EndAddress && en >= b.StartAddress
}

func (b *BaseAccessor) ValidateRange() bool {
	if b.StartAddress&0x1 != 0 {
		return false
	}
	if (b.EndAddress+1)&0x1 != 0 {
		return false
	}
	return b.StartAddress < b.EndAddress
}

func (b *BaseAccessor) Type() Type {
	return b.AccType
}

func (b *BaseAccessor) Range() (uint32, uint32) {
	return b.StartAddress, b.EndAddress
}

func (b *BaseAccessor) ReadOnly() bool {
	return b.ReadOnlyAcc
}

func (b *BaseAccessor) String() string {
	access := "rw"
	if b.ReadOnlyAcc {
		access = "ro"
	}
	return fmt.Sprintf("Range: 0x%08X - 0x%08X; Type: %s; Access: %s", b.StartAddress, b.EndAddress, b.AccType, access)
}
