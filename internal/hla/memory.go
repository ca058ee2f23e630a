package hla

import (
	"encoding/binary"

	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

func checkMemArgs(size, count uint32, buf []byte) error {
	if count == 0 || buf == nil {
		return common.Errorf(dbg.ErrCommandSyntax, "memory access needs a non-zero count and a buffer")
	}
	if uint64(len(buf)) < uint64(size)*uint64(count) {
		return common.Errorf(dbg.ErrCommandSyntax, "buffer of %d bytes too small for %d x %d", len(buf), count, size)
	}
	return nil
}

// ReadMemory reads count units of size bytes at address into buf.
func (t *Target) ReadMemory(address, size, count uint32, buf []byte) error {
	if err := checkMemArgs(size, count, buf); err != nil {
		return err
	}

	t.Logf(common.SeverityDebug, "read_memory 0x%08x %d %d", address, size, count)

	return t.adapter.ReadMem(address, size, count, buf)
}

// WriteMemory writes count units of size bytes from buf to address.
func (t *Target) WriteMemory(address, size, count uint32, buf []byte) error {
	if err := checkMemArgs(size, count, buf); err != nil {
		return err
	}

	t.Logf(common.SeverityDebug, "write_memory 0x%08x %d %d", address, size, count)

	return t.adapter.WriteMem(address, size, count, buf)
}

func (t *Target) readU32(address uint32) (uint32, error) {
	var buf [4]byte
	if err := t.ReadMemory(address, 4, 1, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (t *Target) readU16(address uint32) (uint16, error) {
	var buf [2]byte
	if err := t.ReadMemory(address, 2, 1, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (t *Target) writeU32(address, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return t.WriteMemory(address, 4, 1, buf[:])
}
