package memacc

// BufferAccessor serves a range from a byte slice.
type BufferAccessor struct {
	BaseAccessor
	Buffer []byte
}

// NewBufferAccessor creates an accessor covering buffer at startAddr.
func NewBufferAccessor(startAddr uint32, buffer []byte, readOnly bool) *BufferAccessor {
	b := &BufferAccessor{}
	b.InitAccessor(startAddr, buffer)
	b.AccType = TypeBuffer
	b.ReadOnlyAcc = readOnly
	return b
}

// ReadBytes implements the Accessor interface.
func (b *BufferAccessor) ReadBytes(address uint32, buf []byte) uint32 {
	n := b.BytesInRange(address, uint32(len(buf)))
	if n > 0 {
		offset := address - b.StartAddress
		copy(buf, b.Buffer[offset:offset+n])
	}
	return n
}

// WriteBytes implements the Accessor interface.
func (b *BufferAccessor) WriteBytes(address uint32, buf []byte) uint32 {
	if b.ReadOnlyAcc {
		return 0
	}
	return b.Load(address, buf)
}

// Load writes into the buffer regardless of the access mode. Used to place
// images into read-only memory.
func (b *BufferAccessor) Load(address uint32, buf []byte) uint32 {
	n := b.BytesInRange(address, uint32(len(buf)))
	if n > 0 {
		offset := address - b.StartAddress
		copy(b.Buffer[offset:offset+n], buf)
	}
	return n
}

// InitAccessor re-initializes the accessor with a new buffer.
func (b *BufferAccessor) InitAccessor(startAddr uint32, buffer []byte) {
	b.StartAddress = startAddr
	b.EndAddress = startAddr + uint32(len(buffer)) - 1
	b.Buffer = buffer
}
