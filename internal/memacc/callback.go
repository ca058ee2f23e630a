package memacc

// ReadFn reads len(buf) bytes at address and returns the count read.
type ReadFn func(address uint32, buf []byte) uint32

// WriteFn writes buf at address and returns the count written.
type WriteFn func(address uint32, buf []byte) uint32

// CallbackAccessor serves a range through callbacks. Callbacks only see
// requests already clipped to the range.
type CallbackAccessor struct {
	BaseAccessor
	ReadCB  ReadFn
	WriteCB WriteFn
}

// NewCallbackAccessor creates a callback accessor for the inclusive range.
func NewCallbackAccessor(startAddr, endAddr uint32) *CallbackAccessor {
	return &CallbackAccessor{
		BaseAccessor: BaseAccessor{
			StartAddress: startAddr,
			EndAddress:   endAddr,
			AccType:      TypeCallback,
		},
	}
}

// SetCallbacks installs the callbacks. A nil write callback makes the range
// read-only.
func (c *CallbackAccessor) SetCallbacks(read ReadFn, write WriteFn) {
	c.ReadCB = read
	c.WriteCB = write
	c.ReadOnlyAcc = write == nil
}

// ReadBytes implements the Accessor interface.
func (c *CallbackAccessor) ReadBytes(address uint32, buf []byte) uint32 {
	n := c.BytesInRange(address, uint32(len(buf)))
	if n == 0 || c.ReadCB == nil {
		return 0
	}
	return c.ReadCB(address, buf[:n])
}

// WriteBytes implements the Accessor interface.
func (c *CallbackAccessor) WriteBytes(address uint32, buf []byte) uint32 {
	n := c.BytesInRange(address, uint32(len(buf)))
	if n == 0 || c.WriteCB == nil {
		return 0
	}
	return c.WriteCB(address, buf[:n])
}
