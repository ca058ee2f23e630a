package sim

import (
	"encoding/binary"

	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

// Request words produced by the target firmware.
const (
	reqTrace uint32 = 0x00
	reqMsg   uint32 = 0x01
	reqChar  uint32 = 0x02
)

// QueueRequest queues a request word, least significant byte first.
func (c *Core) QueueRequest(word uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], word)
	c.dcc = append(c.dcc, b[:]...)
	c.dccRefill()
}

// QueueData queues payload bytes, zero padded to whole words.
func (c *Core) QueueData(data []byte) {
	c.dcc = append(c.dcc, data...)
	if pad := len(data) % 4; pad != 0 {
		c.dcc = append(c.dcc, make([]byte, 4-pad)...)
	}
	c.dccRefill()
}

// SendChar queues a debug character.
func (c *Core) SendChar(ch byte) {
	c.QueueRequest(reqChar | uint32(ch)<<16)
}

// SendTrace queues a trace point.
func (c *Core) SendTrace(id uint32) {
	c.QueueRequest(reqTrace | (id&0xFFFFFF)<<8)
}

// SendString queues an ASCII debug message.
func (c *Core) SendString(msg string) error {
	if len(msg) > 0xFFFF {
		return common.Errorf(dbg.ErrCommandSyntax, "message of %d bytes too long", len(msg))
	}
	c.QueueRequest(reqMsg | uint32(len(msg))<<16)
	c.QueueData([]byte(msg))
	return nil
}

// SendHex queues a hex debug message of items of size bytes each.
func (c *Core) SendHex(size uint8, items []uint32) error {
	if size != 1 && size != 2 && size != 4 {
		return common.Errorf(dbg.ErrCommandSyntax, "hex item size %d", size)
	}
	if len(items) > 0xFFFF {
		return common.Errorf(dbg.ErrCommandSyntax, "hex message of %d items too long", len(items))
	}
	c.QueueRequest(reqMsg | uint32(size)<<8 | uint32(len(items))<<16)
	data := make([]byte, 0, len(items)*int(size))
	for _, v := range items {
		for b := uint8(0); b < size; b++ {
			data = append(data, byte(v>>(8*b)))
		}
	}
	c.QueueData(data)
	return nil
}

// PendingDCC is the number of queued bytes not yet in DCRDR.
func (c *Core) PendingDCC() int { return len(c.dcc) }

// dccRefill moves the next queued byte into DCRDR once the debugger has
// consumed the previous one. Only running firmware produces.
func (c *Core) dccRefill() {
	if c.state != dbg.StateRunning || len(c.dcc) == 0 {
		return
	}
	if uint8(c.dcrdr)&armv7m.DCCBusy != 0 {
		return
	}
	c.dcrdr = c.dcrdr&^0xFFFF | uint32(c.dcc[0])<<8 | uint32(armv7m.DCCBusy)
	c.dcc = c.dcc[1:]
}
