package hla

import (
	"encoding/binary"

	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

// dccRead reads one byte of the DCC channel. DCRDR[15:8] is data and
// DCRDR[7:0] control. A valid byte is acknowledged by zeroing only the
// control byte so bits the target writes concurrently are not disturbed.
func (t *Target) dccRead() (data, ctrl uint8, err error) {
	var buf [2]byte
	if err = t.adapter.ReadMem(armv7m.DCBDCRDR, 1, 2, buf[:]); err != nil {
		return 0, 0, err
	}
	dcrdr := binary.LittleEndian.Uint16(buf[:])
	ctrl = uint8(dcrdr)
	data = uint8(dcrdr >> 8)

	t.Logf(common.SeverityDebug, "data 0x%x ctrl 0x%x", data, ctrl)

	if ctrl&armv7m.DCCBusy != 0 {
		// write ack back to software dcc register to signify we have read data
		zero := []byte{0}
		err = t.adapter.WriteMem(armv7m.DCBDCRDR, 1, 1, zero)
	}
	return data, ctrl, err
}

// RequestData reads size words of request payload into buf, one DCC byte
// at a time in transfer order.
func (t *Target) RequestData(size uint32, buf []byte) error {
	n := uint64(size) * 4
	if uint64(len(buf)) < n {
		return common.Errorf(dbg.ErrCommandSyntax, "request buffer of %d bytes too small for %d words", len(buf), size)
	}
	for i := uint64(0); i < n; i++ {
		data, _, err := t.dccRead()
		if err != nil {
			return err
		}
		buf[i] = data
	}
	return nil
}

// HandleTargetRequest is the periodic DCC poll. It runs only on an examined,
// running target with message delivery enabled. When a byte is pending the
// rest of the request word is read back to back, assuming the target keeps
// up; a read failure drops the partial word.
func (t *Target) HandleTargetRequest() error {
	if !t.examined {
		return nil
	}
	if !t.cfg.DbgMsgEnabled {
		return nil
	}
	if t.state != dbg.StateRunning {
		return nil
	}

	data, ctrl, err := t.dccRead()
	if err != nil {
		return err
	}
	if ctrl&armv7m.DCCBusy == 0 {
		return nil
	}

	request := uint32(data)
	for shift := 8; shift <= 24; shift += 8 {
		if data, _, err = t.dccRead(); err != nil {
			return err
		}
		request |= uint32(data) << shift
	}

	if t.requests == nil {
		t.Logf(common.SeverityDebug, "dropping target request 0x%08x: no handler", request)
		return nil
	}
	return t.requests.HandleRequest(t, request)
}
