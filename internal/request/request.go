// Package request decodes the words a target sends over the DCC channel:
// trace points, debug messages and single characters.
package request

import (
	"fmt"
	"io"
	"strings"

	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
	"hlatarget/internal/hla"
)

// Request types carried in the low byte of a request word.
const (
	TypeTraceMsg  uint8 = 0x00
	TypeDebugMsg  uint8 = 0x01
	TypeDebugChar uint8 = 0x02
)

// Dispatcher routes request words to their handlers and writes the decoded
// output to a writer.
type Dispatcher struct {
	common.Component

	out io.Writer
	// charMode reinterprets trace messages as characters.
	charMode bool
	traces   map[uint32]int
}

// NewDispatcher creates a dispatcher writing to out.
func NewDispatcher(out io.Writer) *Dispatcher {
	d := &Dispatcher{
		out:    out,
		traces: make(map[uint32]int),
	}
	d.InitComponent("target_request")
	return d
}

// SetCharMode switches trace messages to character output.
func (d *Dispatcher) SetCharMode(on bool) { d.charMode = on }

// TraceCount returns how often trace point id was hit.
func (d *Dispatcher) TraceCount(id uint32) int { return d.traces[id] }

// HandleRequest decodes one request word, fetching any payload from src.
func (d *Dispatcher) HandleRequest(src hla.RequestSource, request uint32) error {
	switch uint8(request) {
	case TypeTraceMsg:
		if d.charMode {
			return d.charMsg(uint8(request >> 8))
		}
		return d.traceMsg(request >> 8)
	case TypeDebugMsg:
		size := uint32(uint8(request >> 8))
		if size == 0 {
			return d.asciiMsg(src, request>>16)
		}
		return d.hexMsg(src, size, request>>16)
	case TypeDebugChar:
		return d.charMsg(uint8(request >> 16))
	default:
		d.Logf(common.SeverityError, "unknown target request 0x%08x", request)
		return nil
	}
}

func (d *Dispatcher) traceMsg(id uint32) error {
	d.traces[id]++
	d.Logf(common.SeverityDebug, "trace point 0x%x (hit %d)", id, d.traces[id])
	_, err := fmt.Fprintf(d.out, "trace point 0x%x\n", id)
	return err
}

func (d *Dispatcher) charMsg(c uint8) error {
	_, err := d.out.Write([]byte{c})
	return err
}

// payload reads n bytes of message body, rounded up to whole words.
func payload(src hla.RequestSource, n uint32) ([]byte, error) {
	words := (n + 3) / 4
	buf := make([]byte, words*4)
	if words > 0 {
		if err := src.RequestData(words, buf); err != nil {
			return nil, err
		}
	}
	return buf[:n], nil
}

func (d *Dispatcher) asciiMsg(src hla.RequestSource, length uint32) error {
	msg, err := payload(src, length)
	if err != nil {
		return err
	}
	if i := strings.IndexByte(string(msg), 0); i >= 0 {
		msg = msg[:i]
	}
	_, err = fmt.Fprintf(d.out, "%s\n", msg)
	return err
}

func (d *Dispatcher) hexMsg(src hla.RequestSource, size, count uint32) error {
	if size != 1 && size != 2 && size != 4 {
		return common.Errorf(dbg.ErrCommandSyntax, "hex message with item size %d", size)
	}
	data, err := payload(src, size*count)
	if err != nil {
		return err
	}

	items := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		var v uint32
		for b := uint32(0); b < size; b++ {
			v |= uint32(data[i*size+b]) << (8 * b)
		}
		items = append(items, fmt.Sprintf("%0*x", int(size*2), v))
	}
	_, err = fmt.Fprintf(d.out, "%s\n", strings.Join(items, " "))
	return err
}
