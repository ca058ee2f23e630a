package armv7m

// CoreMode is the processor execution mode seen at debug entry.
type CoreMode int

const (
	ModeThread     CoreMode = iota // privileged thread
	ModeUserThread                 // unprivileged thread
	ModeHandler
)

func (m CoreMode) String() string {
	switch m {
	case ModeThread:
		return "Thread"
	case ModeUserThread:
		return "Thread (User)"
	case ModeHandler:
		return "Handler"
	default:
		return "Unknown"
	}
}

// StackSelector identifies the active stack pointer.
type StackSelector int

const (
	StackMain StackSelector = iota
	StackProcess
)

func (s StackSelector) String() string {
	if s == StackProcess {
		return "psp"
	}
	return "msp"
}

// ExecMode is the execution-mode snapshot taken on each debug entry.
type ExecMode struct {
	ExceptionNumber uint32
	CoreMode        CoreMode
	Stack           StackSelector
}

// DecodeExecMode derives the execution mode from xPSR and the CONTROL
// register. Only CONTROL[2:0] is examined.
func DecodeExecMode(xpsr, control uint32) ExecMode {
	if exc := xpsr & ExceptionMask; exc != 0 {
		return ExecMode{
			ExceptionNumber: exc,
			CoreMode:        ModeHandler,
			Stack:           StackMain,
		}
	}

	ctrl := control & 0x7
	m := ExecMode{CoreMode: ModeThread, Stack: StackMain}
	if ctrl&1 != 0 {
		m.CoreMode = ModeUserThread
	}
	if ctrl&2 != 0 {
		m.Stack = StackProcess
	}
	return m
}
