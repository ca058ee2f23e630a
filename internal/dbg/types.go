package dbg

// Target execution state

// TargetState is the coarse execution state of a debug target.
type TargetState uint32

const (
	StateUnknown      TargetState = 0
	StateRunning      TargetState = 1
	StateHalted       TargetState = 2
	StateReset        TargetState = 3
	StateDebugRunning TargetState = 4
)

func (s TargetState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateReset:
		return "reset"
	case StateDebugRunning:
		return "debug-running"
	default:
		return "invalid"
	}
}

// IsValid reports whether s is one of the defined states.
func (s TargetState) IsValid() bool {
	return s <= StateDebugRunning
}

// Debug reason

// DebugReason classifies why the core is halted.
type DebugReason uint32

const (
	ReasonDbgRq      DebugReason = 0
	ReasonBreakpoint DebugReason = 1
	ReasonSingleStep DebugReason = 2
	ReasonNotHalted  DebugReason = 3
)

func (r DebugReason) String() string {
	switch r {
	case ReasonDbgRq:
		return "debug-request"
	case ReasonBreakpoint:
		return "breakpoint"
	case ReasonSingleStep:
		return "single-step"
	case ReasonNotHalted:
		return "target-not-halted"
	default:
		return "undefined"
	}
}

// Events

// Event is a notification emitted on state transitions.
type Event uint32

const (
	EventHalted       Event = 0
	EventResumed      Event = 1
	EventDebugHalted  Event = 2
	EventDebugResumed Event = 3
)

func (e Event) String() string {
	switch e {
	case EventHalted:
		return "halted"
	case EventResumed:
		return "resumed"
	case EventDebugHalted:
		return "debug-halted"
	case EventDebugResumed:
		return "debug-resumed"
	default:
		return "unknown-event"
	}
}

// General return and error codes

// Err represents the library error code type.
type Err uint32

const (
	OK                 Err = 0
	ErrFail            Err = 1
	ErrTargetFailure   Err = 2
	ErrTargetNotHalted Err = 3
	ErrCommandSyntax   Err = 4
	ErrCommandNotFound Err = 5
	ErrLast            Err = 6
)

// ErrSeverity indicates the severity of an error or logger verbosity.
type ErrSeverity uint32

const (
	ErrSevNone  ErrSeverity = 0
	ErrSevError ErrSeverity = 1
	ErrSevWarn  ErrSeverity = 2
	ErrSevInfo  ErrSeverity = 3
)

// Access port selection

// APSelInvalid marks an access port number that was never configured.
const APSelInvalid = -1
