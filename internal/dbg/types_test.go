package dbg

import "testing"

func TestTargetStateString(t *testing.T) {
	tests := []struct {
		state    TargetState
		expected string
	}{
		{StateUnknown, "unknown"},
		{StateRunning, "running"},
		{StateHalted, "halted"},
		{StateReset, "reset"},
		{StateDebugRunning, "debug-running"},
		{TargetState(42), "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("TargetState.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTargetStateIsValid(t *testing.T) {
	if !StateDebugRunning.IsValid() {
		t.Error("StateDebugRunning should be valid")
	}
	if TargetState(5).IsValid() {
		t.Error("TargetState(5) should not be valid")
	}
}

func TestDebugReasonAndEventStrings(t *testing.T) {
	if ReasonDbgRq.String() != "debug-request" {
		t.Errorf("unexpected %q", ReasonDbgRq.String())
	}
	if ReasonSingleStep.String() != "single-step" {
		t.Errorf("unexpected %q", ReasonSingleStep.String())
	}
	if DebugReason(99).String() != "undefined" {
		t.Errorf("unexpected %q", DebugReason(99).String())
	}
	if EventDebugHalted.String() != "debug-halted" {
		t.Errorf("unexpected %q", EventDebugHalted.String())
	}
	if Event(99).String() != "unknown-event" {
		t.Errorf("unexpected %q", Event(99).String())
	}
}
