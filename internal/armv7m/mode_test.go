package armv7m

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeExecMode(t *testing.T) {
	tests := []struct {
		name    string
		xpsr    uint32
		control uint32
		want    ExecMode
	}{
		{
			name: "Handler exception 3",
			xpsr: 0x00000003,
			want: ExecMode{ExceptionNumber: 3, CoreMode: ModeHandler, Stack: StackMain},
		},
		{
			name:    "Handler ignores control",
			xpsr:    0x01000010,
			control: 0x3,
			want:    ExecMode{ExceptionNumber: 0x10, CoreMode: ModeHandler, Stack: StackMain},
		},
		{
			name:    "Privileged thread on process stack",
			xpsr:    0x00000000,
			control: 0b10,
			want:    ExecMode{CoreMode: ModeThread, Stack: StackProcess},
		},
		{
			name:    "Unprivileged thread on main stack",
			xpsr:    0x01000000,
			control: 0b01,
			want:    ExecMode{CoreMode: ModeUserThread, Stack: StackMain},
		},
		{
			name:    "Unprivileged thread on process stack, FPCA ignored",
			control: 0b111,
			want:    ExecMode{CoreMode: ModeUserThread, Stack: StackProcess},
		},
		{
			name:    "Upper control bits ignored",
			control: 0x08,
			want:    ExecMode{CoreMode: ModeThread, Stack: StackMain},
		},
		{
			name: "Exception field is 9 bits",
			xpsr: 0x000001FF,
			want: ExecMode{ExceptionNumber: 0x1FF, CoreMode: ModeHandler, Stack: StackMain},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeExecMode(tt.xpsr, tt.control)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeExecMode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModeStrings(t *testing.T) {
	if ModeHandler.String() != "Handler" || ModeUserThread.String() != "Thread (User)" || ModeThread.String() != "Thread" {
		t.Error("unexpected core mode names")
	}
	if StackProcess.String() != "psp" || StackMain.String() != "msp" {
		t.Error("unexpected stack names")
	}
}
