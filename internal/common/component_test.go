package common

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordingLogger struct {
	NoOpLogger
	lines []string
}

func (r *recordingLogger) Log(severity Severity, msg string) {
	r.lines = append(r.lines, severity.String()+" "+msg)
}

type mockNotifier struct {
	numAttached int
	called      bool
}

func (m *mockNotifier) AttachNotify(numAttached int) {
	m.numAttached = numAttached
	m.called = true
}

func TestAttachPt(t *testing.T) {
	pt := NewAttachPt[Logger]()
	if pt.HasAttached() {
		t.Errorf("expected no attachment initially")
	}

	notifier := &mockNotifier{}
	pt.SetNotifier(notifier)

	l := &recordingLogger{}
	if err := pt.Attach(l); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if !pt.HasAttachedAndEnabled() {
		t.Errorf("expected attachment and enabled")
	}
	if !notifier.called || notifier.numAttached != 1 {
		t.Errorf("expected notifier called with 1, got %+v", notifier)
	}

	if err := pt.Attach(&recordingLogger{}); err == nil {
		t.Errorf("expected second attach to fail")
	}

	pt.SetEnabled(false)
	if pt.First() != nil {
		t.Errorf("disabled attach point should return zero value")
	}
	pt.SetEnabled(true)

	l2 := &recordingLogger{}
	if err := pt.ReplaceFirst(l2); err != nil {
		t.Errorf("ReplaceFirst: %v", err)
	}
	if pt.First() != Logger(l2) {
		t.Errorf("expected replaced logger")
	}

	if err := pt.Detach(); err != nil {
		t.Errorf("Detach: %v", err)
	}
	if err := pt.Detach(); err == nil {
		t.Errorf("expected detach of empty point to fail")
	}
	if notifier.numAttached != 0 {
		t.Errorf("expected notifier count 0, got %d", notifier.numAttached)
	}
}

func TestComponentLogging(t *testing.T) {
	var c Component
	c.InitComponent("hla")

	// no logger attached: must not panic
	c.Logf(SeverityInfo, "dropped")

	rec := &recordingLogger{}
	c.SetLogger(rec)
	c.SetLogLevel(SeverityInfo)

	c.Logf(SeverityDebug, "filtered %d", 1)
	c.Logf(SeverityInfo, "halted: PC: 0x%08x", 0x100)
	c.LogError(nil)
	c.LogError(errors.New("usb stall"))

	want := []string{
		"INFO hla: halted: PC: 0x00000100",
		"ERROR hla: usb stall",
	}
	if diff := cmp.Diff(want, rec.lines); diff != "" {
		t.Errorf("log lines mismatch (-want +got):\n%s", diff)
	}
	if c.ComponentName() != "hla" || c.LogLevel() != SeverityInfo {
		t.Errorf("unexpected component state %q %v", c.ComponentName(), c.LogLevel())
	}
}
