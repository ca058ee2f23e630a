package sched

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

func TestRunDuePeriods(t *testing.T) {
	s := New(0)
	var order []string
	record := func(name string) TaskFunc {
		return func() error {
			order = append(order, name)
			return nil
		}
	}
	if err := s.Register("poll", 100*time.Millisecond, record("poll")); err != nil {
		t.Fatal(err)
	}
	if err := s.Register("dcc", 10*time.Millisecond, record("dcc")); err != nil {
		t.Fatal(err)
	}

	start := time.Unix(1000, 0)
	for ms := 0; ms <= 120; ms += 10 {
		s.RunDue(start.Add(time.Duration(ms) * time.Millisecond))
	}

	if got := s.Runs("poll"); got != 2 {
		t.Errorf("poll ran %d times, want 2", got)
	}
	if got := s.Runs("dcc"); got != 13 {
		t.Errorf("dcc ran %d times, want 13", got)
	}
	if diff := cmp.Diff([]string{"poll", "dcc", "dcc"}, order[:3]); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCommunicationFailureDisablesTask(t *testing.T) {
	s := New(0)
	s.SetLogger(common.NewNoOpLogger())
	fail := common.Errorf(dbg.ErrTargetFailure, "adapter reported state unknown")
	if err := s.Register("poll", time.Millisecond, func() error { return fail }); err != nil {
		t.Fatal(err)
	}

	now := time.Unix(0, 0)
	s.RunDue(now)
	s.RunDue(now.Add(time.Second))
	if s.Enabled("poll") {
		t.Errorf("task still enabled after communication failure")
	}
	if got := s.Runs("poll"); got != 1 {
		t.Errorf("poll ran %d times, want 1", got)
	}
	if !errors.Is(s.LastErr("poll"), common.ErrTargetFailure) {
		t.Errorf("last error %v", s.LastErr("poll"))
	}

	if err := s.Register("poll", time.Millisecond, func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if !s.Enabled("poll") {
		t.Errorf("re-registered task not enabled")
	}
}

func TestOtherErrorsKeepTaskRunning(t *testing.T) {
	s := New(0)
	s.SetLogger(common.NewNoOpLogger())
	if err := s.Register("dcc", time.Millisecond, func() error { return errors.New("usb stall") }); err != nil {
		t.Fatal(err)
	}
	now := time.Unix(0, 0)
	for i := 0; i < 3; i++ {
		s.RunDue(now.Add(time.Duration(i) * time.Millisecond))
	}
	if got := s.Runs("dcc"); got != 3 || !s.Enabled("dcc") {
		t.Errorf("runs %d enabled %t", got, s.Enabled("dcc"))
	}
}

func TestRegisterValidation(t *testing.T) {
	s := New(0)
	if err := s.Register("x", 0, func() error { return nil }); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("zero period: got %v", err)
	}
	if err := s.Register("x", time.Second, nil); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("nil func: got %v", err)
	}
	if err := s.Register("x", time.Second, func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	s.Unregister("x")
	if s.Enabled("x") {
		t.Errorf("unregistered task still enabled")
	}
}

func TestDoRunsOnLoop(t *testing.T) {
	s := New(time.Millisecond)
	ticks := make(chan struct{}, 1)
	if err := s.Register("tick", time.Millisecond, func() error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-ticks:
	case <-time.After(5 * time.Second):
		t.Fatal("periodic task never ran")
	}

	want := errors.New("command failed")
	counter := 0
	for i := 0; i < 3; i++ {
		if err := s.Do(ctx, func() error { counter++; return nil }); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	if err := s.Do(ctx, func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Do: got %v, want %v", err, want)
	}
	if counter != 3 {
		t.Errorf("counter %d, want 3", counter)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run: got %v, want context canceled", err)
	}
	if err := s.Do(ctx, func() error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("Do after stop: got %v", err)
	}
}
