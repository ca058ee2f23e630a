// Package sched runs periodic session work on a single goroutine. Periodic
// tasks (state poll, DCC poll, simulator clock) and front-end closures
// submitted with Do are executed one at a time, so the session they touch
// needs no locking.
package sched

import (
	"context"
	"errors"
	"time"

	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
)

// DefaultResolution is the loop tick used by Run.
const DefaultResolution = time.Millisecond

// TaskFunc is one run of a periodic task.
type TaskFunc func() error

type task struct {
	name    string
	period  time.Duration
	fn      TaskFunc
	next    time.Time
	enabled bool
	runs    uint64
	lastErr error
}

type job struct {
	fn   func() error
	done chan error
}

// Scheduler owns the session loop. Register and RunDue must not be called
// concurrently with Run except from inside a Do closure.
type Scheduler struct {
	common.Component

	tasks      []*task
	work       chan job
	resolution time.Duration
	now        func() time.Time
}

// New creates a scheduler ticking at resolution. A zero resolution selects
// DefaultResolution.
func New(resolution time.Duration) *Scheduler {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	s := &Scheduler{
		work:       make(chan job),
		resolution: resolution,
		now:        time.Now,
	}
	s.InitComponent("sched")
	return s
}

// Register adds a periodic task, or replaces and re-enables the task of the
// same name. The first run is due immediately.
func (s *Scheduler) Register(name string, period time.Duration, fn TaskFunc) error {
	if period <= 0 || fn == nil {
		return common.Errorf(dbg.ErrCommandSyntax, "task %q needs a positive period and a function", name)
	}
	t := &task{name: name, period: period, fn: fn, enabled: true}
	for i, old := range s.tasks {
		if old.name == name {
			s.tasks[i] = t
			return nil
		}
	}
	s.tasks = append(s.tasks, t)
	return nil
}

// Unregister removes a task.
func (s *Scheduler) Unregister(name string) {
	for i, t := range s.tasks {
		if t.name == name {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// Enabled reports whether a task is registered and enabled.
func (s *Scheduler) Enabled(name string) bool {
	if t := s.find(name); t != nil {
		return t.enabled
	}
	return false
}

// Runs returns how often a task has run.
func (s *Scheduler) Runs(name string) uint64 {
	if t := s.find(name); t != nil {
		return t.runs
	}
	return 0
}

// LastErr returns the error of the task's most recent run.
func (s *Scheduler) LastErr(name string) error {
	if t := s.find(name); t != nil {
		return t.lastErr
	}
	return nil
}

func (s *Scheduler) find(name string) *task {
	for _, t := range s.tasks {
		if t.name == name {
			return t
		}
	}
	return nil
}

// RunDue runs every enabled task due at now, in registration order. Errors
// are logged; a communication failure disables the task until it is
// registered again.
func (s *Scheduler) RunDue(now time.Time) {
	for _, t := range s.tasks {
		if !t.enabled || now.Before(t.next) {
			continue
		}
		t.next = now.Add(t.period)
		t.runs++
		t.lastErr = t.fn()
		if t.lastErr == nil {
			continue
		}
		if errors.Is(t.lastErr, common.ErrTargetFailure) {
			t.enabled = false
			s.Logf(common.SeverityError, "%s: %v; task disabled", t.name, t.lastErr)
			continue
		}
		s.Logf(common.SeverityWarning, "%s: %v", t.name, t.lastErr)
	}
}

// Do runs fn on the loop goroutine and returns its error. It blocks until
// fn completes or ctx is done.
func (s *Scheduler) Do(ctx context.Context, fn func() error) error {
	j := job{fn: fn, done: make(chan error, 1)}
	select {
	case s.work <- j:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the session loop. It returns when ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	s.RunDue(s.now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-s.work:
			j.done <- j.fn()
		case <-ticker.C:
			s.RunDue(s.now())
		}
	}
}
