package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/beevik/prefixtree/v2"
	"golang.org/x/sync/errgroup"

	"hlatarget/internal/armv7m"
	"hlatarget/internal/common"
	"hlatarget/internal/config"
	"hlatarget/internal/dbg"
	"hlatarget/internal/hla"
	"hlatarget/internal/request"
	"hlatarget/internal/sched"
	"hlatarget/internal/semihost"
	"hlatarget/internal/sim"
)

const (
	clockPeriod    = time.Millisecond
	instrsPerClock = 100
)

// syncWriter serializes output from the command reader and the session loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type monitor struct {
	cfg    config.Config
	out    io.Writer
	log    *common.StdLogger
	core   *sim.Core
	target *hla.Target
	bps    *sim.Breakpoints
	reqs   *request.Dispatcher
	semi   *semihost.Handler
	sched  *sched.Scheduler
}

// idleFirmware is a vector table whose reset handler sleeps in a WFI.
func idleFirmware(sp uint32, flashBase uint32) []byte {
	img := make([]byte, 0x102)
	binary.LittleEndian.PutUint32(img[0:], sp)
	binary.LittleEndian.PutUint32(img[4:], (flashBase+0x100)|1)
	binary.LittleEndian.PutUint16(img[0x100:], 0xBF30)
	return img
}

func newMonitor(cfg config.Config, out io.Writer, logger *common.StdLogger) (*monitor, error) {
	m := &monitor{
		cfg: cfg,
		out: &syncWriter{w: out},
		log: logger.WithComponent("hlamon"),
	}

	core, err := sim.New(cfg.Simulator)
	if err != nil {
		return nil, err
	}
	sc := cfg.Simulator
	if err := core.LoadImage(sc.FlashBase, idleFirmware(sc.RAMBase+sc.RAMSize, sc.FlashBase)); err != nil {
		return nil, err
	}
	if err := core.Reset(); err != nil {
		return nil, err
	}
	m.core = core

	target, err := hla.New(cfg.Target, core)
	if err != nil {
		return nil, err
	}
	m.target = target
	m.bps = sim.NewBreakpoints(core)
	m.reqs = request.NewDispatcher(m.out)
	m.semi = semihost.New(m.out)
	target.SetBreakpoints(m.bps)
	target.SetRequestHandler(m.reqs)
	target.SetSemihosting(m.semi)
	target.AddEventListener(m.event)

	m.sched = sched.New(sched.DefaultResolution)

	for _, c := range []interface{ SetLogger(common.Logger) }{core, target, m.reqs, m.semi, m.sched} {
		c.SetLogger(logger)
	}
	for _, c := range []interface{ SetLogLevel(common.Severity) }{core, target, m.reqs, m.semi, m.sched} {
		c.SetLogLevel(cfg.LogLevel)
	}

	if !cfg.Target.DeferExamine {
		if err := target.Examine(); err != nil {
			return nil, err
		}
	}

	tasks := []struct {
		name   string
		period time.Duration
		fn     sched.TaskFunc
	}{
		{"poll", cfg.Poll, target.Poll},
		{"dcc", cfg.DCCPoll, target.HandleTargetRequest},
		{"clock", clockPeriod, func() error { core.Tick(instrsPerClock); return nil }},
	}
	for _, t := range tasks {
		if err := m.sched.Register(t.name, t.period, t.fn); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *monitor) event(t *hla.Target, ev dbg.Event) {
	m.log.Debug(fmt.Sprintf("event %s", ev))
	if ev == dbg.EventHalted || ev == dbg.EventDebugHalted {
		fmt.Fprintf(m.out, "halted at 0x%08x (%s)\n", t.Regs().Value(armv7m.RegPC), t.DebugReason())
	}
}

// run services commands from in until it is exhausted or a quit command is
// read. The session loop runs alongside on its own goroutine.
func (m *monitor) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.sched.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return m.commands(gctx, in)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (m *monitor) commands(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := m.exec(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(m.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return sc.Err()
}

// lookup finds a command by unambiguous prefix and splits its arguments.
func lookup(line string) (c *command, args []string, rest string, err error) {
	name, rest, _ := strings.Cut(line, " ")
	c, err = commandTree.FindValue(strings.ToLower(name))
	switch {
	case errors.Is(err, prefixtree.ErrPrefixAmbiguous):
		return nil, nil, "", fmt.Errorf("%q is ambiguous", name)
	case err != nil:
		return nil, nil, "", fmt.Errorf("%q: command not found", name)
	}
	return c, strings.Fields(rest), strings.TrimSpace(rest), nil
}

// exec runs one command line on the session loop.
func (m *monitor) exec(ctx context.Context, line string) (quit bool, err error) {
	c, args, rest, err := lookup(line)
	if err != nil {
		return false, err
	}
	if c.quit {
		return true, nil
	}
	return false, m.sched.Do(ctx, func() error {
		return c.run(m, args, rest)
	})
}
