package main

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/prefixtree/v2"

	"hlatarget/internal/common"
	"hlatarget/internal/config"
	"hlatarget/internal/dbg"
)

type command struct {
	name  string
	usage string
	help  string
	quit  bool
	run   func(m *monitor, args []string, rest string) error
}

var (
	commandList []command
	commandTree = prefixtree.New[*command]()
)

func init() {
	commandList = []command{
		{name: "halt", help: "halt the core", run: (*monitor).cmdHalt},
		{name: "resume", usage: "[addr]", help: "resume at PC or addr", run: (*monitor).cmdResume},
		{name: "step", usage: "[addr]", help: "execute one instruction", run: (*monitor).cmdStep},
		{name: "reset", usage: "[halt|run]", help: "reset the target", run: (*monitor).cmdReset},
		{name: "poll", help: "poll the target state", run: (*monitor).cmdPoll},
		{name: "state", help: "show the session state", run: (*monitor).cmdState},
		{name: "regs", help: "show core registers", run: (*monitor).cmdRegs},
		{name: "mdw", usage: "<addr> [count]", help: "display memory words", run: (*monitor).cmdMdw},
		{name: "mww", usage: "<addr> <value>", help: "write a memory word", run: (*monitor).cmdMww},
		{name: "load", usage: "<addr> <halfword>...", help: "load code halfwords into the part", run: (*monitor).cmdLoad},
		{name: "send", usage: "<text>", help: "queue a firmware debug message", run: (*monitor).cmdSend},
		{name: "bp", usage: "[addr]", help: "list breakpoints or add one", run: (*monitor).cmdBp},
		{name: "rbp", usage: "<addr>", help: "remove a breakpoint", run: (*monitor).cmdRbp},
		{name: "help", help: "list commands", run: (*monitor).cmdHelp},
		{name: "quit", help: "leave the monitor", quit: true},
	}
	for i := range commandList {
		commandTree.Add(commandList[i].name, &commandList[i])
	}
}

func wantArgs(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return common.Errorf(dbg.ErrCommandSyntax, "wrong number of arguments")
	}
	return nil
}

// optAddr parses an optional address argument. current is true when none
// was given.
func optAddr(args []string) (current bool, addr uint32, err error) {
	if err := wantArgs(args, 0, 1); err != nil {
		return false, 0, err
	}
	if len(args) == 0 {
		return true, 0, nil
	}
	addr, err = config.ParseUint32(args[0])
	return false, addr, err
}

func (m *monitor) cmdHalt(args []string, _ string) error {
	if err := wantArgs(args, 0, 0); err != nil {
		return err
	}
	return m.target.Halt()
}

func (m *monitor) cmdResume(args []string, _ string) error {
	current, addr, err := optAddr(args)
	if err != nil {
		return err
	}
	return m.target.Resume(current, addr, true, false)
}

func (m *monitor) cmdStep(args []string, _ string) error {
	current, addr, err := optAddr(args)
	if err != nil {
		return err
	}
	return m.target.Step(current, addr, true)
}

func (m *monitor) cmdReset(args []string, _ string) error {
	if err := wantArgs(args, 0, 1); err != nil {
		return err
	}
	if len(args) == 1 {
		switch args[0] {
		case "halt":
			m.target.SetResetHalt(true)
		case "run":
			m.target.SetResetHalt(false)
		default:
			return common.Errorf(dbg.ErrCommandSyntax, "unknown reset mode %q", args[0])
		}
	}
	if err := m.target.AssertReset(); err != nil {
		return err
	}
	if err := m.target.DeassertReset(); err != nil {
		return err
	}
	return m.target.Poll()
}

func (m *monitor) cmdPoll(args []string, _ string) error {
	if err := m.target.Poll(); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "state: %s\n", m.target.State())
	return nil
}

func (m *monitor) cmdState(args []string, _ string) error {
	fmt.Fprintf(m.out, "state: %s examined: %t cpuid: 0x%08x\n",
		m.target.State(), m.target.Examined(), m.target.CPUID())
	if m.target.State() == dbg.StateHalted {
		fmt.Fprintln(m.out, m.target.ArchState())
	}
	return nil
}

func (m *monitor) cmdRegs(args []string, _ string) error {
	if m.target.State() != dbg.StateHalted {
		return common.Errorf(dbg.ErrTargetNotHalted, "target not halted")
	}
	if err := m.target.Regs().LoadContext(); err != nil {
		return err
	}
	for _, r := range m.target.RegList() {
		fmt.Fprintf(m.out, "%-10s 0x%08x\n", r.Name, r.Value)
	}
	return nil
}

func (m *monitor) cmdMdw(args []string, _ string) error {
	if err := wantArgs(args, 1, 2); err != nil {
		return err
	}
	addr, err := config.ParseUint32(args[0])
	if err != nil {
		return err
	}
	count := uint32(1)
	if len(args) == 2 {
		if count, err = config.ParseUint32(args[1]); err != nil {
			return err
		}
	}
	buf := make([]byte, 4*count)
	if err := m.target.ReadMemory(addr, 4, count, buf); err != nil {
		return err
	}
	var sb strings.Builder
	for i := uint32(0); i < count; i++ {
		if i%4 == 0 {
			if i != 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "0x%08x:", addr+4*i)
		}
		fmt.Fprintf(&sb, " %08x", binary.LittleEndian.Uint32(buf[4*i:]))
	}
	fmt.Fprintln(m.out, sb.String())
	return nil
}

func (m *monitor) cmdMww(args []string, _ string) error {
	if err := wantArgs(args, 2, 2); err != nil {
		return err
	}
	addr, err := config.ParseUint32(args[0])
	if err != nil {
		return err
	}
	value, err := config.ParseUint32(args[1])
	if err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return m.target.WriteMemory(addr, 4, 1, buf[:])
}

func (m *monitor) cmdLoad(args []string, _ string) error {
	if len(args) < 2 {
		return common.Errorf(dbg.ErrCommandSyntax, "wrong number of arguments")
	}
	addr, err := config.ParseUint32(args[0])
	if err != nil {
		return err
	}
	data := make([]byte, 0, 2*(len(args)-1))
	for _, a := range args[1:] {
		hw, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(a), "0x"), 16, 16)
		if err != nil {
			return common.Errorf(dbg.ErrCommandSyntax, "bad halfword %q", a)
		}
		data = binary.LittleEndian.AppendUint16(data, uint16(hw))
	}
	return m.core.LoadImage(addr, data)
}

func (m *monitor) cmdSend(_ []string, rest string) error {
	if rest == "" {
		return common.Errorf(dbg.ErrCommandSyntax, "nothing to send")
	}
	return m.core.SendString(rest)
}

func (m *monitor) cmdBp(args []string, _ string) error {
	current, addr, err := optAddr(args)
	if err != nil {
		return err
	}
	if current {
		for _, bp := range m.bps.List() {
			fmt.Fprintf(m.out, "%d: 0x%08x installed: %t\n", bp.ID, bp.Address, bp.Installed)
		}
		return nil
	}
	bp, err := m.bps.Add(addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "breakpoint %d at 0x%08x\n", bp.ID, bp.Address)
	return nil
}

func (m *monitor) cmdRbp(args []string, _ string) error {
	if err := wantArgs(args, 1, 1); err != nil {
		return err
	}
	addr, err := config.ParseUint32(args[0])
	if err != nil {
		return err
	}
	return m.bps.Remove(addr)
}

func (m *monitor) cmdHelp(args []string, _ string) error {
	for _, c := range commandList {
		fmt.Fprintf(m.out, "  %-24s %s\n", strings.TrimSpace(c.name+" "+c.usage), c.help)
	}
	return nil
}
