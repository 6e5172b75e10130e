// Package debugger provides an interactive, address-breakpoint-based
// inspection layer around a running vm.VM: step one instruction at a
// time, run to the next breakpoint, and print register/memory state.
// It supplements spec.md's ISA semantics with the tooling a simulator
// needs to be usable, not anything the ISA itself defines.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmccoy/mipssim/vm"
)

// Debugger holds the breakpoint set and run state around a VM. Command
// handlers write human-readable results to Output rather than
// returning structured data, matching the teacher's command-console
// style: a REPL front end (TUI or plain stdin loop) drains Output
// after each command.
type Debugger struct {
	VM          *vm.VM
	Breakpoints *BreakpointManager
	Running     bool

	LastCommand string
	Output      strings.Builder
}

// NewDebugger wraps machine for interactive stepping.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
	}
}

// ExecuteCommand parses and runs one command line. An empty line
// repeats the last command, the same convenience gdb offers for
// step/next.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine == "" {
		return nil
	}
	d.LastCommand = cmdLine

	parts := strings.Fields(cmdLine)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "step", "s":
		return d.cmdStep(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "regs", "registers":
		return d.cmdRegs(args)
	case "mem":
		return d.cmdMem(args)
	case "quit", "q":
		d.Running = false
		return nil
	default:
		return fmt.Errorf("unknown command: %s (break|delete|step|continue|regs|mem|quit)", cmd)
	}
}

// ShouldBreak reports whether execution should pause at the VM's
// current PC, and the reason shown to the user.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.CPU.PC
	bp := d.Breakpoints.GetBreakpoint(pc)
	if bp == nil || !bp.Enabled {
		return false, ""
	}
	bp.HitCount++
	if bp.Temporary {
		_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
	}
	return true, fmt.Sprintf("breakpoint %d at 0x%08X", bp.ID, pc)
}

// GetOutput returns and clears the accumulated command output.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <addr>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(addr, false, "")
	d.Printf("breakpoint %d set at 0x%08X\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <addr>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	if err := d.Breakpoints.DeleteBreakpointAt(addr); err != nil {
		return err
	}
	d.Printf("breakpoint at 0x%08X deleted\n", addr)
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	if err := d.VM.Step(); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	d.Printf("PC = 0x%08X\n", d.VM.CPU.PC)
	return nil
}

func (d *Debugger) cmdContinue(args []string) error {
	for {
		if err := d.VM.Step(); err != nil {
			return fmt.Errorf("continue: %w", err)
		}
		if stop, reason := d.ShouldBreak(); stop {
			d.Printf("stopped: %s\n", reason)
			return nil
		}
	}
}

func (d *Debugger) cmdRegs(args []string) error {
	for i := 0; i < 32; i += 4 {
		d.Printf("%-4s=0x%08X  %-4s=0x%08X  %-4s=0x%08X  %-4s=0x%08X\n",
			vm.RegisterName(i), d.VM.CPU.GetReg(i),
			vm.RegisterName(i+1), d.VM.CPU.GetReg(i+1),
			vm.RegisterName(i+2), d.VM.CPU.GetReg(i+2),
			vm.RegisterName(i+3), d.VM.CPU.GetReg(i+3))
	}
	d.Printf("pc  =0x%08X  hi  =0x%08X  lo  =0x%08X\n", d.VM.CPU.PC, d.VM.CPU.HI, d.VM.CPU.LO)
	return nil
}

func (d *Debugger) cmdMem(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mem <addr> <count>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	countArg, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid count: %s", args[1])
	}
	count, err := vm.SafeIntToUint32(countArg)
	if err != nil {
		return fmt.Errorf("invalid count: %w", err)
	}
	for i := uint32(0); i < count; i++ {
		word, err := d.VM.Memory.ReadWord(addr + i*4)
		if err != nil {
			return err
		}
		d.Printf("0x%08X: 0x%08X\n", addr+i*4, word)
	}
	return nil
}

func parseAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return uint32(v), nil
}
