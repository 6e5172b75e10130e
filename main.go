package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dmccoy/mipssim/config"
	"github.com/dmccoy/mipssim/debugger"
	"github.com/dmccoy/mipssim/loader"
	"github.com/dmccoy/mipssim/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		tuiMode     = flag.Bool("tui", false, "Launch the interactive TUI debugger")
		debugMode   = flag.Bool("debug", false, "Launch the line-mode debugger")
		configPath  = flag.String("config", "", "Path to a TOML config file")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum instructions before halt (0 = config default)")
		tracePath   = flag.String("trace", "", "Write a per-instruction PC trace to this file")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mipssim %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mipssim [flags] <program.elf>")
		os.Exit(0)
	}
	elfPath := flag.Arg(0)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	mem, cpu, err := loader.LoadELF(elfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading %s: %v\n", elfPath, err)
		os.Exit(1)
	}

	machine := vm.NewVM(&cpu, mem, os.Stdout, bufio.NewReader(os.Stdin))
	machine.MaxCycles = cfg.Execution.MaxCycles
	if *maxCycles != 0 {
		machine.MaxCycles = *maxCycles
	}

	var traceFile *os.File
	if *tracePath != "" {
		traceFile, err = os.Create(*tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer traceFile.Close()
	}

	switch {
	case *tuiMode:
		dbg := debugger.NewDebugger(machine)
		tui := debugger.NewTUI(dbg)
		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
			os.Exit(1)
		}

	case *debugMode:
		runLineDebugger(machine)

	default:
		if err := runToCompletion(machine, traceFile); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			if errors.Is(err, vm.ErrIllegalInstruction) {
				// Matches the source's treatment: an illegal opcode or
				// R-type function ends the run loop gracefully rather
				// than trapping. A production simulator would trap.
				os.Exit(0)
			}
			os.Exit(1)
		}
	}
}

// runToCompletion drives the VM's run loop directly, optionally
// writing a PC trace, matching spec.md §6's exit-code contract: 0 on
// a clean syscall-10 exit or an illegal instruction, 1 on any other
// fatal fault.
func runToCompletion(machine *vm.VM, trace *os.File) error {
	if trace == nil {
		return machine.Run()
	}
	for {
		fmt.Fprintf(trace, "0x%08X\n", machine.CPU.PC)
		err := machine.Step()
		if err == nil {
			continue
		}
		if errors.Is(err, vm.ErrGuestExit) {
			return nil
		}
		return err
	}
}

// runLineDebugger drives a simple stdin command loop around the
// shared Debugger, the non-TUI counterpart to -tui.
func runLineDebugger(machine *vm.VM) {
	dbg := debugger.NewDebugger(machine)
	dbg.Running = true

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("mipssim debugger. Commands: break delete step continue regs mem quit")
	for dbg.Running {
		fmt.Print("(mipssim) ")
		if !scanner.Scan() {
			return
		}
		if err := dbg.ExecuteCommand(scanner.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}
	}
}
