package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Syscall implements the SYSCALL handler (spec.md §4.6). The call
// number is read from $v0; recognized numbers perform host I/O against
// mem for string arguments and write results back into guest registers.
// Unknown call numbers are silently ignored so guest code can probe for
// capabilities without crashing the simulator.
func Syscall(cpu *CPU, mem *Memory, out io.Writer, in *bufio.Reader) error {
	switch cpu.GetReg(RegV0) {
	case SyscallPrintInt:
		fmt.Fprintf(out, "%d\n", AsInt32(cpu.GetReg(RegA0)))

	case SyscallPrintString:
		s, err := readCString(mem, cpu.GetReg(RegA0))
		if err != nil {
			return fmt.Errorf("print_string: %w", err)
		}
		fmt.Fprint(out, s)

	case SyscallReadInt:
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read_int: %w", err)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		if err != nil {
			return fmt.Errorf("read_int: invalid integer input: %w", err)
		}
		cpu.SetReg(RegV0, uint32(int32(n)))

	case SyscallReadString:
		maxLen := cpu.GetReg(RegA1)
		if maxLen == 0 {
			return nil
		}
		line, _ := in.ReadString('\n')
		line = strings.TrimRight(line, "\n")
		if uint32(len(line)) > maxLen-1 {
			line = line[:maxLen-1]
		}
		addr := cpu.GetReg(RegA0)
		for i := 0; i < len(line); i++ {
			if err := mem.WriteByte(addr+uint32(i), line[i]); err != nil {
				return fmt.Errorf("read_string: %w", err)
			}
		}
		if err := mem.WriteByte(addr+uint32(len(line)), 0); err != nil {
			return fmt.Errorf("read_string: %w", err)
		}

	case SyscallExit:
		return ErrGuestExit

	default:
		// Unrecognized syscall numbers are no-ops (spec.md §4.6).
	}
	return nil
}

// readCString reads bytes from mem starting at addr until a NUL byte,
// used by print_string. Walking off the end of every mapped region
// before finding NUL surfaces as a SegFault (spec.md §4.6).
func readCString(mem *Memory, addr uint32) (string, error) {
	var sb strings.Builder
	for {
		b, err := mem.ReadByte(addr)
		if err != nil {
			return "", err
		}
		if b == 0 {
			return sb.String(), nil
		}
		sb.WriteByte(b)
		addr++
	}
}
