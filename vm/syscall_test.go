package vm

import (
	"bufio"
	"bytes"
	"errors"
	"testing"
)

func newSyscallTestVM(in string) (*VM, *bytes.Buffer) {
	mem := NewMemory()
	mem.AddRegion("code", 0x00400000, 0x100)
	mem.AddRegion("data", 0x10000000, 0x1000)
	mem.AddRegion("stack", StackBase, StackLength)

	cpu := NewCPU()
	cpu.PC = 0x00400000
	cpu.SetReg(RegSP, StackBase+StackLength-4)

	var out bytes.Buffer
	return NewVM(cpu, mem, &out, bufio.NewReader(bytes.NewBufferString(in))), &out
}

func writeCString(t *testing.T, mem *Memory, addr uint32, s string) {
	t.Helper()
	for i := 0; i < len(s); i++ {
		if err := mem.WriteByte(addr+uint32(i), s[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := mem.WriteByte(addr+uint32(len(s)), 0); err != nil {
		t.Fatal(err)
	}
}

func TestSyscallPrintInt(t *testing.T) {
	vmachine, out := newSyscallTestVM("")
	vmachine.CPU.SetReg(RegV0, SyscallPrintInt)
	value := int32(-42)
	vmachine.CPU.SetReg(RegA0, uint32(value))

	if err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "-42\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

// TestHelloExit covers spec scenario 1: print_string a greeting, then
// exit cleanly via syscall 10.
func TestHelloExit(t *testing.T) {
	vmachine, out := newSyscallTestVM("")
	writeCString(t, vmachine.Memory, 0x10000000, "hi\n")

	vmachine.CPU.SetReg(RegV0, SyscallPrintString)
	vmachine.CPU.SetReg(RegA0, 0x10000000)
	if err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "hi\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}

	vmachine.CPU.SetReg(RegV0, SyscallExit)
	err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In)
	if !errors.Is(err, ErrGuestExit) {
		t.Fatalf("err = %v, want ErrGuestExit", err)
	}
}

func TestSyscallPrintStringSegFaultsWithoutTerminator(t *testing.T) {
	vmachine, _ := newSyscallTestVM("")
	// Fill the entire data region with non-NUL bytes so readCString
	// walks off the end of the mapped region before finding a NUL.
	dataRegion := vmachine.Memory.Regions[1]
	for i := range dataRegion.Words {
		dataRegion.Words[i] = 0x41414141
	}

	vmachine.CPU.SetReg(RegV0, SyscallPrintString)
	vmachine.CPU.SetReg(RegA0, dataRegion.Base)
	err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In)
	if !errors.Is(err, ErrSegFault) {
		t.Fatalf("err = %v, want ErrSegFault", err)
	}
}

func TestSyscallReadInt(t *testing.T) {
	vmachine, _ := newSyscallTestVM("123\n")
	vmachine.CPU.SetReg(RegV0, SyscallReadInt)
	if err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In); err != nil {
		t.Fatal(err)
	}
	if got := int32(vmachine.CPU.GetReg(RegV0)); got != 123 {
		t.Fatalf("v0 = %d, want 123", got)
	}
}

func TestSyscallReadIntNegative(t *testing.T) {
	vmachine, _ := newSyscallTestVM("-7\n")
	vmachine.CPU.SetReg(RegV0, SyscallReadInt)
	if err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In); err != nil {
		t.Fatal(err)
	}
	if got := int32(vmachine.CPU.GetReg(RegV0)); got != -7 {
		t.Fatalf("v0 = %d, want -7", got)
	}
}

func TestSyscallReadString(t *testing.T) {
	vmachine, _ := newSyscallTestVM("hello world\n")
	vmachine.CPU.SetReg(RegV0, SyscallReadString)
	vmachine.CPU.SetReg(RegA0, 0x10000000)
	vmachine.CPU.SetReg(RegA1, 64)

	if err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In); err != nil {
		t.Fatal(err)
	}
	got, err := readCString(vmachine.Memory, 0x10000000)
	if err != nil {
		t.Fatal(err)
	}
	if want := "hello world"; got != want {
		t.Fatalf("read string = %q, want %q", got, want)
	}
}

func TestSyscallReadStringTruncatesToBufferLength(t *testing.T) {
	vmachine, _ := newSyscallTestVM("abcdefghij\n")
	vmachine.CPU.SetReg(RegV0, SyscallReadString)
	vmachine.CPU.SetReg(RegA0, 0x10000000)
	vmachine.CPU.SetReg(RegA1, 5) // room for 4 chars + NUL

	if err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In); err != nil {
		t.Fatal(err)
	}
	got, err := readCString(vmachine.Memory, 0x10000000)
	if err != nil {
		t.Fatal(err)
	}
	if want := "abcd"; got != want {
		t.Fatalf("read string = %q, want %q", got, want)
	}
}

func TestSyscallExitReturnsGuestExit(t *testing.T) {
	vmachine, _ := newSyscallTestVM("")
	vmachine.CPU.SetReg(RegV0, SyscallExit)
	err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In)
	if !errors.Is(err, ErrGuestExit) {
		t.Fatalf("err = %v, want ErrGuestExit", err)
	}
}

func TestSyscallUnknownNumberIsNoOp(t *testing.T) {
	vmachine, out := newSyscallTestVM("")
	vmachine.CPU.SetReg(RegV0, 999)
	if err := Syscall(vmachine.CPU, vmachine.Memory, vmachine.Out, vmachine.In); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}
