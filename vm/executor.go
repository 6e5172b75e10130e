package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// VM bundles a CPU and its backing Memory together with the I/O streams
// syscalls read and write. It owns nothing the run loop doesn't already
// own exclusively (spec.md §5): the decoder is pure, and the executor is
// the sole mutator of CPU and Memory.
type VM struct {
	CPU    *CPU
	Memory *Memory
	Out    io.Writer
	In     *bufio.Reader

	// Cycles counts instructions executed, used to enforce MaxCycles.
	Cycles uint64

	// MaxCycles bounds execution; 0 means unlimited. This is not part of
	// spec.md's ISA semantics — it exists purely so a runaway or buggy
	// guest program cannot hang the host process forever, the same
	// concern the teacher's VM.MaxCycles/CycleLimit fields address.
	MaxCycles uint64
}

// NewVM creates a VM around the given memory, with the CPU state the
// caller has already initialized (PC, $sp) via the loader.
func NewVM(cpu *CPU, mem *Memory, out io.Writer, in *bufio.Reader) *VM {
	return &VM{
		CPU:    cpu,
		Memory: mem,
		Out:    out,
		In:     in,
	}
}

// Step fetches, decodes, and executes one instruction, updating PC
// according to spec.md §4.3's discipline. It returns a fatal-kind error
// (wrapping one of the Err* sentinels) when the instruction faults or
// the guest requests termination; nil means execution should continue.
// Once MaxCycles instructions have run, it returns a plain error that
// wraps none of the sentinels.
func (vm *VM) Step() error {
	if vm.MaxCycles > 0 && vm.Cycles >= vm.MaxCycles {
		return fmt.Errorf("cycle limit of %d instructions exceeded", vm.MaxCycles)
	}

	word, err := vm.Memory.ReadWord(vm.CPU.PC)
	if err != nil {
		return fmt.Errorf("fetch at PC=0x%08X: %w", vm.CPU.PC, err)
	}

	inst := Decode(word)

	if err := vm.execute(inst); err != nil {
		return err
	}

	vm.CPU.ClampZero()
	vm.Cycles++
	return nil
}

// Run steps the VM until a terminal condition: the guest exits via
// SYSCALL 10 (returns nil), or a fault/illegal instruction terminates it
// (returns the error describing why). This is spec.md §4.7's run loop.
func (vm *VM) Run() error {
	for {
		err := vm.Step()
		if err == nil {
			continue
		}
		if errors.Is(err, ErrGuestExit) {
			return nil
		}
		return err
	}
}

// execute dispatches a decoded instruction and applies the PC update
// discipline of spec.md §4.3: non-branch/jump instructions advance PC
// by 4 after executing; branches/jumps set PC directly and must not be
// advanced again.
func (vm *VM) execute(inst Instruction) error {
	cpu, mem := vm.CPU, vm.Memory
	pc := cpu.PC

	switch inst.Opcode {
	case OpRType:
		return vm.executeRType(inst, pc)

	case OpRegImm:
		return vm.executeRegImm(inst, pc)

	case OpJ:
		target := jumpTarget(pc, inst.Addr)
		if target&3 != 0 {
			return fmt.Errorf("J target 0x%08X: %w", target, ErrAlignFault)
		}
		cpu.PC = target
		return nil

	case OpJAL:
		target := jumpTarget(pc, inst.Addr)
		if target&3 != 0 {
			return fmt.Errorf("JAL target 0x%08X: %w", target, ErrAlignFault)
		}
		cpu.SetReg(RegRA, linkAddr(pc))
		cpu.PC = target
		return nil

	case OpBEQ:
		return vm.takeBranchIf(branchBEQ(cpu, inst), pc, inst)
	case OpBNE:
		return vm.takeBranchIf(branchBNE(cpu, inst), pc, inst)
	case OpBLEZ:
		return vm.takeBranchIf(branchBLEZ(cpu, inst), pc, inst)
	case OpBGTZ:
		return vm.takeBranchIf(branchBGTZ(cpu, inst), pc, inst)

	case OpADDI:
		if err := execADDI(cpu, inst); err != nil {
			return err
		}
	case OpADDIU:
		if err := execADDIU(cpu, inst); err != nil {
			return err
		}
	case OpSLTI:
		if err := execSLTI(cpu, inst); err != nil {
			return err
		}
	case OpSLTIU:
		if err := execSLTIU(cpu, inst); err != nil {
			return err
		}
	case OpANDI:
		if err := execANDI(cpu, inst); err != nil {
			return err
		}
	case OpORI:
		if err := execORI(cpu, inst); err != nil {
			return err
		}
	case OpXORI:
		if err := execXORI(cpu, inst); err != nil {
			return err
		}
	case OpLUI:
		if err := execLUI(cpu, inst); err != nil {
			return err
		}
	case OpLB:
		if err := execLB(cpu, mem, inst); err != nil {
			return err
		}
	case OpLW:
		if err := execLW(cpu, mem, inst); err != nil {
			return err
		}
	case OpSB:
		if err := execSB(cpu, mem, inst); err != nil {
			return err
		}
	case OpSW:
		if err := execSW(cpu, mem, inst); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: opcode 0x%02X at PC=0x%08X", ErrIllegalInstruction, inst.Opcode, pc)
	}

	cpu.PC = pc + 4
	return nil
}

// takeBranchIf applies spec.md §4.5's branch semantics: taken branches
// set PC to the computed target, not-taken branches advance by 4.
func (vm *VM) takeBranchIf(taken bool, pc uint32, inst Instruction) error {
	if !taken {
		vm.CPU.PC = pc + 4
		return nil
	}
	target := branchTarget(pc, inst.ImmS)
	if target&3 != 0 {
		return fmt.Errorf("branch target 0x%08X: %w", target, ErrAlignFault)
	}
	vm.CPU.PC = target
	return nil
}

// takeLinkBranchIf is takeBranchIf plus the BLTZAL/BGEZAL $ra write.
func (vm *VM) takeLinkBranchIf(taken bool, pc uint32, inst Instruction) error {
	vm.CPU.SetReg(RegRA, linkAddr(pc))
	return vm.takeBranchIf(taken, pc, inst)
}

// executeRegImm dispatches opcode 0x01 on the rt field: BLTZ/BGEZ/
// BLTZAL/BGEZAL (spec.md §4.3, §4.5).
func (vm *VM) executeRegImm(inst Instruction, pc uint32) error {
	switch inst.Rt {
	case RtBLTZ:
		return vm.takeBranchIf(branchBLTZ(vm.CPU, inst), pc, inst)
	case RtBGEZ:
		return vm.takeBranchIf(branchBGEZ(vm.CPU, inst), pc, inst)
	case RtBLTZAL:
		return vm.takeLinkBranchIf(branchBLTZ(vm.CPU, inst), pc, inst)
	case RtBGEZAL:
		return vm.takeLinkBranchIf(branchBGEZ(vm.CPU, inst), pc, inst)
	default:
		return fmt.Errorf("%w: REGIMM rt=0x%02X at PC=0x%08X", ErrIllegalInstruction, inst.Rt, pc)
	}
}

// executeRType dispatches opcode 0x00 on the 6-bit function field
// (spec.md §4.3).
func (vm *VM) executeRType(inst Instruction, pc uint32) error {
	cpu, mem := vm.CPU, vm.Memory

	switch inst.Func {
	case FuncSLL:
		if err := execSLL(cpu, inst); err != nil {
			return err
		}
	case FuncSRL:
		if err := execSRL(cpu, inst); err != nil {
			return err
		}
	case FuncSRA:
		if err := execSRA(cpu, inst); err != nil {
			return err
		}
	case FuncSLLV:
		if err := execSLLV(cpu, inst); err != nil {
			return err
		}
	case FuncSRLV:
		if err := execSRLV(cpu, inst); err != nil {
			return err
		}
	case FuncSRAV:
		if err := execSRAV(cpu, inst); err != nil {
			return err
		}
	case FuncJR:
		target := cpu.GetReg(int(inst.Rs))
		if target&3 != 0 {
			return fmt.Errorf("JR target 0x%08X: %w", target, ErrAlignFault)
		}
		cpu.PC = target
		return nil
	case FuncSyscall:
		if err := Syscall(cpu, mem, vm.Out, vm.In); err != nil {
			return err
		}
	case FuncMFHI:
		if err := execMFHI(cpu, inst); err != nil {
			return err
		}
	case FuncMFLO:
		if err := execMFLO(cpu, inst); err != nil {
			return err
		}
	case FuncMULT:
		if err := execMULT(cpu, inst); err != nil {
			return err
		}
	case FuncMULTU:
		if err := execMULTU(cpu, inst); err != nil {
			return err
		}
	case FuncDIV:
		if err := execDIV(cpu, inst); err != nil {
			return err
		}
	case FuncDIVU:
		if err := execDIVU(cpu, inst); err != nil {
			return err
		}
	case FuncADD:
		if err := execADD(cpu, inst); err != nil {
			return err
		}
	case FuncADDU:
		if err := execADDU(cpu, inst); err != nil {
			return err
		}
	case FuncSUB:
		if err := execSUB(cpu, inst); err != nil {
			return err
		}
	case FuncSUBU:
		if err := execSUBU(cpu, inst); err != nil {
			return err
		}
	case FuncAND:
		if err := execAND(cpu, inst); err != nil {
			return err
		}
	case FuncOR:
		if err := execOR(cpu, inst); err != nil {
			return err
		}
	case FuncXOR:
		if err := execXOR(cpu, inst); err != nil {
			return err
		}
	case FuncSLT:
		if err := execSLT(cpu, inst); err != nil {
			return err
		}
	case FuncSLTU:
		if err := execSLTU(cpu, inst); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: R-type func 0x%02X at PC=0x%08X", ErrIllegalInstruction, inst.Func, pc)
	}

	cpu.PC = pc + 4
	return nil
}
