package vm

import "fmt"

// effectiveAddr computes EA = regs[rs] + sign_extend(imm), the address
// form shared by LB, LW, SB, and SW (spec.md §4.4).
func effectiveAddr(cpu *CPU, inst Instruction) uint32 {
	return cpu.GetReg(int(inst.Rs)) + uint32(inst.ImmS)
}

// execLW implements LW: regs[rt] = fetch_word(regs[rs]+sign_extend(imm)).
// The effective address must be word-aligned; ReadWord enforces this.
func execLW(cpu *CPU, mem *Memory, inst Instruction) error {
	value, err := mem.ReadWord(effectiveAddr(cpu, inst))
	if err != nil {
		return fmt.Errorf("LW: %w", err)
	}
	cpu.SetReg(int(inst.Rt), value)
	return nil
}

// execSW implements SW: store regs[rt] at the effective address.
func execSW(cpu *CPU, mem *Memory, inst Instruction) error {
	if err := mem.WriteWord(effectiveAddr(cpu, inst), cpu.GetReg(int(inst.Rt))); err != nil {
		return fmt.Errorf("SW: %w", err)
	}
	return nil
}

// execLB implements LB: load the byte at the effective address,
// little-endian within its containing word, sign-extended to 32 bits.
func execLB(cpu *CPU, mem *Memory, inst Instruction) error {
	b, err := mem.ReadByte(effectiveAddr(cpu, inst))
	if err != nil {
		return fmt.Errorf("LB: %w", err)
	}
	cpu.SetReg(int(inst.Rt), uint32(int32(int8(b))))
	return nil
}

// execSB implements SB: read-modify-write the containing word, replacing
// the selected byte with the low 8 bits of regs[rt]. Memory.WriteByte
// does the read-modify-write.
func execSB(cpu *CPU, mem *Memory, inst Instruction) error {
	if err := mem.WriteByte(effectiveAddr(cpu, inst), byte(cpu.GetReg(int(inst.Rt)))); err != nil {
		return fmt.Errorf("SB: %w", err)
	}
	return nil
}
