package vm

// Primary opcodes (bits 31:26 of the instruction word).
const (
	OpRType  = 0x00 // R-type: dispatch on Func
	OpRegImm = 0x01 // REGIMM: dispatch on Rt (BLTZ/BGEZ/BLTZAL/BGEZAL)
	OpJ      = 0x02
	OpJAL    = 0x03
	OpBEQ    = 0x04
	OpBNE    = 0x05
	OpBLEZ   = 0x06
	OpBGTZ   = 0x07
	OpADDI   = 0x08
	OpADDIU  = 0x09
	OpSLTI   = 0x0a
	OpSLTIU  = 0x0b
	OpANDI   = 0x0c
	OpORI    = 0x0d
	OpXORI   = 0x0e
	OpLUI    = 0x0f
	OpLB     = 0x20
	OpLW     = 0x23
	OpSB     = 0x28
	OpSW     = 0x2b
)

// R-type function codes (bits 5:0, valid only when Opcode == OpRType).
const (
	FuncSLL     = 0x00
	FuncSRL     = 0x02
	FuncSRA     = 0x03
	FuncSLLV    = 0x04
	FuncSRLV    = 0x05
	FuncSRAV    = 0x07
	FuncJR      = 0x08
	FuncSyscall = 0x0c
	FuncMFHI    = 0x10
	FuncMFLO    = 0x11
	FuncMULT    = 0x18
	FuncMULTU   = 0x19
	FuncDIV     = 0x1a
	FuncDIVU    = 0x1b
	FuncADD     = 0x20
	FuncADDU    = 0x21
	FuncSUB     = 0x22
	FuncSUBU    = 0x23
	FuncAND     = 0x24
	FuncOR      = 0x25
	FuncXOR     = 0x26
	FuncSLT     = 0x2a
	FuncSLTU    = 0x2b
)

// REGIMM rt-field secondary opcodes (valid only when Opcode == OpRegImm).
const (
	RtBLTZ   = 0x00
	RtBGEZ   = 0x01
	RtBLTZAL = 0x10
	RtBGEZAL = 0x11
)

// Standard MIPS general-register numbering. Register 0 always reads as
// zero; writes to it are discarded. These match the values spec.md §6
// names explicitly (a0=4, sp=29, ra=31) rather than the original
// reference's enum mips_regids, whose declaration-order numbering drifts
// from the real convention past $t7.
const (
	RegZero = 0
	RegAT   = 1
	RegV0   = 2
	RegV1   = 3
	RegA0   = 4
	RegA1   = 5
	RegA2   = 6
	RegA3   = 7
	RegT0   = 8
	RegT1   = 9
	RegT2   = 10
	RegT3   = 11
	RegT4   = 12
	RegT5   = 13
	RegT6   = 14
	RegT7   = 15
	RegS0   = 16
	RegS1   = 17
	RegS2   = 18
	RegS3   = 19
	RegS4   = 20
	RegS5   = 21
	RegS6   = 22
	RegS7   = 23
	RegT8   = 24
	RegT9   = 25
	RegK0   = 26
	RegK1   = 27
	RegGP   = 28
	RegSP   = 29
	RegFP   = 30
	RegRA   = 31
)

// registerNames gives the ABI name for each register, used by the
// debugger and execution trace.
var registerNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// RegisterName returns the ABI name of register index r ("zero".."ra").
func RegisterName(r int) string {
	if r < 0 || r > 31 {
		return "??"
	}
	return registerNames[r]
}

// Fixed memory layout per spec.md §6.
const (
	StackBase   uint32 = 0xC0000000
	StackLength uint32 = 0x8000
)

// Syscall numbers recognized by the SYSCALL handler, read from $v0.
const (
	SyscallPrintInt    = 1
	SyscallPrintString = 4
	SyscallReadInt     = 5
	SyscallReadString  = 8
	SyscallExit        = 10
)
