package vm

import "errors"

// Fatal-kind sentinels (spec.md §7). The run loop uses errors.Is against
// these to decide the process exit code and diagnostic wording; every
// fault raised by memory or the executor wraps one of these with
// fmt.Errorf("...: %w", ...) so the offending address or instruction
// stays attached to the error without losing the kind. A read_int
// syscall that fails on host input wraps the underlying I/O or parse
// error instead, and wraps none of these.
var (
	// ErrSegFault: address outside every mapped region.
	ErrSegFault = errors.New("segmentation fault")

	// ErrAlignFault: word access to an address that is not a multiple of 4,
	// or a branch/jump target that is not word-aligned.
	ErrAlignFault = errors.New("alignment fault")

	// ErrOverflow: signed overflow on ADD/ADDI/SUB.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrDivByZero: DIV or DIVU with a zero divisor.
	ErrDivByZero = errors.New("division by zero")

	// ErrIllegalInstruction: unknown primary opcode or unknown R-type
	// function code. Unlike the other fatal kinds this terminates the run
	// loop gracefully (status 0), per spec.md §7.
	ErrIllegalInstruction = errors.New("illegal instruction")

	// ErrGuestExit: the guest executed SYSCALL with $v0 == 10.
	ErrGuestExit = errors.New("guest exit")
)
