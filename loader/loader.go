// Package loader reads a statically-linked MIPS-I ELF32 executable and
// populates a vm.Memory with its loadable segments, the way
// original_source/sim/main.c's ReadELF does for the C simulator this
// package replaces.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/dmccoy/mipssim/vm"
)

const (
	ei_mag0  = 0
	ei_mag1  = 1
	ei_mag2  = 2
	ei_mag3  = 3
	ei_class = 4
	ei_data  = 5

	elfclass32  = 1
	elfdata2lsb = 1

	etExec    = 2
	emMIPS    = 8
	evCurrent = 1

	ptLoad = 1
)

// elf32Header mirrors Elf32_Ehdr's field layout (without e_ident, read
// separately as raw bytes since it's not a uniform integer run).
type elf32Header struct {
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// elf32ProgramHeader mirrors Elf32_Phdr.
type elf32ProgramHeader struct {
	Type   uint32
	Offset uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  uint32
	Align  uint32
}

const elf32PhdrSize = 32

// LoadELF opens the ELF32 executable at path, validates it as a
// statically-linked MIPS-I binary, and builds the vm.Memory and
// initial vm.CPU state described by its program headers plus the
// fixed stack region from spec.md §6. The returned CPU has PC set to
// the entry point and $sp set to the top of the stack region; every
// other register is zero.
func LoadELF(path string) (*vm.Memory, vm.CPU, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vm.CPU{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ident := make([]byte, 16)
	if _, err := io.ReadFull(f, ident); err != nil {
		return nil, vm.CPU{}, fmt.Errorf("read ELF identification: %w", err)
	}
	if ident[ei_mag0] != 0x7F || ident[ei_mag1] != 'E' || ident[ei_mag2] != 'L' || ident[ei_mag3] != 'F' {
		return nil, vm.CPU{}, fmt.Errorf("%s: bad ELF magic", path)
	}
	if ident[ei_data] != elfdata2lsb {
		return nil, vm.CPU{}, fmt.Errorf("%s: not little-endian", path)
	}
	if ident[ei_class] != elfclass32 {
		return nil, vm.CPU{}, fmt.Errorf("%s: not ELFCLASS32", path)
	}

	var hdr elf32Header
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return nil, vm.CPU{}, fmt.Errorf("read ELF header: %w", err)
	}
	if hdr.Machine != emMIPS {
		return nil, vm.CPU{}, fmt.Errorf("%s: not a MIPS binary (e_machine=%d)", path, hdr.Machine)
	}
	if hdr.Type != etExec {
		return nil, vm.CPU{}, fmt.Errorf("%s: not an executable file (e_type=%d)", path, hdr.Type)
	}
	if hdr.Version != evCurrent {
		return nil, vm.CPU{}, fmt.Errorf("%s: unsupported ELF version %d", path, hdr.Version)
	}
	if hdr.Phentsize != elf32PhdrSize {
		return nil, vm.CPU{}, fmt.Errorf("%s: unexpected program header size %d", path, hdr.Phentsize)
	}

	mem := vm.NewMemory()

	for i := 0; i < int(hdr.Phnum); i++ {
		if _, err := f.Seek(int64(hdr.Phoff)+int64(i)*elf32PhdrSize, io.SeekStart); err != nil {
			return nil, vm.CPU{}, fmt.Errorf("seek to program header %d: %w", i, err)
		}
		var ph elf32ProgramHeader
		if err := binary.Read(f, binary.LittleEndian, &ph); err != nil {
			return nil, vm.CPU{}, fmt.Errorf("read program header %d: %w", i, err)
		}
		if ph.Type != ptLoad {
			continue
		}

		mem.AddRegion(fmt.Sprintf("load%d", i), ph.Vaddr, ph.Memsz)
		if ph.Filesz == 0 {
			continue
		}

		if _, err := f.Seek(int64(ph.Offset), io.SeekStart); err != nil {
			return nil, vm.CPU{}, fmt.Errorf("seek to segment %d data: %w", i, err)
		}
		data := make([]byte, ph.Filesz)
		if _, err := io.ReadFull(f, data); err != nil {
			return nil, vm.CPU{}, fmt.Errorf("read segment %d data: %w", i, err)
		}
		if err := fillRegionWords(mem, ph.Vaddr, data); err != nil {
			return nil, vm.CPU{}, fmt.Errorf("load segment %d: %w", i, err)
		}
	}

	mem.AddRegion("stack", vm.StackBase, vm.StackLength)

	cpu := vm.CPU{}
	cpu.PC = hdr.Entry
	cpu.SetReg(vm.RegSP, vm.StackBase+vm.StackLength-4)

	return mem, cpu, nil
}

// fillRegionWords copies file-backed segment bytes into mem starting
// at vaddr, little-endian, zero-padding any trailing partial word.
// p_filesz is not guaranteed to be a multiple of 4 (the tail of a
// .bss-adjacent segment commonly isn't), so the last word is built up
// byte by byte.
func fillRegionWords(mem *vm.Memory, vaddr uint32, data []byte) error {
	for i := 0; i < len(data); i += 4 {
		var word [4]byte
		copy(word[:], data[i:])
		if err := mem.WriteWord(vaddr+uint32(i), binary.LittleEndian.Uint32(word[:])); err != nil {
			return err
		}
	}
	return nil
}
