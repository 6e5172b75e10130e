package vm

import "fmt"

// Region is one contiguous, word-addressed slice of guest virtual memory.
// It corresponds to a single ELF program header (or the synthesized
// stack segment). Length in bytes is always len(Words)*4; regions never
// overlap and are never resized after creation (spec.md §3, §8).
type Region struct {
	Base  uint32
	Words []uint32
	Name  string
}

// End returns the address one past the last byte of the region.
func (r *Region) End() uint32 {
	return r.Base + uint32(len(r.Words))*4
}

func (r *Region) contains(addr uint32) bool {
	return addr >= r.Base && addr < r.End()
}

// Memory is the ordered collection of regions backing fetch and
// load/store. Lookup is a linear scan, the same choice the teacher's
// Memory.findSegment makes and spec.md §9 explicitly sanctions for a
// simulator of this size; a sorted array or page table would only pay
// off for guest programs far larger than this corpus's test binaries.
type Memory struct {
	Regions []*Region
}

// NewMemory creates an empty memory with no regions mapped.
func NewMemory() *Memory {
	return &Memory{}
}

// AddRegion maps a new zero-filled region of length bytes starting at
// base. length must be a multiple of 4 (spec.md §3).
func (m *Memory) AddRegion(name string, base, length uint32) *Region {
	r := &Region{
		Base:  base,
		Words: make([]uint32, length/4),
		Name:  name,
	}
	m.Regions = append(m.Regions, r)
	return r
}

func (m *Memory) findRegion(addr uint32) (*Region, error) {
	for _, r := range m.Regions {
		if r.contains(addr) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: address 0x%08X is not mapped", ErrSegFault, addr)
}

// ReadWord fetches the 32-bit word at addr. addr must be 4-byte aligned.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	r, err := m.findRegion(addr)
	if err != nil {
		return 0, err
	}
	if addr&3 != 0 {
		return 0, fmt.Errorf("%w: address 0x%08X is not word-aligned", ErrAlignFault, addr)
	}
	return r.Words[(addr-r.Base)/4], nil
}

// WriteWord stores value at addr. addr must be 4-byte aligned.
func (m *Memory) WriteWord(addr, value uint32) error {
	r, err := m.findRegion(addr)
	if err != nil {
		return err
	}
	if addr&3 != 0 {
		return fmt.Errorf("%w: address 0x%08X is not word-aligned", ErrAlignFault, addr)
	}
	r.Words[(addr-r.Base)/4] = value
	return nil
}

// ReadByte extracts the byte at addr, little-endian within its
// containing word (spec.md §4.4: EA&~3 selects the word, EA&3 selects
// the byte position, 0 is the low byte and 3 the high byte).
func (m *Memory) ReadByte(addr uint32) (byte, error) {
	word, err := m.ReadWord(addr &^ 3)
	if err != nil {
		return 0, err
	}
	shift := (addr & 3) * 8
	return byte(word >> shift), nil
}

// WriteByte performs the read-modify-write store spec.md §4.4 requires
// for SB: fetch the containing word, replace the selected byte, store
// the word back. The other three bytes of the word are left untouched.
func (m *Memory) WriteByte(addr uint32, value byte) error {
	wordAddr := addr &^ 3
	word, err := m.ReadWord(wordAddr)
	if err != nil {
		return err
	}
	shift := (addr & 3) * 8
	word = (word &^ (0xFF << shift)) | (uint32(value) << shift)
	return m.WriteWord(wordAddr, word)
}
