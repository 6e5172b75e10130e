package debugger

// CodeContextLinesAfterCompact is the number of decoded instructions
// the disassembly panel shows starting at PC.
const CodeContextLinesAfterCompact = 10

// MemoryDisplayRows is the number of words shown in the memory panel.
const MemoryDisplayRows = 16

// RegisterGroupSize is the number of registers shown per row in the
// register panel (32 registers / 4 per row = 8 rows).
const RegisterGroupSize = 4
