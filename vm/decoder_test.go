package vm

import "testing"

func TestDecodeRType(t *testing.T) {
	// ADD $t2,$t0,$t1 -> opcode=0 rs=8 rt=9 rd=10 shamt=0 func=0x20
	word := uint32(0)<<26 | uint32(8)<<21 | uint32(9)<<16 | uint32(10)<<11 | uint32(0)<<6 | 0x20
	inst := Decode(word)

	if inst.Opcode != OpRType {
		t.Fatalf("Opcode = %d, want %d", inst.Opcode, OpRType)
	}
	if inst.Rs != 8 || inst.Rt != 9 || inst.Rd != 10 || inst.Func != 0x20 {
		t.Fatalf("fields = %+v", inst)
	}
}

func TestDecodeITypeSignExtension(t *testing.T) {
	tests := []struct {
		name string
		imm  uint32
		want int32
	}{
		{"positive", 0x0005, 5},
		{"negative one", 0xFFFF, -1},
		{"sign bit only", 0x8000, -32768},
		{"max positive", 0x7FFF, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word := uint32(OpADDI)<<26 | uint32(8)<<21 | uint32(9)<<16 | tt.imm
			inst := Decode(word)
			if inst.ImmS != tt.want {
				t.Errorf("ImmS = %d, want %d", inst.ImmS, tt.want)
			}
			if inst.ImmU != tt.imm {
				t.Errorf("ImmU = 0x%X, want 0x%X", inst.ImmU, tt.imm)
			}
		})
	}
}

func TestDecodeJType(t *testing.T) {
	word := uint32(OpJ)<<26 | 0x0000123
	inst := Decode(word)
	if inst.Opcode != OpJ {
		t.Fatalf("Opcode = %d, want %d", inst.Opcode, OpJ)
	}
	if inst.Addr != 0x0000123 {
		t.Fatalf("Addr = 0x%X, want 0x123", inst.Addr)
	}
}

func TestDecodeEveryWordSucceeds(t *testing.T) {
	// Decoding is total: no input should panic or be rejected.
	words := []uint32{0x00000000, 0xFFFFFFFF, 0x12345678, 0x80000000}
	for _, w := range words {
		_ = Decode(w)
	}
}
