package bytecode

import "testing"

func TestOpAndDecode(t *testing.T) {
	tests := []struct {
		name string
		op   OpCode
		ext  OpExt
		reg  OpReg
	}{
		{"MOVR VALUE R0", MOVR, Value, R0},
		{"ADD32 REG R1", ADD32, Reg, R1},
		{"CALL0_VOID NONE VOID", CALL0Void, None, VOID},
		{"MOVA REG R15", MOVA, Reg, R15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Op(tt.op, tt.ext, tt.reg)
			gotOp, gotExt, gotReg := w.Decode()
			if gotOp != tt.op || gotExt != tt.ext || gotReg != tt.reg {
				t.Fatalf("Decode() = (%s, %s, %s), want (%s, %s, %s)", gotOp, gotExt, gotReg, tt.op, tt.ext, tt.reg)
			}
		})
	}
}

func TestImm_RoundTrips32Bits(t *testing.T) {
	w := Imm(0xDEADBEEF)
	if w.Uint32() != 0xDEADBEEF {
		t.Fatalf("Uint32() = %#x, want %#x", w.Uint32(), uint32(0xDEADBEEF))
	}
}

func TestOpReg_ValueSPLiteralField(t *testing.T) {
	// The ADD32/SUB32 VALUE_SP form repurposes the operand-register byte as
	// a raw literal (always 4, the push/pop width), not a register index.
	w := Op(ADD32, ValueSP, OpReg(4))
	_, ext, reg := w.Decode()
	if ext != ValueSP || uint8(reg) != 4 {
		t.Fatalf("Decode() ext=%s reg=%d, want ValueSP/4", ext, reg)
	}
}
