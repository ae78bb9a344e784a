package bytecode

import "testing"

func TestAssemble_SingleFunctionFrameLayout(t *testing.T) {
	fn := Function{Name: "main", StackSize: 32, Body: []Word{
		Op(MOVR, Value, R0), Imm(42),
	}}

	img, err := Assemble([]Function{fn})
	if err != nil {
		t.Fatalf("Assemble() error: %s", err)
	}

	symbols, bodyStart, err := ReadSymbols(img.Words)
	if err != nil {
		t.Fatalf("ReadSymbols() error: %s", err)
	}
	if len(symbols) != 1 || symbols[0].Name != "main" {
		t.Fatalf("symbols = %v, want one entry named 'main'", symbols)
	}
	if symbols[0].Offset != img.Offsets["main"] {
		t.Fatalf("symbol offset %d != Offsets[main] %d", symbols[0].Offset, img.Offsets["main"])
	}
	if bodyStart != symbols[0].Offset {
		t.Fatalf("header ends at %d, want frame offset %d", bodyStart, symbols[0].Offset)
	}

	frame := img.Words[bodyStart:]
	wantHeader := []Word{
		Op(META, None, VOID), Imm(1),
		Op(META, None, VOID), Imm(32),
		Op(EXEC, None, VOID), Imm(1),
	}
	for i, w := range wantHeader {
		if frame[i] != w {
			t.Fatalf("frame header word %d = %#x, want %#x", i, frame[i], w)
		}
	}

	body := frame[6 : 6+len(fn.Body)]
	for i, w := range fn.Body {
		if body[i] != w {
			t.Errorf("body word %d = %#x, want %#x", i, body[i], w)
		}
	}

	end := frame[6+len(fn.Body)]
	if op, _, _ := end.Decode(); op != END {
		t.Fatalf("frame terminator = %s, want END", op)
	}
}

func TestAssemble_LinksCallSitesToFrameOffsets(t *testing.T) {
	callee := Function{Name: "one", StackSize: 32, Body: []Word{Op(MOVR, Value, R0), Imm(1)}}
	caller := Function{Name: "two", StackSize: 32, Body: []Word{
		Op(MOVR, Func, TP), CallPlaceholder(0),
		Op(CALL0Void, None, VOID),
	}}

	img, err := Assemble([]Function{callee, caller})
	if err != nil {
		t.Fatalf("Assemble() error: %s", err)
	}

	_, bodyStart, err := ReadSymbols(img.Words)
	if err != nil {
		t.Fatalf("ReadSymbols() error: %s", err)
	}

	calleeFrameLen := uint32(3*2 + len(callee.Body) + 1)
	callerFrame := img.Words[bodyStart+calleeFrameLen:]
	linkedOperand := callerFrame[6+1] // past MOVR FUNC,TP instruction word

	if linkedOperand.Uint32() != img.Offsets["one"] {
		t.Fatalf("linked call operand = %d, want callee frame offset %d", linkedOperand.Uint32(), img.Offsets["one"])
	}
}

func TestReadSymbols_RejectsTruncatedHeader(t *testing.T) {
	if _, _, err := ReadSymbols([]Word{Op(META, MetaSymbol, VOID)}); err == nil {
		t.Fatalf("expected an error for a truncated header entry")
	}
}

func TestReadSymbols_RejectsHeaderNotStartingWithMeta(t *testing.T) {
	if _, _, err := ReadSymbols([]Word{Op(MOVR, Value, R0)}); err == nil {
		t.Fatalf("expected an error when the header doesn't start with META")
	}
}

func TestPackName_RoundTripsThroughUnpackName(t *testing.T) {
	for _, name := range []string{"a", "main", "compute_pixel"} {
		packed := packName(name)
		got := unpackName(packed, len(name))
		if got != name {
			t.Errorf("packName/unpackName(%q) round-tripped to %q", name, got)
		}
	}
}
