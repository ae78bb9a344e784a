package codegen_test

import (
	"testing"

	"arctic.dev/arctic/pkg/codegen"
	"arctic.dev/arctic/pkg/lexer"
	"arctic.dev/arctic/pkg/parser"
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/vm"
	"arctic.dev/arctic/pkg/word"
)

// compile runs the full lexer -> parser -> codegen pipeline over src and
// returns a VM over the linked image, failing the test on any stage error.
func compile(t *testing.T, src string) *vm.VM {
	t.Helper()

	lex := lexer.New(word.NewStream([]byte(src)), lexer.Options{Rules: lexer.Provided})
	alloc := syntax.NewHostAllocator()
	p := parser.New(lex, alloc, syntax.NewDispatcher())

	root, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %s", err)
	}

	image, err := codegen.New().Generate(root)
	if err != nil {
		t.Fatalf("Generate() error: %s", err)
	}

	return vm.New(image)
}

func readWord(t *testing.T, mem []byte, offset uint32) uint32 {
	t.Helper()
	if int(offset)+4 > len(mem) {
		t.Fatalf("memory region too short: want offset %d, len %d", offset, len(mem))
	}
	return uint32(mem[offset])<<24 | uint32(mem[offset+1])<<16 | uint32(mem[offset+2])<<8 | uint32(mem[offset+3])
}

// Scenario 1 (spec §8): `let x: i32 = 2 + 3 * 4` -> memory[4..8] == 14,
// proving precedence climbing binds '*' tighter than '+'.
func TestEndToEnd_PrecedenceInInitializer(t *testing.T) {
	src := "context Shader\nfn main(): void\n{\n  let x: i32 = 2 + 3 * 4\n}\n\x00"
	m := compile(t, src)

	_, mem, err := m.CallWithMemory("main")
	if err != nil {
		t.Fatalf("Call(main) error: %s", err)
	}
	if got := readWord(t, mem, 4); got != 14 {
		t.Fatalf("memory[4..8] = %d, want 14", got)
	}
}

// Scenario 2: two sequential declarations each keep their own offset.
func TestEndToEnd_SequentialDeclarationsGetDistinctOffsets(t *testing.T) {
	src := "context Shader\nfn sum(): i32\n{\n  let a: i32 = 1 + 2\n  let b: i32 = a + 4\n}\n\x00"
	m := compile(t, src)

	_, mem, err := m.CallWithMemory("sum")
	if err != nil {
		t.Fatalf("Call(sum) error: %s", err)
	}
	if got := readWord(t, mem, 4); got != 3 {
		t.Fatalf("memory[4..8] = %d, want 3", got)
	}
	if got := readWord(t, mem, 8); got != 7 {
		t.Fatalf("memory[8..12] = %d, want 7", got)
	}
}

// Scenario 3: explicit parens override precedence.
func TestEndToEnd_ParenthesizedExpression(t *testing.T) {
	src := "context Shader\nfn f(): i32\n{\n  let x: i32 = (1 + 2) * (3 - 1)\n}\n\x00"
	m := compile(t, src)

	_, mem, err := m.CallWithMemory("f")
	if err != nil {
		t.Fatalf("Call(f) error: %s", err)
	}
	if got := readWord(t, mem, 4); got != 6 {
		t.Fatalf("memory[4..8] = %d, want 6", got)
	}
}

// Scenario 4: unary minus, read back as a two's-complement uint32.
func TestEndToEnd_UnaryMinus(t *testing.T) {
	src := "context Shader\nfn g(): i32\n{\n  let x: i32 = 10\n  let y: i32 = -x + 3\n}\n\x00"
	m := compile(t, src)

	_, mem, err := m.CallWithMemory("g")
	if err != nil {
		t.Fatalf("Call(g) error: %s", err)
	}
	got := int32(readWord(t, mem, 8))
	if got != -7 {
		t.Fatalf("memory[8..12] = %d, want -7", got)
	}
}

// Scenario 5: a zero-arg call site resolves to its callee's frame and the
// caller's R0 reflects the sum of two calls.
func TestEndToEnd_CallSiteResolution(t *testing.T) {
	src := "context Shader\nfn one(): i32\n{\n  let r: i32 = 1\n}\nfn two(): i32\n{\n  let r: i32 = one() + one()\n}\n\x00"
	m := compile(t, src)

	result, err := m.Call("two")
	if err != nil {
		t.Fatalf("Call(two) error: %s", err)
	}
	if result != 2 {
		t.Fatalf("Call(two) = %d, want 2", result)
	}
}

// Scenario 6: binary/hex/octal literals all fold through the same
// precedence-climbing accumulator.
func TestEndToEnd_MixedNumberBases(t *testing.T) {
	src := "context Shader\nfn u(): i32\n{\n  let x: i32 = 0b101 + 0x0F + 010\n}\n\x00"
	m := compile(t, src)

	_, mem, err := m.CallWithMemory("u")
	if err != nil {
		t.Fatalf("Call(u) error: %s", err)
	}
	if got := readWord(t, mem, 4); got != 28 {
		t.Fatalf("memory[4..8] = %d, want 28 (5 + 15 + 8)", got)
	}
}

// VM conservation property (spec §8): a pure expression statement with no
// assignment target leaves the declared variables' memory untouched.
func TestEndToEnd_NonAssignmentStatementLeavesMemoryUnchanged(t *testing.T) {
	src := "context Shader\nfn h(): i32\n{\n  let x: i32 = 5\n  x + 1\n}\n\x00"
	m := compile(t, src)

	_, mem, err := m.CallWithMemory("h")
	if err != nil {
		t.Fatalf("Call(h) error: %s", err)
	}
	if got := readWord(t, mem, 4); got != 5 {
		t.Fatalf("memory[4..8] = %d, want 5 (unchanged by the trailing non-assignment expression)", got)
	}
}

// Assignment to an already-declared variable stores through its existing
// offset rather than allocating a new one.
func TestEndToEnd_ReassignmentReusesOffset(t *testing.T) {
	src := "context Shader\nfn k(): i32\n{\n  let x: i32 = 1\n  x = x + 9\n}\n\x00"
	m := compile(t, src)

	_, mem, err := m.CallWithMemory("k")
	if err != nil {
		t.Fatalf("Call(k) error: %s", err)
	}
	if got := readWord(t, mem, 4); got != 10 {
		t.Fatalf("memory[4..8] = %d, want 10", got)
	}
}
