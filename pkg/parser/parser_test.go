package parser_test

import (
	"testing"

	"arctic.dev/arctic/pkg/lexer"
	"arctic.dev/arctic/pkg/parser"
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/word"
)

func parse(t *testing.T, src string) (*syntax.Node, error) {
	t.Helper()
	lex := lexer.New(word.NewStream([]byte(src)), lexer.Options{Rules: lexer.Provided})
	alloc := syntax.NewHostAllocator()
	p := parser.New(lex, alloc, syntax.NewDispatcher())
	return p.Parse()
}

// Parser error scenario (spec §8): a missing ']' reports
// TypeOf_MissingBracketClose and attaches no DEF_Annotation to whatever
// definition follows.
func TestParse_MissingBracketClose_ReportsTypeOfMissingBracketClose(t *testing.T) {
	src := "context Shader\n[uniform, set = 0\nfn main(): void\n{\n}\n\x00"
	root, err := parse(t, src)

	perr, ok := err.(*parser.Error)
	if !ok {
		t.Fatalf("Parse() error = %v (%T), want *parser.Error", err, err)
	}
	if perr.State != parser.ErrTypeOfMissingBracketClose {
		t.Fatalf("Parse() error state = %s, want TypeOf_MissingBracketClose", perr.State)
	}

	for n := range root.Children() {
		if n.Entity == syntax.DEFFunction && n.Annotation != nil {
			t.Fatalf("DEF_Function got an annotation despite the malformed bracket above it")
		}
	}
}

// Tree shape invariant (spec §8): every DEF_Function's body is reachable
// as its sibling, never its child.
func TestParse_FunctionBodyIsSiblingNotChild(t *testing.T) {
	src := "context Shader\nfn main(): void\n{\n  let x: i32 = 1\n}\n\x00"
	root, err := parse(t, src)
	if err != nil {
		t.Fatalf("Parse() error: %s", err)
	}

	var fn *syntax.Node
	for n := range root.Children() {
		if n.Entity == syntax.DEFFunction {
			fn = n
		}
	}
	if fn == nil {
		t.Fatalf("no DEF_Function found at root")
	}
	if fn.Child != nil {
		t.Fatalf("DEF_Function has a child; the body must be its sibling instead")
	}
	if fn.Sibling == nil || fn.Sibling.Entity != syntax.DEFFunctionBody {
		t.Fatalf("DEF_Function.Sibling = %v, want a DEF_FunctionBody", fn.Sibling)
	}
}

// Annotations attach to the definition that follows them and are never
// shared across two definitions (invariant 2).
func TestParse_AnnotationAttachesOnlyToFollowingDefinition(t *testing.T) {
	src := "context Shader\n[uniform, set = 0]\nfn main(): void\n{\n}\nfn other(): void\n{\n}\n\x00"
	root, err := parse(t, src)
	if err != nil {
		t.Fatalf("Parse() error: %s", err)
	}

	var main, other *syntax.Node
	for n := range root.Children() {
		if n.Entity != syntax.DEFFunction {
			continue
		}
		switch string(n.Name.Text) {
		case "main":
			main = n
		case "other":
			other = n
		}
	}
	if main == nil || other == nil {
		t.Fatalf("expected both main and other DEF_Function nodes")
	}
	if main.Annotation == nil {
		t.Fatalf("main should carry the preceding annotation")
	}
	if other.Annotation != nil {
		t.Fatalf("other must not inherit main's annotation")
	}
}
