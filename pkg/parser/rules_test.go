package parser_test

import (
	"testing"

	"arctic.dev/arctic/pkg/lexer"
	"arctic.dev/arctic/pkg/parser"
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/token"
	"arctic.dev/arctic/pkg/word"
)

// newCursor builds a parser.Cursor directly over 'src', bypassing the
// top-level Parse() loop, so these tests can drive one rule-engine
// combinator in isolation the way spec §4.5/§9 describes the rule
// engine's building blocks, rather than only through a full production.
func newCursor(src string) *parser.Cursor {
	lex := lexer.New(word.NewStream([]byte(src)), lexer.Options{Rules: lexer.Shader})
	return parser.NewCursor(lex)
}

func nameField(n *syntax.Node) *token.Token { return &n.Name }

// MergeToken ("for dotted or colon-joined names built up across several
// rule applications", actions.go) is exercised directly here rather than
// through parseMemberChain, which keeps each '.ident' as its own
// EXP_GetMember sibling per spec's tree shape instead of collapsing them
// into one merged field.
func TestMergeToken_MergesAcrossRuleApplications(t *testing.T) {
	alloc := syntax.NewHostAllocator()
	node := alloc.Create(syntax.DEFVariable)
	c := newCursor("a.b")

	state := parser.MatchAll(node, c,
		parser.MergeToken(token.CTSymbol, nameField, parser.Fail),
		parser.MergeToken(token.CTDot, nameField, parser.Fail),
		parser.MergeToken(token.CTSymbol, nameField, parser.Fail),
	)
	if state != parser.OK {
		t.Fatalf("MatchAll(MergeToken x3) = %s, want OK", state)
	}
	if got := string(node.Name.Text); got != "a.b" {
		t.Fatalf("merged Name.Text = %q, want %q", got, "a.b")
	}
}

// StoreBool<&Field, v> sets the target bool only on a match, leaving it
// untouched (and the cursor unadvanced) on failure.
func TestStoreBool_SetsOnMatchOnly(t *testing.T) {
	alloc := syntax.NewHostAllocator()

	present := alloc.Create(syntax.DEFTypeDef)
	c := newCursor("alias")
	rule := parser.StoreBool(token.KWAlias, func(n *syntax.Node) *bool { return &n.IsAlias }, true, parser.Fail)
	if state := rule.Apply(present, c); state != parser.OK {
		t.Fatalf("StoreBool on matching token = %s, want OK", state)
	}
	if !present.IsAlias {
		t.Fatalf("IsAlias = false, want true after a matching StoreBool")
	}

	absent := alloc.Create(syntax.DEFTypeDef)
	c2 := newCursor("struct")
	optionalRule := parser.TokenRule{Optional: true, FailState: parser.Fail, Func: rule.Func}
	if state := optionalRule.Apply(absent, c2); state != parser.OK {
		t.Fatalf("optional StoreBool on non-matching token = %s, want OK (skipped)", state)
	}
	if absent.IsAlias {
		t.Fatalf("IsAlias = true, want false: StoreBool must not fire on a non-matching token")
	}
	if c2.Peek().Type != token.KWStruct {
		t.Fatalf("cursor advanced past the non-matching token; StoreBool must leave it in place")
	}
}

// ExpectAny matches the current token against any member of its type set.
func TestExpectAny_MatchesAnyListedType(t *testing.T) {
	alloc := syntax.NewHostAllocator()
	node := alloc.Create(syntax.EXPBinaryOperation)
	c := newCursor("-")

	rule := parser.ExpectAny(parser.Fail, token.OPPlus, token.OPMinus)
	if state := rule.Apply(node, c); state != parser.OK {
		t.Fatalf("ExpectAny(+, -) against '-' = %s, want OK", state)
	}
	if c.Peek().Type != token.STEndOfFile {
		t.Fatalf("ExpectAny did not consume the matched token")
	}
}

// MatchFirst tries rules in order and returns the first success,
// restoring the cursor between failed attempts.
func TestMatchFirst_ReturnsFirstSuccess(t *testing.T) {
	alloc := syntax.NewHostAllocator()
	node := alloc.Create(syntax.EXPUnaryOperation)
	c := newCursor("-")

	state := parser.MatchFirst(node, c,
		parser.Expect(token.OPPlus, parser.Fail),
		parser.Expect(token.OPMinus, parser.Fail),
	)
	if state != parser.OK {
		t.Fatalf("MatchFirst(+, -) against '-' = %s, want OK", state)
	}
	if c.Peek().Type != token.STEndOfFile {
		t.Fatalf("expected the single '-' token to have been consumed")
	}
}

func TestMatchFirst_PropagatesLastFailureWhenNoneMatch(t *testing.T) {
	alloc := syntax.NewHostAllocator()
	node := alloc.Create(syntax.EXPUnaryOperation)
	c := newCursor("-")

	state := parser.MatchFirst(node, c,
		parser.Expect(token.OPPlus, parser.ErrUnexpectedToken),
		parser.Expect(token.OPMul, parser.ErrDefinitionUnknownToken),
	)
	if state != parser.ErrDefinitionUnknownToken {
		t.Fatalf("MatchFirst with no match = %s, want the last rule's FailState", state)
	}
}

// MatchSibling attaches its sub-node to the target's sibling chain
// instead of its child list, the counterpart to MatchChild used wherever
// a production needs a flat run of sibling nodes (spec §4.5).
func TestMatchSibling_AppendsToSiblingChain(t *testing.T) {
	alloc := syntax.NewHostAllocator()
	parent := alloc.Create(syntax.DEFFunction)
	c := newCursor("x : i32")

	rule := parser.MatchSibling(syntax.DEFFunctionArgument, alloc,
		parser.StoreToken(token.CTSymbol, nameField, parser.Fail),
		parser.Expect(token.CTColon, parser.Fail),
		parser.StoreToken(token.CTSymbol, func(n *syntax.Node) *token.Token { return &n.Type }, parser.Fail),
	)
	if state := rule.Apply(parent, c); state != parser.OK {
		t.Fatalf("MatchSibling(...) = %s, want OK", state)
	}
	if parent.Child != nil {
		t.Fatalf("MatchSibling must not attach to the child list")
	}
	if parent.Sibling == nil || parent.Sibling.Entity != syntax.DEFFunctionArgument {
		t.Fatalf("parent.Sibling = %v, want a DEF_FunctionArgument", parent.Sibling)
	}
	if string(parent.Sibling.Name.Text) != "x" || string(parent.Sibling.Type.Text) != "i32" {
		t.Fatalf("sibling fields = {%q %q}, want {%q %q}", parent.Sibling.Name.Text, parent.Sibling.Type.Text, "x", "i32")
	}
}
