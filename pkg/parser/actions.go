package parser

import (
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/token"
)

// field is a success action's field accessor: the small set of
// MatchType<T> actions in spec §4.5/§9 are modeled as closures that index
// into whichever Node field the active rule targets, since Go has no
// pointer-to-member to give them directly the way the C++ templates did.
type field func(*syntax.Node) *token.Token

func nameField(n *syntax.Node) *token.Token     { return &n.Name }
func typeField(n *syntax.Node) *token.Token     { return &n.Type }
func baseTypeField(n *syntax.Node) *token.Token { return &n.BaseType }
func valueField(n *syntax.Node) *token.Token    { return &n.Value }

// Expect matches the current token against 'tt', the "none" success
// action: consume and discard.
func Expect(tt token.Type, fail ParseState) TokenRule {
	return TokenRule{FailState: fail, Func: func(_ *syntax.Node, c *Cursor) ParseState {
		if c.Peek().Type != tt {
			return Fail
		}
		c.Advance()
		return OK
	}}
}

// ExpectAny matches the current token against any of 'tts'.
func ExpectAny(fail ParseState, tts ...token.Type) TokenRule {
	return TokenRule{FailState: fail, Func: func(_ *syntax.Node, c *Cursor) ParseState {
		cur := c.Peek().Type
		for _, tt := range tts {
			if cur == tt {
				c.Advance()
				return OK
			}
		}
		return Fail
	}}
}

// StoreToken is the StoreToken<&Field> success action: on match, the
// consumed token is written into whichever field 'f' selects on the rule's
// target node (the node passed to Apply, or the freshly allocated
// sub-node inside a MatchChild/MatchSibling).
func StoreToken(tt token.Type, f field, fail ParseState) TokenRule {
	return TokenRule{FailState: fail, Func: func(node *syntax.Node, c *Cursor) ParseState {
		if c.Peek().Type != tt {
			return Fail
		}
		*f(node) = c.Advance()
		return OK
	}}
}

// MergeToken is the MergeToken<&Field> success action: on match, the
// target field's Text span is extended through the end of the newly
// consumed token, for dotted/colon-joined names built up across several
// rule applications. The first call (field still zero-valued) behaves
// like StoreToken.
func MergeToken(tt token.Type, f field, fail ParseState) TokenRule {
	return TokenRule{FailState: fail, Func: func(node *syntax.Node, c *Cursor) ParseState {
		if c.Peek().Type != tt {
			return Fail
		}
		t := c.Advance()
		dst := f(node)
		if dst.Text == nil {
			*dst = t
			return OK
		}
		// Both slices alias the same source buffer; without unsafe pointer
		// arithmetic the merged span is rebuilt by concatenation instead,
		// so a merged name's Text becomes an owned buffer rather than a
		// borrowed slice (true only for merged-name tokens).
		merged := make([]byte, 0, len(dst.Text)+len(t.Text))
		merged = append(merged, dst.Text...)
		merged = append(merged, t.Text...)
		dst.Text = merged
		return OK
	}}
}

// StoreBool is the StoreBool<&Field, v> success action: on match, the
// target bool is set to 'value'.
func StoreBool(tt token.Type, f func(*syntax.Node) *bool, value bool, fail ParseState) TokenRule {
	return TokenRule{FailState: fail, Func: func(node *syntax.Node, c *Cursor) ParseState {
		if c.Peek().Type != tt {
			return Fail
		}
		c.Advance()
		*f(node) = value
		return OK
	}}
}
