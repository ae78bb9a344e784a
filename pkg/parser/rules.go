// Package parser implements the rule-combinator parser and hand-written
// expression/block routines that build a syntax.Node tree from a Lexer's
// token stream.
package parser

import "arctic.dev/arctic/pkg/syntax"

// ruleFunc attempts to advance the Cursor, optionally mutating node
// (storing a matched token into a field, merging a token span, setting a
// bool). It need not leave the Cursor untouched on failure: ruleFunc
// implementations that already advance a few tokens before discovering
// failure rely on their caller (TokenRule.Apply, MatchAll, MatchFirst) to
// reset to the position saved before the attempt.
type ruleFunc func(node *syntax.Node, c *Cursor) ParseState

// TokenRule is the declarative unit of the combinator library: a matcher
// plus the modifiers that change how its result is interpreted.
type TokenRule struct {
	Optional  bool
	Repeat    bool
	FailState ParseState
	Func      ruleFunc
}

// Apply runs the rule once (or, if Repeat, until it stops advancing),
// honoring Optional: an optional rule whose first attempt didn't advance
// the cursor is skipped silently rather than failing.
func (r TokenRule) Apply(node *syntax.Node, c *Cursor) ParseState {
	if r.Repeat {
		n := 0
		for {
			mark := c.Mark()
			if state := r.Func(node, c); state != OK {
				c.Reset(mark)
				break
			}
			n++
			if c.Mark() == mark {
				break
			}
		}
		if n == 0 && !r.Optional {
			return r.FailState
		}
		return OK
	}

	mark := c.Mark()
	if state := r.Func(node, c); state != OK {
		c.Reset(mark)
		if r.Optional {
			return OK
		}
		return r.FailState
	}
	return OK
}

// MatchAll runs 'rules' in sequence against 'node'; any rule's failure
// rewinds the whole sequence and propagates that failure.
func MatchAll(node *syntax.Node, c *Cursor, rules ...TokenRule) ParseState {
	mark := c.Mark()
	for _, r := range rules {
		if state := r.Apply(node, c); state != OK {
			c.Reset(mark)
			return state
		}
	}
	return OK
}

// MatchFirst tries 'rules' in order, returning the first success; if none
// succeed it propagates the last rule's failure state.
func MatchFirst(node *syntax.Node, c *Cursor, rules ...TokenRule) ParseState {
	last := Fail
	for _, r := range rules {
		mark := c.Mark()
		if state := r.Apply(node, c); state == OK {
			return OK
		} else {
			c.Reset(mark)
			last = state
		}
	}
	return last
}

// MatchChild attempts 'rules' against a freshly allocated sub-node of kind
// 'entity'; on success the sub-node is appended as a child of 'node', on
// failure it is destroyed and the token stream is left exactly where
// MatchChild started.
func MatchChild(entity syntax.Entity, alloc syntax.Allocator, rules ...TokenRule) TokenRule {
	return TokenRule{FailState: Fail, Func: func(node *syntax.Node, c *Cursor) ParseState {
		sub := alloc.Create(entity)
		mark := c.Mark()
		for _, r := range rules {
			if state := r.Apply(sub, c); state != OK {
				c.Reset(mark)
				alloc.Destroy(sub)
				return state
			}
		}
		node.AppendChild(sub)
		return OK
	}}
}

// MatchSibling is MatchChild's sibling-list counterpart: on success the
// sub-node is appended to 'node's own sibling chain instead of its child
// list.
func MatchSibling(entity syntax.Entity, alloc syntax.Allocator, rules ...TokenRule) TokenRule {
	return TokenRule{FailState: Fail, Func: func(node *syntax.Node, c *Cursor) ParseState {
		sub := alloc.Create(entity)
		mark := c.Mark()
		for _, r := range rules {
			if state := r.Apply(sub, c); state != OK {
				c.Reset(mark)
				alloc.Destroy(sub)
				return state
			}
		}
		node.AppendSibling(sub)
		return OK
	}}
}
