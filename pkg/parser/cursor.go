package parser

import (
	"arctic.dev/arctic/pkg/lexer"
	"arctic.dev/arctic/pkg/token"
)

// Cursor buffers the Lexer's lazy, single-use Token stream so the rule
// combinators below can backtrack: a failed MatchAll/MatchFirst attempt
// rewinds to a saved position instead of having pulled tokens it can never
// see again. The Lexer itself is still pulled at most once per Token.
type Cursor struct {
	lex    *lexer.Lexer
	tokens []token.Token
	pos    int
	err    error
}

func NewCursor(lex *lexer.Lexer) *Cursor {
	return &Cursor{lex: lex}
}

func (c *Cursor) ensure(i int) {
	for len(c.tokens) <= i {
		if c.err != nil {
			c.tokens = append(c.tokens, token.Token{Type: token.STEndOfFile})
			continue
		}
		t, err := c.lex.Next()
		if err != nil {
			c.err = err
			c.tokens = append(c.tokens, token.Token{Type: token.STEndOfFile})
			continue
		}
		c.tokens = append(c.tokens, t)
	}
}

// Err reports a fatal lexer error surfaced while buffering tokens, if any.
func (c *Cursor) Err() error { return c.err }

// Peek returns the current token without consuming it.
func (c *Cursor) Peek() token.Token {
	c.ensure(c.pos)
	return c.tokens[c.pos]
}

// PeekAt returns the token 'n' positions ahead of the current one (0 is
// the current token, same as Peek).
func (c *Cursor) PeekAt(n int) token.Token {
	c.ensure(c.pos + n)
	return c.tokens[c.pos+n]
}

// Advance consumes and returns the current token.
func (c *Cursor) Advance() token.Token {
	t := c.Peek()
	c.pos++
	return t
}

// Mark returns a position that Reset can later rewind to.
func (c *Cursor) Mark() int { return c.pos }

// Reset rewinds the cursor to a position previously returned by Mark.
func (c *Cursor) Reset(pos int) { c.pos = pos }
