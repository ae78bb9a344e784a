package parser

import (
	"arctic.dev/arctic/pkg/lexer"
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/token"
)

// Parser drives the top-level loop and every hand-written production; the
// rule combinators in rules.go/actions.go are its building blocks for the
// regular productions (struct members, annotation attributes, function
// signatures).
type Parser struct {
	cursor     *Cursor
	alloc      syntax.Allocator
	dispatcher *syntax.Dispatcher

	// pendingAnnotations holds the annotation chain accumulated since the
	// last definition; the next non-annotation definition claims it and
	// clears it (invariant 2: annotations are never shared between
	// definitions).
	pendingAnnotations *syntax.Node
}

func New(lex *lexer.Lexer, alloc syntax.Allocator, dispatcher *syntax.Dispatcher) *Parser {
	return &Parser{cursor: NewCursor(lex), alloc: alloc, dispatcher: dispatcher}
}

// Parse runs the top-level loop, returning the ROOT node of the built
// tree. On error Parse stops at the first failure and returns the ROOT
// built so far with a single error: a *Error for a parse failure, or the
// lexer's own error when the lexer failed. Nodes of the partially built
// definition are not destroyed; they stay counted as live by the
// allocator. The caller may choose to retry Parse
// from a fresh Parser starting after the offending line for robustness,
// per spec §7's resume policy (not automated here: that policy belongs to
// whatever drives multiple top-level attempts, e.g. a REPL or test
// harness, not to one Parse call).
func (p *Parser) Parse() (*syntax.Node, error) {
	root := p.alloc.Create(syntax.ROOT)

	for {
		tok := p.cursor.Peek()

		switch {
		case tok.Type == token.STEndOfFile:
			if err := p.cursor.Err(); err != nil {
				return root, err
			}
			return root, nil

		case tok.Type == token.STEndOfLine:
			p.cursor.Advance()
			continue

		case tok.Type == token.CTSquareBracketOpen:
			annotation, err := p.parseAnnotation()
			if err != nil {
				return root, err
			}
			if p.pendingAnnotations == nil {
				p.pendingAnnotations = annotation
			} else {
				p.pendingAnnotations.AppendSibling(annotation)
			}
			continue

		case tok.Type == token.KWFn:
			fn, body, err := p.parseFunction()
			if err != nil {
				return root, err
			}
			p.attachAnnotations(fn)
			root.AppendChild(fn)
			fn.AppendSibling(body)
			p.dispatcher.Notify(fn)
			continue

		case tok.Type == token.KWDef:
			def, err := p.parseTypeDefOrStruct()
			if err != nil {
				return root, err
			}
			p.attachAnnotations(def)
			root.AppendChild(def)
			p.dispatcher.Notify(def)
			continue

		case tok.Type == token.KWLet:
			v, err := p.parseVariable(syntax.DEFVariable)
			if err != nil {
				return root, err
			}
			p.attachAnnotations(v)
			root.AppendChild(v)
			p.dispatcher.Notify(v)
			continue

		case tok.Type == token.KWCtx:
			ctx, err := p.parseContextBlock()
			if err != nil {
				return root, err
			}
			root.AppendChild(ctx)
			p.dispatcher.Notify(ctx)
			continue

		default:
			return root, p.err(ErrDefinitionUnknownToken, tok)
		}
	}
}

func (p *Parser) attachAnnotations(n *syntax.Node) {
	n.Annotation = p.pendingAnnotations
	p.pendingAnnotations = nil
}

func (p *Parser) err(state ParseState, tok token.Token) error {
	return &Error{State: state, Line: tok.Location.Line, Column: tok.Location.Column, Token: string(tok.Text)}
}

// skipEndOfLines consumes zero or more EndOfLine tokens.
func (p *Parser) skipEndOfLines() {
	for p.cursor.Peek().Type == token.STEndOfLine {
		p.cursor.Advance()
	}
}
