package parser

import (
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/token"
)

// skipEOL is a repeatable, optional rule consuming zero or more
// EndOfLine tokens in place, used by the regular (combinator-driven)
// productions below wherever the grammar allows a line break to be
// swallowed silently (argument lists, member lists).
var skipEOL = TokenRule{Optional: true, Repeat: true, FailState: Fail, Func: func(_ *syntax.Node, c *Cursor) ParseState {
	if c.Peek().Type != token.STEndOfLine {
		return Fail
	}
	c.Advance()
	return OK
}}

// optionalComma consumes one ',' if present, never fails.
var optionalComma = TokenRule{Optional: true, FailState: Fail, Func: func(_ *syntax.Node, c *Cursor) ParseState {
	if c.Peek().Type != token.CTComma {
		return Fail
	}
	c.Advance()
	return OK
}}

// StoreAny stores whatever token is current (no type check beyond "not
// EOF") into the field 'f' selects, the action backing annotation
// attribute values, which may be any literal kind.
func StoreAny(f field, fail ParseState) TokenRule {
	return TokenRule{FailState: fail, Func: func(node *syntax.Node, c *Cursor) ParseState {
		if c.Peek().Type == token.STEndOfFile {
			return Fail
		}
		*f(node) = c.Advance()
		return OK
	}}
}

// parseAnnotation parses '[' attr_name ['=' literal] (',' attr_name
// ['=' literal])* ']' into a DEF_Annotation node whose children are
// DEF_AnnotationAttribute nodes, entirely through the rule combinator
// library.
func (p *Parser) parseAnnotation() (*syntax.Node, error) {
	annotation := p.alloc.Create(syntax.DEFAnnotation)

	if state := Expect(token.CTSquareBracketOpen, ErrTypeOfMissingBracketOpen).Apply(annotation, p.cursor); state != OK {
		p.alloc.Destroy(annotation)
		return nil, p.err(state, p.cursor.Peek())
	}

	attribute := MatchChild(syntax.DEFAnnotationAttribute, p.alloc,
		StoreToken(token.CTSymbol, nameField, Fail),
		TokenRule{Optional: true, FailState: Fail, Func: func(node *syntax.Node, c *Cursor) ParseState {
			return MatchAll(node, c, Expect(token.OPAssign, Fail), StoreAny(valueField, Fail))
		}},
	)

	list := TokenRule{Optional: true, Repeat: true, FailState: Fail, Func: func(node *syntax.Node, c *Cursor) ParseState {
		if state := attribute.Func(node, c); state != OK {
			return state
		}
		optionalComma.Apply(node, c)
		return OK
	}}
	list.Apply(annotation, p.cursor)

	if state := Expect(token.CTSquareBracketClose, ErrTypeOfMissingBracketClose).Apply(annotation, p.cursor); state != OK {
		p.alloc.Destroy(annotation)
		return nil, p.err(state, p.cursor.Peek())
	}

	return annotation, nil
}

// parseFunction parses 'fn name(args…): result_type <EOL> { body }' and
// returns (DEF_Function, DEF_FunctionBody): per invariant 3 the body is
// the function's sibling, never its child, so the caller links them.
func (p *Parser) parseFunction() (*syntax.Node, *syntax.Node, error) {
	p.cursor.Advance() // 'fn'

	fn := p.alloc.Create(syntax.DEFFunction)

	argument := MatchChild(syntax.DEFFunctionArgument, p.alloc,
		skipEOL,
		StoreToken(token.CTSymbol, nameField, Fail),
		Expect(token.CTColon, Fail),
		StoreToken(token.CTSymbol, typeField, Fail),
		skipEOL,
		optionalComma,
	)
	argument.Optional = true
	argument.Repeat = true

	header := MatchAll(fn, p.cursor,
		StoreToken(token.CTSymbol, nameField, ErrUnexpectedToken),
		Expect(token.CTParenOpen, ErrUnexpectedToken),
		argument,
		Expect(token.CTParenClose, ErrUnexpectedToken),
		Expect(token.CTColon, ErrUnexpectedToken),
		StoreToken(token.CTSymbol, typeField, ErrUnexpectedToken), // result_type
	)
	if header != OK {
		return nil, nil, p.err(header, p.cursor.Peek())
	}

	p.skipEndOfLines()

	if brace := p.cursor.Peek(); brace.Type != token.CTBracketOpen {
		return nil, nil, p.err(ErrUnexpectedToken, brace)
	}
	p.cursor.Advance()

	body, err := p.parseExpressionBlock(syntax.DEFFunctionBody)
	if err != nil {
		return nil, nil, err
	}

	return fn, body, nil
}

// parseVariable parses 'let Symbol : Symbol [= expr]' into a node of the
// given entity (DEF_Variable at top level / in a function body,
// DEF_ContextVariable inside a 'ctx' block). When an initializer is
// present it becomes the node's single child: an EXP_Expression whose
// children are the initializer expression's flat sibling run.
func (p *Parser) parseVariable(entity syntax.Entity) (*syntax.Node, error) {
	p.cursor.Advance() // 'let'

	v := p.alloc.Create(entity)

	header := MatchAll(v, p.cursor,
		StoreToken(token.CTSymbol, nameField, ErrUnexpectedToken),
		Expect(token.CTColon, ErrUnexpectedToken),
		StoreToken(token.CTSymbol, typeField, ErrUnexpectedToken),
	)
	if header != OK {
		return nil, p.err(header, p.cursor.Peek())
	}

	if p.cursor.Peek().Type != token.OPAssign {
		return v, nil
	}
	p.cursor.Advance()

	// The initializer is lowered directly against this variable's memory
	// offset (spec §4.7's DEF_Variable rule); no separate '=' marker node
	// is needed since the destination is implied by the variable decl
	// itself, unlike a bare assignment expression statement (x = expr)
	// where '=' surfaces as an ordinary EXP_BinaryOperation in the flat
	// sibling sequence (spec §4.7's precedence table lists '=' at level 0).
	init := p.alloc.Create(syntax.EXPExpression)
	if err := p.parseExpression(init, stopAtEndOfLine); err != nil {
		return nil, err
	}

	v.AppendChild(init)
	return v, nil
}

// parseTypeDefOrStruct parses 'def' followed by a struct declaration, an
// alias, or a plain typedef.
func (p *Parser) parseTypeDefOrStruct() (*syntax.Node, error) {
	p.cursor.Advance() // 'def'

	if p.cursor.Peek().Type == token.KWStruct {
		return p.parseStruct()
	}

	isAlias := p.cursor.Peek().Type == token.KWAlias
	if isAlias {
		p.cursor.Advance()
	}

	def := p.alloc.Create(syntax.DEFTypeDef)
	def.IsAlias = isAlias

	state := MatchAll(def, p.cursor,
		StoreToken(token.CTSymbol, nameField, ErrUnexpectedToken),
		Expect(token.OPAssign, ErrDefinitionMissingAssignmentOperator),
		StoreToken(token.CTSymbol, baseTypeField, ErrTypeOfMissingTypeName),
	)
	if state != OK {
		return nil, p.err(state, p.cursor.Peek())
	}

	return def, nil
}

// parseStruct parses 'struct Name { (member: Type <EOL>?)* }'.
func (p *Parser) parseStruct() (*syntax.Node, error) {
	p.cursor.Advance() // 'struct'

	st := p.alloc.Create(syntax.DEFStruct)

	if state := StoreToken(token.CTSymbol, nameField, ErrUnexpectedToken).Apply(st, p.cursor); state != OK {
		return nil, p.err(state, p.cursor.Peek())
	}
	if brace := p.cursor.Peek(); brace.Type != token.CTBracketOpen {
		return nil, p.err(ErrUnexpectedToken, brace)
	}
	p.cursor.Advance()

	member := MatchChild(syntax.DEFStructMember, p.alloc,
		skipEOL,
		StoreToken(token.CTSymbol, nameField, Fail),
		Expect(token.CTColon, Fail),
		StoreToken(token.CTSymbol, typeField, Fail),
		skipEOL,
	)
	member.Optional = true
	member.Repeat = true
	member.Apply(st, p.cursor)

	if close := p.cursor.Peek(); close.Type != token.CTBracketClose {
		return nil, p.err(ErrUnexpectedToken, close)
	}
	p.cursor.Advance()

	return st, nil
}

// parseContextBlock parses 'ctx Name { … }', a top-level-shaped loop
// limited to fn, let (as DEF_ContextVariable) and annotations.
func (p *Parser) parseContextBlock() (*syntax.Node, error) {
	p.cursor.Advance() // 'ctx'

	ctx := p.alloc.Create(syntax.DEFContextVariable)

	if state := StoreToken(token.CTSymbol, nameField, ErrUnexpectedToken).Apply(ctx, p.cursor); state != OK {
		return nil, p.err(state, p.cursor.Peek())
	}
	if brace := p.cursor.Peek(); brace.Type != token.CTBracketOpen {
		return nil, p.err(ErrUnexpectedToken, brace)
	}
	p.cursor.Advance()

	var pending *syntax.Node

	for {
		tok := p.cursor.Peek()
		switch {
		case tok.Type == token.CTBracketClose:
			p.cursor.Advance()
			return ctx, nil

		case tok.Type == token.STEndOfLine:
			p.cursor.Advance()

		case tok.Type == token.CTSquareBracketOpen:
			annotation, err := p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			if pending == nil {
				pending = annotation
			} else {
				pending.AppendSibling(annotation)
			}

		case tok.Type == token.KWFn:
			fn, body, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			fn.Annotation, pending = pending, nil
			ctx.AppendChild(fn)
			fn.AppendSibling(body)

		case tok.Type == token.KWLet:
			v, err := p.parseVariable(syntax.DEFContextVariable)
			if err != nil {
				return nil, err
			}
			v.Annotation, pending = pending, nil
			ctx.AppendChild(v)

		case tok.Type == token.STEndOfFile:
			return nil, p.err(ErrUnexpectedToken, tok)

		default:
			return nil, p.err(ErrDefinitionUnknownToken, tok)
		}
	}
}
