package parser

import (
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/token"
)

// stopSet reports whether a token type terminates the current
// sub-expression without being consumed by it.
type stopSet func(token.Type) bool

func stopAtEndOfLine(tt token.Type) bool { return tt == token.STEndOfLine || tt == token.STEndOfFile }
func stopAtParenClose(tt token.Type) bool {
	return tt == token.CTParenClose || tt == token.STEndOfFile
}
func stopAtCallArg(tt token.Type) bool {
	return tt == token.CTComma || tt == token.CTParenClose || tt == token.STEndOfFile
}

func isBinaryOperator(tt token.Type) bool {
	switch tt {
	case token.OPPlus, token.OPMinus, token.OPMul, token.OPDiv, token.OPAssign:
		return true
	default:
		return false
	}
}

func isLiteralValue(tt token.Type) bool {
	switch tt {
	case token.CTNumber, token.CTNumberHex, token.CTNumberOct, token.CTNumberBin, token.CTNumberFloat,
		token.CTString, token.CTLiteral, token.KWTrue, token.KWFalse:
		return true
	default:
		return false
	}
}

// parseExpressionBlock parses a sequence of statements terminated by '}'
// into a node of kind 'entity' (DEF_FunctionBody for a function body,
// DEF_ExplicitScope for a nested '{ }' block).
func (p *Parser) parseExpressionBlock(entity syntax.Entity) (*syntax.Node, error) {
	block := p.alloc.Create(entity)

	for {
		tok := p.cursor.Peek()
		switch {
		case tok.Type == token.CTBracketClose:
			p.cursor.Advance()
			return block, nil

		case tok.Type == token.STEndOfLine:
			p.cursor.Advance()

		case tok.Type == token.STEndOfFile:
			return nil, p.err(ErrUnexpectedToken, tok)

		case tok.Type == token.KWLet:
			v, err := p.parseVariable(syntax.DEFVariable)
			if err != nil {
				return nil, err
			}
			block.AppendChild(v)

		case tok.Type == token.CTBracketOpen:
			p.cursor.Advance()
			scope, err := p.parseExpressionBlock(syntax.DEFExplicitScope)
			if err != nil {
				return nil, err
			}
			block.AppendChild(scope)

		default:
			stmt := p.alloc.Create(syntax.EXPExpression)
			if err := p.parseExpression(stmt, stopAtEndOfLine); err != nil {
				return nil, err
			}
			block.AppendChild(stmt)
		}
	}
}

// parseExpression appends one flat sibling run "v0 op0 v1 op1 v2 ..." as
// children of 'parent'. Precedence is NOT encoded here (invariant 4): the
// BytecodeGenerator reconstructs it during lowering (spec §4.7).
func (p *Parser) parseExpression(parent *syntax.Node, stop stopSet) error {
	for {
		term, err := p.parseTerm(stop)
		if err != nil {
			return err
		}
		if term == nil {
			return nil
		}
		parent.AppendChild(term)

		opTok := p.cursor.Peek()
		if !isBinaryOperator(opTok.Type) || stop(opTok.Type) {
			return nil
		}
		p.cursor.Advance()

		opNode := p.alloc.Create(syntax.EXPBinaryOperation)
		opNode.Operation = opTok
		parent.AppendChild(opNode)
	}
}

// parseTerm parses exactly one operand: a parenthesised sub-expression, a
// unary-minus application, a call, a member-access chain, a bare symbol,
// or a literal. Returns (nil, nil) when the current token terminates the
// enclosing expression instead of starting a new term.
func (p *Parser) parseTerm(stop stopSet) (*syntax.Node, error) {
	tok := p.cursor.Peek()
	if stop(tok.Type) {
		return nil, nil
	}

	switch {
	case tok.Type == token.OPMinus:
		p.cursor.Advance()
		unary := p.alloc.Create(syntax.EXPUnaryOperation)
		unary.Operation = tok
		operand, err := p.parseTerm(stop)
		if err != nil {
			return nil, err
		}
		if operand == nil {
			return nil, p.err(ErrUnexpectedToken, p.cursor.Peek())
		}
		unary.AppendChild(operand)
		return unary, nil

	case tok.Type == token.CTParenOpen:
		p.cursor.Advance()
		scope := p.alloc.Create(syntax.EXPExplicitScope)
		if err := p.parseExpression(scope, stopAtParenClose); err != nil {
			return nil, err
		}
		if close := p.cursor.Peek(); close.Type != token.CTParenClose {
			return nil, p.err(ErrUnexpectedToken, close)
		}
		p.cursor.Advance()
		return scope, nil

	case tok.Type == token.CTSymbol:
		name := p.cursor.Advance()
		switch p.cursor.Peek().Type {
		case token.CTParenOpen:
			return p.parseCall(name)
		case token.CTDot:
			return p.parseMemberChain(name)
		default:
			return p.valueNode(name), nil
		}

	case isLiteralValue(tok.Type):
		p.cursor.Advance()
		return p.valueNode(tok), nil

	default:
		return nil, nil
	}
}

func (p *Parser) valueNode(tok token.Token) *syntax.Node {
	n := p.alloc.Create(syntax.EXPValue)
	n.Value = tok
	return n
}

// parseCall parses '(' (expr (',' expr)*)? ')' following a callee symbol
// already consumed by the caller, each argument wrapped in an EXP_CallArg.
func (p *Parser) parseCall(callee token.Token) (*syntax.Node, error) {
	p.cursor.Advance() // '('
	call := p.alloc.Create(syntax.EXPCall)
	call.Function = callee

	for p.cursor.Peek().Type != token.CTParenClose {
		p.skipEndOfLines()
		if p.cursor.Peek().Type == token.CTParenClose {
			break
		}

		arg := p.alloc.Create(syntax.EXPCallArg)
		if err := p.parseExpression(arg, stopAtCallArg); err != nil {
			return nil, err
		}
		call.AppendChild(arg)

		p.skipEndOfLines()
		if p.cursor.Peek().Type == token.CTComma {
			p.cursor.Advance()
			p.skipEndOfLines()
		}
	}

	if close := p.cursor.Peek(); close.Type != token.CTParenClose {
		return nil, p.err(ErrUnexpectedToken, close)
	}
	p.cursor.Advance()

	return call, nil
}

// parseMemberChain parses one or more '.' ident suffixes following a
// symbol already consumed by the caller, producing an EXP_Value whose
// child list is a chain of EXP_GetMember nodes.
func (p *Parser) parseMemberChain(base token.Token) (*syntax.Node, error) {
	val := p.valueNode(base)

	for p.cursor.Peek().Type == token.CTDot {
		p.cursor.Advance()
		memberTok := p.cursor.Peek()
		if memberTok.Type != token.CTSymbol {
			return nil, p.err(ErrUnexpectedToken, memberTok)
		}
		p.cursor.Advance()

		member := p.alloc.Create(syntax.EXPGetMember)
		member.Member = memberTok
		val.AppendChild(member)
	}

	return val, nil
}
