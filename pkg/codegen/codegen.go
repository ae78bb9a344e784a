// Package codegen implements the BytecodeGenerator: a two-pass lowering of
// a complete syntax tree into a linked bytecode.Image, honoring operator
// precedence via the dual-register + stack-spill strategy spec §4.7
// describes (§4.7 "Register/stack lowering ambiguity" commits this
// package to classical precedence climbing with one accumulator register
// and stack spills).
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"arctic.dev/arctic/pkg/bytecode"
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/token"
	"arctic.dev/arctic/pkg/utils"
)

// Generator lowers a parsed program (the ROOT node's children) to a
// bytecode.Image. Like the teacher's pkg/jack.Lowerer and pkg/vm.Lowerer,
// it walks the tree with a Go type switch rather than through
// syntax.Visitor's push-based dispatch: the Visitor is the extension
// point external consumers (a GLSL/HLSL transpiler) hang off of during
// parsing, while lowering needs two full passes over the finished tree
// (index every function first, so forward calls resolve, then lower each
// body), which push notification during construction can't give it.
//
// funcIndex is an OrderedMap for the same reason jack.Lowerer keeps its
// class table in one (lowering.go): Go's native map iteration order is
// randomized, and the "Lowerer determinism" property requires two
// independent Generate calls over the same tree to emit byte-identical
// images.
type Generator struct {
	funcIndex utils.OrderedMap[string, int]
}

func New() *Generator {
	return &Generator{funcIndex: utils.NewOrderedMap[string, int]()}
}

// Generate lowers every DEF_Function reachable from 'root' (its direct
// children, and one level into DEF_ContextVariable/'ctx' blocks) into a
// linked bytecode.Image.
func (g *Generator) Generate(root *syntax.Node) (bytecode.Image, error) {
	var functions []*syntax.Node
	for n := range root.Children() {
		switch n.Entity {
		case syntax.DEFFunction:
			g.funcIndex.Set(string(n.Name.Text), len(functions))
			functions = append(functions, n)
		case syntax.DEFContextVariable:
			for c := range n.Children() {
				if c.Entity == syntax.DEFFunction {
					g.funcIndex.Set(string(c.Name.Text), len(functions))
					functions = append(functions, c)
				}
			}
		}
	}

	lowered := make([]bytecode.Function, 0, len(functions))
	for _, fn := range functions {
		f, err := g.lowerFunction(fn)
		if err != nil {
			return bytecode.Image{}, err
		}
		lowered = append(lowered, f)
	}

	return bytecode.Assemble(lowered)
}

// lowerFunction lowers one DEF_Function + its DEF_FunctionBody sibling
// (invariant 3: the body is never the function's child) into one
// bytecode.Function.
func (g *Generator) lowerFunction(fn *syntax.Node) (bytecode.Function, error) {
	body := fn.Sibling
	if body == nil || body.Entity != syntax.DEFFunctionBody {
		return bytecode.Function{}, fmt.Errorf("codegen: function %q has no DEF_FunctionBody sibling", fn.Name.Text)
	}

	fl := &functionLowerer{gen: g, offsets: make(map[string]uint32), nextOffset: 4}

	var words []bytecode.Word
	stmtWords, err := fl.lowerBlock(body)
	if err != nil {
		return bytecode.Function{}, fmt.Errorf("codegen: function %q: %w", fn.Name.Text, err)
	}
	words = append(words, stmtWords...)

	stackSize := fl.nextOffset
	if stackSize < 32 {
		stackSize = 32
	}

	return bytecode.Function{Name: string(fn.Name.Text), StackSize: stackSize, Body: words}, nil
}

// functionLowerer accumulates the variable-name -> memory-offset map for
// one function while its body is lowered; offsets are assigned in
// declaration order, 4 bytes each, starting at 4 (offset 0 is reserved).
// Mirrors jack.Lowerer's per-subroutine ScopeTable in spirit, trimmed to
// the one piece of state this target needs.
type functionLowerer struct {
	gen        *Generator
	offsets    map[string]uint32
	nextOffset uint32
}

// lowerBlock lowers the statements of a DEF_FunctionBody or
// DEF_ExplicitScope, in order.
func (fl *functionLowerer) lowerBlock(block *syntax.Node) ([]bytecode.Word, error) {
	var words []bytecode.Word
	for stmt := range block.Children() {
		var w []bytecode.Word
		var err error

		switch stmt.Entity {
		case syntax.DEFVariable:
			w, err = fl.lowerVariableDecl(stmt)
		case syntax.EXPExpression:
			w, err = fl.lowerExpressionStatement(stmt)
		case syntax.DEFExplicitScope:
			w, err = fl.lowerBlock(stmt)
		default:
			err = fmt.Errorf("unsupported statement entity %s", stmt.Entity)
		}
		if err != nil {
			return nil, err
		}
		words = append(words, w...)
	}
	return words, nil
}

// lowerVariableDecl records the new variable's offset and, if present,
// lowers its initializer with that offset as destination.
func (fl *functionLowerer) lowerVariableDecl(v *syntax.Node) ([]bytecode.Word, error) {
	offset := fl.nextOffset
	fl.offsets[string(v.Name.Text)] = offset
	fl.nextOffset += 4

	if v.Child == nil {
		return nil, nil
	}

	items := flatten(v.Child.Child)
	if len(items) == 0 {
		return nil, nil
	}

	words, _, err := fl.lowerPrecedence(items, 0, 1)
	if err != nil {
		return nil, err
	}
	words = append(words,
		bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.PTR), bytecode.Imm(offset),
		bytecode.Op(bytecode.MOVA, bytecode.Reg, bytecode.R0),
	)
	return words, nil
}

// lowerExpressionStatement lowers a DEF_Expression statement and discards
// its result, except when it is the single top-level assignment pattern
// "x = expr" (spec §4.7), which instead stores the result at x's address.
func (fl *functionLowerer) lowerExpressionStatement(stmt *syntax.Node) ([]bytecode.Word, error) {
	items := flatten(stmt.Child)
	if len(items) == 0 {
		return nil, nil
	}

	if len(items) >= 2 && items[1].Entity == syntax.EXPBinaryOperation && items[1].Operation.Type == token.OPAssign {
		target := items[0]
		if target.Entity != syntax.EXPValue || target.Value.Type != token.CTSymbol {
			return nil, fmt.Errorf("codegen: assignment target must be a plain variable")
		}
		offset, ok := fl.offsets[string(target.Value.Text)]
		if !ok {
			return nil, fmt.Errorf("codegen: assignment to undeclared variable %q", target.Value.Text)
		}

		rhs, _, err := fl.lowerPrecedence(items, 2, 1)
		if err != nil {
			return nil, err
		}
		rhs = append(rhs,
			bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.PTR), bytecode.Imm(offset),
			bytecode.Op(bytecode.MOVA, bytecode.Reg, bytecode.R0),
		)
		return rhs, nil
	}

	words, _, err := fl.lowerPrecedence(items, 0, 1)
	return words, err
}

// flatten collects a sibling chain (starting at 'first') into a slice, in
// source order, the shape spec's precedence-climbing algorithm scans over.
func flatten(first *syntax.Node) []*syntax.Node {
	var items []*syntax.Node
	for n := first; n != nil; n = n.Sibling {
		items = append(items, n)
	}
	return items
}

// precedence returns a binary operator token's climbing level, per spec
// §4.7's table ('=' 0, +/- 1, */÷ 2); unary '-' (level 3) never appears as
// an operator in the flat list, it is its own EXP_UnaryOperation node.
func precedence(tt token.Type) int {
	switch tt {
	case token.OPAssign:
		return 0
	case token.OPPlus, token.OPMinus:
		return 1
	case token.OPMul, token.OPDiv:
		return 2
	default:
		return -1
	}
}

// lowerPrecedence is the recursive traverse(first, level) of spec §4.7:
// it lowers items[idx] as the left operand, then repeatedly folds in
// same-or-higher precedence operators (spilling the running accumulator
// to the stack across each higher-precedence sub-recursion), returning
// once it meets an operator below 'minLevel' or runs out of items. The
// result is always left in R0.
func (fl *functionLowerer) lowerPrecedence(items []*syntax.Node, idx int, minLevel int) ([]bytecode.Word, int, error) {
	if idx >= len(items) {
		return nil, idx, fmt.Errorf("codegen: expected an operand, found end of expression")
	}

	words, err := fl.lowerOperand(items[idx])
	if err != nil {
		return nil, idx, err
	}
	idx++

	for idx < len(items) {
		opNode := items[idx]
		level := precedence(opNode.Operation.Type)
		if level < minLevel {
			break
		}
		idx++

		words = append(words,
			bytecode.Op(bytecode.MOVS, bytecode.Reg, bytecode.R0),
			bytecode.Op(bytecode.ADD32, bytecode.ValueSP, bytecode.OpReg(4)),
		)

		rhsWords, nextIdx, err := fl.lowerPrecedence(items, idx, level+1)
		if err != nil {
			return nil, idx, err
		}
		words = append(words, rhsWords...)
		idx = nextIdx

		words = append(words,
			bytecode.Op(bytecode.MOVR, bytecode.Reg, bytecode.R1), bytecode.Imm(uint32(bytecode.R0)),
			bytecode.Op(bytecode.SUB32, bytecode.ValueSP, bytecode.OpReg(4)),
			bytecode.Op(bytecode.MOVR, bytecode.Stack, bytecode.R0),
		)

		opWord, err := nativeBinaryOp(opNode.Operation.Type)
		if err != nil {
			return nil, idx, err
		}
		words = append(words, opWord)
	}

	return words, idx, nil
}

func nativeBinaryOp(tt token.Type) (bytecode.Word, error) {
	switch tt {
	case token.OPPlus:
		return bytecode.Op(bytecode.ADD32, bytecode.Reg, bytecode.R1), nil
	case token.OPMinus:
		return bytecode.Op(bytecode.SUB32, bytecode.Reg, bytecode.R1), nil
	case token.OPMul:
		return bytecode.Op(bytecode.MUL32, bytecode.Reg, bytecode.R1), nil
	case token.OPDiv:
		return bytecode.Op(bytecode.DIV32, bytecode.Reg, bytecode.R1), nil
	default:
		return 0, fmt.Errorf("codegen: unsupported binary operator %v", tt)
	}
}

// lowerOperand lowers a single leaf/compound term into R0.
func (fl *functionLowerer) lowerOperand(n *syntax.Node) ([]bytecode.Word, error) {
	switch n.Entity {
	case syntax.EXPValue:
		return fl.lowerValue(n)
	case syntax.EXPCall:
		return fl.lowerCall(n)
	case syntax.EXPUnaryOperation:
		return fl.lowerUnary(n)
	case syntax.EXPExplicitScope:
		items := flatten(n.Child)
		words, _, err := fl.lowerPrecedence(items, 0, 1)
		return words, err
	default:
		return nil, fmt.Errorf("codegen: unsupported operand entity %s", n.Entity)
	}
}

func (fl *functionLowerer) lowerValue(n *syntax.Node) ([]bytecode.Word, error) {
	switch n.Value.Type {
	case token.CTSymbol:
		// A GetMember chain (n.Child != nil) needs a field offset the
		// parser/lowerer has no type information to compute (spec's
		// explicit non-goal: no type inference/checking); member access
		// lowers to a load of the base variable only.
		offset, ok := fl.offsets[string(n.Value.Text)]
		if !ok {
			return nil, fmt.Errorf("codegen: undeclared variable %q", n.Value.Text)
		}
		return []bytecode.Word{
			bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.PTR), bytecode.Imm(offset),
			bytecode.Op(bytecode.MOVR, bytecode.Addr, bytecode.R0),
		}, nil

	case token.KWTrue:
		return []bytecode.Word{bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.R0), bytecode.Imm(1)}, nil
	case token.KWFalse:
		return []bytecode.Word{bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.R0), bytecode.Imm(0)}, nil

	case token.CTLiteral:
		text := string(n.Value.Text)
		text = strings.Trim(text, "'")
		var v uint32
		if len(text) > 0 {
			v = uint32(text[0])
		}
		return []bytecode.Word{bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.R0), bytecode.Imm(v)}, nil

	case token.CTString:
		// No interned-blob table is implemented (spec leaves string
		// representation implementation-defined); a string literal lowers
		// to a null address placeholder.
		return []bytecode.Word{bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.R0), bytecode.Imm(0)}, nil

	case token.CTNumber, token.CTNumberHex, token.CTNumberOct, token.CTNumberBin, token.CTNumberFloat:
		v, err := parseNumber(n.Value)
		if err != nil {
			return nil, err
		}
		return []bytecode.Word{bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.R0), bytecode.Imm(v)}, nil

	default:
		return nil, fmt.Errorf("codegen: unsupported value token type %v", n.Value.Type)
	}
}

func (fl *functionLowerer) lowerCall(n *syntax.Node) ([]bytecode.Word, error) {
	idx, ok := fl.gen.funcIndex.Get(string(n.Function.Text))
	if !ok {
		return nil, fmt.Errorf("codegen: call to undeclared function %q", n.Function.Text)
	}
	return []bytecode.Word{
		bytecode.Op(bytecode.MOVR, bytecode.Func, bytecode.TP), bytecode.CallPlaceholder(uint32(idx)),
		bytecode.Op(bytecode.CALL0Void, bytecode.None, bytecode.VOID),
	}, nil
}

// lowerUnary lowers unary '-' as 0 minus the operand, the only native
// subtraction shape ADD32/SUB32's REG form gives us (R0 = R0 ⊕
// registers[src]; there is no "src - R0" form).
func (fl *functionLowerer) lowerUnary(n *syntax.Node) ([]bytecode.Word, error) {
	if n.Operation.Type != token.OPMinus {
		return nil, fmt.Errorf("codegen: unsupported unary operator %v", n.Operation.Type)
	}

	operand, err := fl.lowerOperand(n.Child)
	if err != nil {
		return nil, err
	}

	words := append(operand,
		bytecode.Op(bytecode.MOVR, bytecode.Reg, bytecode.R1), bytecode.Imm(uint32(bytecode.R0)),
		bytecode.Op(bytecode.MOVR, bytecode.Value, bytecode.R0), bytecode.Imm(0),
		bytecode.Op(bytecode.SUB32, bytecode.Reg, bytecode.R1),
	)
	return words, nil
}

// parseNumber converts a number token's text to its uint32 value,
// stripping the digit separator (') the lexer leaves in place and
// dispatching on base by token type.
func parseNumber(tok token.Token) (uint32, error) {
	text := strings.ReplaceAll(string(tok.Text), "'", "")

	var (
		v   uint64
		err error
	)
	switch tok.Type {
	case token.CTNumberHex:
		v, err = strconv.ParseUint(text[2:], 16, 32)
	case token.CTNumberBin:
		v, err = strconv.ParseUint(text[2:], 2, 32)
	case token.CTNumberOct:
		v, err = strconv.ParseUint(text[1:], 8, 32)
	case token.CTNumberFloat:
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return 0, fmt.Errorf("codegen: invalid float literal %q: %w", tok.Text, ferr)
		}
		return uint32(int32(f)), nil
	default:
		v, err = strconv.ParseUint(text, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("codegen: invalid number literal %q: %w", tok.Text, err)
	}
	return uint32(v), nil
}
