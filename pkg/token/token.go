// Package token defines the lexical token vocabulary produced by pkg/lexer
// and consumed by pkg/parser.
package token

// Type is a bit-tagged token classification: the low bits carry the
// concrete punctuation/number/symbol kind, while high bits mark broad
// families (Keyword, Operator, NativeType, Special) so callers can test
// membership with a single mask instead of a long switch.
type Type uint32

const (
	familyKeyword    Type = 1 << 16
	familyOperator   Type = 1 << 17
	familyNativeType Type = 1 << 18

	// NativeType sub-family flags, combinable with the base NativeType bit.
	ntSigned   Type = 1 << 19
	ntUnsigned Type = 1 << 20
	ntFloat    Type = 1 << 21
)

const (
	Invalid Type = 0

	// Core punctuation / literal categories.
	CTAlphaNum Type = iota + 1
	CTSymbol
	CTNumber
	CTNumberHex
	CTNumberOct
	CTNumberBin
	CTNumberFloat
	CTString
	CTLiteral
	CTSquareBracketOpen
	CTSquareBracketClose
	CTParenOpen
	CTParenClose
	CTBracketOpen
	CTBracketClose
	CTColon
	CTComma
	CTDot
	CTHash
)

// Keywords.
const (
	KWFn Type = familyKeyword + iota
	KWCtx
	KWDef
	KWLet
	KWMut
	KWTrue
	KWFalse
	KWAlias
	KWConst
	KWStruct
	KWTypeOf
	KWAnd
	KWOr
)

// Operators.
const (
	OPAssign Type = familyOperator + iota
	OPPlus
	OPMinus
	OPMul
	OPDiv
	OPAnd
	OPOr
)

// Native scalar types.
const (
	NTVoid Type = familyNativeType
	NTBool Type = familyNativeType + 1
	NTUtf8 Type = familyNativeType + 2

	NTI8  = familyNativeType | ntSigned | 8
	NTI16 = familyNativeType | ntSigned | 16
	NTI32 = familyNativeType | ntSigned | 32
	NTI64 = familyNativeType | ntSigned | 64

	NTU8  = familyNativeType | ntUnsigned | 8
	NTU16 = familyNativeType | ntUnsigned | 16
	NTU32 = familyNativeType | ntUnsigned | 32
	NTU64 = familyNativeType | ntUnsigned | 64

	NTF32 = familyNativeType | ntFloat | 32
	NTF64 = familyNativeType | ntFloat | 64
)

// Special / sentinel tokens, high bit set so they never collide with a real
// category.
const (
	STAny        Type = 1 << 31
	STWhitespace Type = 1<<31 | 1
	STEndOfLine  Type = 1<<31 | 2
	STEndOfFile  Type = 1<<31 | 3
)

func (t Type) IsKeyword() bool    { return t&familyKeyword != 0 }
func (t Type) IsOperator() bool   { return t&familyOperator != 0 }
func (t Type) IsNativeType() bool { return t&familyNativeType != 0 }

// Location is a token's (line, column) position, both 1-based, after tab
// expansion has been applied by the lexer.
type Location struct {
	Line   uint32
	Column uint32
}

// Token is the unit the parser consumes: a classified, located run of text.
type Token struct {
	Text     []byte
	Type     Type
	Location Location
}
