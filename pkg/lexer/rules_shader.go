package lexer

import (
	"strings"

	"arctic.dev/arctic/pkg/token"
	"arctic.dev/arctic/pkg/word"
)

var shaderKeywords = map[string]token.Type{
	"fn":     token.KWFn,
	"ctx":    token.KWCtx,
	"def":    token.KWDef,
	"let":    token.KWLet,
	"mut":    token.KWMut,
	"true":   token.KWTrue,
	"alias":  token.KWAlias,
	"const":  token.KWConst,
	"false":  token.KWFalse,
	"struct": token.KWStruct,
	"typeof": token.KWTypeOf,
}

var shaderPunctuation = map[byte]token.Type{
	'+': token.OPPlus,
	'-': token.OPMinus,
	'*': token.OPMul,
	'/': token.OPDiv,
	'=': token.OPAssign,
	'[': token.CTSquareBracketOpen,
	']': token.CTSquareBracketClose,
	'(': token.CTParenOpen,
	')': token.CTParenClose,
	'{': token.CTBracketOpen,
	'}': token.CTBracketClose,
	':': token.CTColon,
	',': token.CTComma,
	'.': token.CTDot,
	'#': token.CTHash,
}

// tokenizeShader classifies a single word under the Shader rule set. The
// Script tokenizer (tokenizeScript, rules_script.go) repeats the same
// logic with its own keyword table: the language surface never diverges
// between the two contexts except for the reserved-but-unparsed 'and'/'or'
// keywords Script adds.
func tokenizeShader(cur word.Word, words *word.Stream, loc token.Location) (token.Token, word.Word, bool) {
	result := token.Token{Type: token.Invalid, Location: loc, Text: cur.Text}

	switch cur.Category {
	case word.AlphaNum:
		if kw, ok := shaderKeywords[string(cur.Text)]; ok {
			result.Type = kw
		}
	case word.Punctuation:
		if len(cur.Text) > 0 {
			if cur.Text[0] == '\'' || cur.Text[0] == '"' {
				break // handled by scanQuoted below
			}
			if t, ok := shaderPunctuation[cur.Text[0]]; ok {
				result.Type = t
			}
		}
	case word.EndOfLine:
		result.Type = token.STEndOfLine
	}

	if result.Type != token.Invalid {
		return result, word.Word{}, false
	}

	return scanUserValue(cur, words, loc)
}

// scanUserValue handles the three word categories that need lookahead
// across multiple words: quoted strings/char-literals and numeric literals
// (with base prefixes, digit separators, and float/unsigned suffixes).
func scanUserValue(cur word.Word, words *word.Stream, loc token.Location) (token.Token, word.Word, bool) {
	result := token.Token{Type: token.Invalid, Location: loc}

	if len(cur.Text) == 0 {
		return result, word.Word{}, false
	}

	first := cur.Text[0]

	switch {
	case first == '\'' || first == '"':
		return scanQuoted(first, cur, words, loc)
	case first >= '0' && first <= '9':
		return scanNumber(cur, words, loc)
	default:
		result.Type = token.CTSymbol
		result.Text = cur.Text
		return result, word.Word{}, false
	}
}

func scanQuoted(quote byte, start word.Word, words *word.Stream, loc token.Location) (token.Token, word.Word, bool) {
	result := token.Token{Location: loc}
	text := append([]byte(nil), start.Text...)

	isBackslash := false
	var last word.Word
	for {
		last = words.Next()
		if last.Category == word.EndOfFile {
			return token.Token{Type: token.Invalid, Location: loc}, last, true
		}
		text = append(text, last.Text...)
		if isBackslash {
			isBackslash = false
			continue
		}
		if len(last.Text) > 0 && last.Text[0] == '\\' {
			isBackslash = true
			continue
		}
		if len(last.Text) > 0 && last.Text[0] == quote {
			break
		}
	}

	if quote == '\'' {
		result.Type = token.CTLiteral
	} else {
		result.Type = token.CTString
	}
	result.Text = text
	return result, words.Next(), true
}

func scanNumber(start word.Word, words *word.Stream, loc token.Location) (token.Token, word.Word, bool) {
	text := append([]byte(nil), start.Text...)

	hasPrefix := start.Text[0] == '0' && len(start.Text) > 1
	isHex := hasPrefix && start.Text[1] == 'x'
	isBinary := hasPrefix && start.Text[1] == 'b'
	isOct := hasPrefix && !isHex

	isNumber := true
	isFloat := false
	isQuoteSep := false
	isNextWord := false
	done := false

	var last word.Word
	for !done {
		last = words.Next()
		if len(last.Text) == 0 {
			done = true
			break
		}
		switch last.Text[0] {
		case '\'':
			isNumber = !isQuoteSep
			isQuoteSep = true
			text = append(text, last.Text...)
		case '.':
			isNumber = !isFloat
			isNextWord = true
			isFloat = true
			text = append(text, last.Text...)
		default:
			done = !isQuoteSep && !isNextWord
			isNextWord = false
			isQuoteSep = false
			if !done {
				text = append(text, last.Text...)
			}
		}
		if !isNumber {
			done = true
		}
	}

	result := token.Token{Location: loc}
	if !isNumber {
		result.Type = token.CTSymbol
		result.Text = start.Text
		return result, last, true
	}

	isFloatSuffix := len(text) > 0 && text[len(text)-1] == 'f'
	isUnsignedSuffix := len(text) > 0 && text[len(text)-1] == 'u'
	if isFloatSuffix || isUnsignedSuffix {
		text = text[:len(text)-1]
	}
	result.Text = text

	switch {
	case isBinary:
		if isCharsetOnly(text[2:], "01'") {
			result.Type = token.CTNumberBin
		}
	case isHex:
		if isCharsetOnly(text[2:], "0123456789abcdefABCDEF'") {
			result.Type = token.CTNumberHex
		}
	case isOct:
		if isCharsetOnly(text[1:], "01234567'") {
			result.Type = token.CTNumberOct
		}
	case isFloat || isFloatSuffix:
		if dot := strings.IndexByte(string(text), '.'); dot >= 0 && isCharsetOnly(text[:dot], "0123456789'") && isCharsetOnly(text[dot+1:], "0123456789'") {
			result.Type = token.CTNumberFloat
		}
	default:
		if isCharsetOnly(text, "0123456789'") {
			result.Type = token.CTNumber
		}
	}

	return result, last, true
}

func isCharsetOnly(s []byte, charset string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(charset, s[i]) < 0 {
			return false
		}
	}
	return true
}
