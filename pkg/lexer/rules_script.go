package lexer

import (
	"arctic.dev/arctic/pkg/token"
	"arctic.dev/arctic/pkg/word"
)

// scriptKeywords is shaderKeywords plus the two reserved-but-unparsed
// boolean connectives (spec's Open Question (b): 'and'/'or' are tokenized
// so they read as reserved words, but no Script grammar production
// consumes them yet).
var scriptKeywords = func() map[string]token.Type {
	m := make(map[string]token.Type, len(shaderKeywords)+2)
	for k, v := range shaderKeywords {
		m[k] = v
	}
	m["and"] = token.KWAnd
	m["or"] = token.KWOr
	return m
}()

// tokenizeScript classifies a single word under the Script rule set. Its
// punctuation/literal handling is identical to Shader's; only the keyword
// table differs (see scriptKeywords above).
func tokenizeScript(cur word.Word, words *word.Stream, loc token.Location) (token.Token, word.Word, bool) {
	result := token.Token{Type: token.Invalid, Location: loc, Text: cur.Text}

	switch cur.Category {
	case word.AlphaNum:
		if kw, ok := scriptKeywords[string(cur.Text)]; ok {
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
